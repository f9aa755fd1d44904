// Package catalog talks to a Cesium-ion-style asset catalog: it lists the
// most recent complete asset, resolves it to a download endpoint and fetches
// the dataset.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/satlens/pkg/logger"
	"github.com/okian/satlens/pkg/metrics"
	"github.com/okian/satlens/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 256 << 20
	// Metadata responses are small; cap them well below the dataset limit.
	maxMetadataBytes = 4 << 20
)

// Asset is one catalog entry.
type Asset struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	DateAdded time.Time `json:"dateAdded"`
}

// Endpoint is where an asset can be downloaded.
type Endpoint struct {
	URL         string `json:"url"`
	AccessToken string `json:"accessToken"`
	Type        string `json:"type"`
}

type assetList struct {
	Items []Asset `json:"items"`
}

// Dataset is a downloaded asset.
type Dataset struct {
	Asset Asset
	Data  []byte
}

// Client is a catalog API client.
type Client struct {
	base     *url.URL
	token    string
	http     *http.Client
	maxBytes int64
	log      logger.Logger
}

// New creates a Client for baseURL authenticating with token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid catalog base url %q", baseURL)
	}
	c := &Client{
		base:     base,
		token:    token,
		http:     &http.Client{Timeout: defaultTimeout},
		maxBytes: defaultMaxBytes,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListAssets returns complete assets, newest first.
func (c *Client) ListAssets(ctx context.Context) ([]Asset, error) {
	u := c.base.JoinPath("v1", "assets")
	q := u.Query()
	q.Set("sortBy", "DATE_ADDED")
	q.Set("sortOrder", "DESC")
	q.Set("status", "COMPLETE")
	u.RawQuery = q.Encode()

	var list assetList
	if err := c.getJSON(ctx, "list_assets", u.String(), c.token, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// LatestAsset returns the first listed asset.
func (c *Client) LatestAsset(ctx context.Context) (Asset, error) {
	assets, err := c.ListAssets(ctx)
	if err != nil {
		return Asset{}, err
	}
	if len(assets) == 0 {
		return Asset{}, fmt.Errorf("%w: %w", ErrDatasetLoad, ErrNoAssets)
	}
	return assets[0], nil
}

// ResolveEndpoint returns the download endpoint of asset id.
func (c *Client) ResolveEndpoint(ctx context.Context, id int64) (Endpoint, error) {
	u := c.base.JoinPath("v1", "assets", strconv.FormatInt(id, 10), "endpoint")
	var ep Endpoint
	if err := c.getJSON(ctx, "endpoint", u.String(), c.token, &ep); err != nil {
		return Endpoint{}, err
	}
	if ep.URL == "" {
		return Endpoint{}, fmt.Errorf("%w: asset %d endpoint has no url", ErrDatasetLoad, id)
	}
	return ep, nil
}

// Download fetches the resource behind ep.
func (c *Client) Download(ctx context.Context, ep Endpoint) ([]byte, error) {
	ref, err := url.Parse(ep.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: endpoint url: %w", ErrDatasetLoad, err)
	}
	return c.get(ctx, "download", c.base.ResolveReference(ref).String(), ep.AccessToken, c.maxBytes)
}

// Fetch downloads asset id, or the latest complete asset when id is 0.
func (c *Client) Fetch(ctx context.Context, id int64) (Dataset, error) {
	ctx, span := tracing.Tracer().Start(ctx, "catalog.fetch")
	defer span.End()

	asset := Asset{ID: id}
	if id == 0 {
		latest, err := c.LatestAsset(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "list assets")
			return Dataset{}, err
		}
		asset = latest
	}
	span.SetAttributes(attribute.Int64("catalog.asset_id", asset.ID))

	ep, err := c.ResolveEndpoint(ctx, asset.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve endpoint")
		return Dataset{}, err
	}
	data, err := c.Download(ctx, ep)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "download")
		return Dataset{}, err
	}

	span.SetAttributes(attribute.Int("catalog.bytes", len(data)))
	c.log.Info(ctx, "catalog asset downloaded",
		logger.Any("asset_id", asset.ID),
		logger.String("name", asset.Name),
		logger.Int("bytes", len(data)),
	)
	return Dataset{Asset: asset, Data: data}, nil
}

func (c *Client) getJSON(ctx context.Context, call, rawURL, token string, out any) error {
	body, err := c.get(ctx, call, rawURL, token, maxMetadataBytes)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", ErrDatasetLoad, call, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, call, rawURL, token string, limit int64) ([]byte, error) {
	ctx, span := tracing.Tracer().Start(ctx, "catalog."+call)
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.RecordCatalogLatency(float64(time.Since(start).Milliseconds()))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrDatasetLoad, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordCatalogRequest(call, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrDatasetLoad, call, err)
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	metrics.RecordCatalogRequest(call, status)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w: %w %d from %s", ErrDatasetLoad, ErrUnexpectedStatus, resp.StatusCode, call)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s body: %w", ErrDatasetLoad, call, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: %w: %s over %d bytes", ErrDatasetLoad, ErrTooLarge, call, limit)
	}
	return body, nil
}
