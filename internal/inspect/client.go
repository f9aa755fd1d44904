package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/satlens/internal/domain/types"
)

// maxResponseBytes caps what the inspector reads from one response.
const maxResponseBytes = 8 << 20

// ErrUnexpectedStatus is returned for non-2xx answers.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client reads viewer state from a running satlens service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Health fetches GET /healthz.
func (c *Client) Health(ctx context.Context) (types.Health, error) {
	var h types.Health
	return h, c.getJSON(ctx, "/healthz", &h)
}

// State fetches GET /state.
func (c *Client) State(ctx context.Context) (types.State, error) {
	var st types.State
	return st, c.getJSON(ctx, "/state", &st)
}

// Legend fetches GET /legend.
func (c *Client) Legend(ctx context.Context) (types.Legend, error) {
	var l types.Legend
	return l, c.getJSON(ctx, "/legend", &l)
}

// Rankings fetches GET /rankings. Negative counts are left to the service.
func (c *Client) Rankings(ctx context.Context, metric string, top, bottom int) (types.Rankings, error) {
	q := url.Values{}
	if metric != "" {
		q.Set("metric", metric)
	}
	if top >= 0 {
		q.Set("top", strconv.Itoa(top))
	}
	if bottom >= 0 {
		q.Set("bottom", strconv.Itoa(bottom))
	}
	path := "/rankings"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var r types.Rankings
	return r, c.getJSON(ctx, path, &r)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &e)
		return fmt.Errorf("%w: %s: %d %s", ErrUnexpectedStatus, path, resp.StatusCode, e.Message)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
