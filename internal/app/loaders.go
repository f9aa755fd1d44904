package service

import (
	"context"
	"strconv"

	"github.com/okian/satlens/internal/adapters/catalog"
	"github.com/okian/satlens/internal/adapters/filesource"
)

// Loader fetches the raw dataset and names where it came from.
type Loader interface {
	Load(ctx context.Context) (source string, data []byte, err error)
}

// Watcher reports dataset changes until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// CatalogLoader loads a catalog asset. AssetID 0 selects the latest one.
type CatalogLoader struct {
	Client  *catalog.Client
	AssetID int64
}

func (l CatalogLoader) Load(ctx context.Context) (string, []byte, error) {
	ds, err := l.Client.Fetch(ctx, l.AssetID)
	if err != nil {
		return "catalog", nil, err
	}
	return "catalog:" + strconv.FormatInt(ds.Asset.ID, 10), ds.Data, nil
}

// FileLoader loads a local dataset file.
type FileLoader struct {
	Source *filesource.Source
}

func (l FileLoader) Load(ctx context.Context) (string, []byte, error) {
	data, err := l.Source.Load(ctx)
	return "file:" + l.Source.Path(), data, err
}
