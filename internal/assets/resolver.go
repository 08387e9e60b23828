package assets

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"dashpub/internal/logging"
	"dashpub/internal/services"
	"dashpub/internal/splunkd"
)

// Fetcher retrieves asset bytes. *splunkd.Client implements it.
type Fetcher interface {
	FetchAsset(ctx context.Context, req splunkd.AssetRequest) (*splunkd.Asset, error)
}

// Store persists asset bytes and returns the web path. *project.Layout
// implements it.
type Store interface {
	WriteAsset(category, namespace, filename string, data []byte) (string, error)
}

// Request names one asset reference.
type Request struct {
	Reference string
	Category  string
	Namespace string
}

// Resolution is the outcome of resolving one reference.
type Resolution struct {
	// Path is the local web path, e.g. /assets/images/<ns>/<file>.
	Path string
	// Skipped is set for empty references.
	Skipped bool
	// Cached is set when the path came from an earlier resolution in this run.
	Cached bool
	// Err is non-nil when the asset could not be fetched or stored. It
	// carries services.ErrFetch or services.ErrIO.
	Err error
}

// OK reports whether Path can replace the original reference.
func (r Resolution) OK() bool {
	return !r.Skipped && r.Err == nil && r.Path != ""
}

type cacheKey struct {
	reference string
	category  string
	namespace string
}

// Resolver caches resolved assets for the lifetime of one generate run. It
// is not safe for concurrent use.
type Resolver struct {
	fetcher Fetcher
	store   Store
	cache   map[cacheKey]string
	logger  *slog.Logger
}

// NewResolver builds a resolver. A nil logger disables logging.
func NewResolver(fetcher Fetcher, store Store, logger *slog.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		store:   store,
		cache:   make(map[cacheKey]string),
		logger:  logging.NewComponentLogger(logger, "assets"),
	}
}

// Resolve ensures a local copy of req.Reference exists and returns its path.
func (r *Resolver) Resolve(ctx context.Context, req Request) Resolution {
	ref := strings.TrimSpace(req.Reference)
	if ref == "" {
		return Resolution{Skipped: true}
	}
	key := cacheKey{reference: ref, category: req.Category, namespace: req.Namespace}
	if cached, ok := r.cache[key]; ok {
		return Resolution{Path: cached, Cached: true}
	}

	asset, err := r.fetcher.FetchAsset(ctx, splunkd.AssetRequest{
		Reference: ref,
		Category:  req.Category,
		Namespace: req.Namespace,
	})
	if err != nil {
		if !errors.Is(err, services.ErrFetch) {
			err = services.Wrap(services.ErrFetch, "assets", "resolve", ref, err)
		}
		return Resolution{Err: err}
	}

	filename := FileName(ref, asset.ContentType)
	webPath, err := r.store.WriteAsset(req.Category, req.Namespace, filename, asset.Data)
	if err != nil {
		return Resolution{Err: err}
	}
	r.cache[key] = webPath
	logging.WithContext(ctx, r.logger).Debug("asset stored",
		logging.String("category", req.Category),
		logging.String("path", webPath),
		logging.Int("bytes", len(asset.Data)),
	)
	return Resolution{Path: webPath}
}

// Len returns the number of cached assets.
func (r *Resolver) Len() int {
	return len(r.cache)
}
