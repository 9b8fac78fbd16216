// Package wiring assembles the adapters shared by the callscope binaries.
package wiring

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"callscope/internal/adapters/httpapi"
	"callscope/internal/adapters/metrics"
	"callscope/internal/adapters/sqlite"
	"callscope/internal/adapters/wsdiff"
	"callscope/internal/application/explorer"
	"callscope/internal/config"
	"callscope/internal/logger"
	"callscope/internal/ports"
)

// Services holds the workspace and the adapters behind it
type Services struct {
	Workspace *explorer.Workspace
	Client    *httpapi.Client
	Index     *sqlite.Index // nil when the search index could not be opened
}

type options struct {
	surfaces   explorer.SurfaceFactory
	registerer prometheus.Registerer
	noIndex    bool
}

// Option configures Build
type Option func(*options)

// WithSurfaceFactory draws the views of opened graphs with f
func WithSurfaceFactory(f explorer.SurfaceFactory) Option {
	return func(o *options) {
		o.surfaces = f
	}
}

// WithMetrics records cache metrics on reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithoutIndex skips opening the search index
func WithoutIndex() Option {
	return func(o *options) {
		o.noIndex = true
	}
}

// Build connects to the service configured in cfg
func Build(cfg config.Config, opts ...Option) (*Services, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client, err := httpapi.NewClient(cfg.APIURL, httpapi.WithTimeout(cfg.HTTPTimeout))
	if err != nil {
		return nil, err
	}
	progress, err := wsdiff.New(cfg.WebsocketURL())
	if err != nil {
		return nil, err
	}

	cacheOpts := []explorer.Option{
		explorer.WithTopEdgeIncrement(cfg.TopEdgesStep),
		explorer.WithCoalescedFetches(),
	}
	if o.registerer != nil {
		cacheOpts = append(cacheOpts, explorer.WithMetrics(metrics.NewCacheMetrics(o.registerer)))
	}
	graphOpts := []explorer.GraphOption{
		explorer.WithMaxViews(cfg.MaxViews),
		explorer.WithProgressSource(progress),
	}
	if o.surfaces != nil {
		graphOpts = append(graphOpts, explorer.WithSurfaceFactory(o.surfaces))
	}

	s := &Services{
		Client: client,
		Workspace: explorer.NewWorkspace(client,
			explorer.WithMaxContexts(cfg.MaxContexts),
			explorer.WithCacheOptions(cacheOpts...),
			explorer.WithGraphOptions(graphOpts...),
		),
	}

	if !o.noIndex {
		index := sqlite.NewIndex(sqlite.WithDataDir(cfg.IndexDir()))
		if err := index.Open(cfg.APIURL); err != nil {
			logger.Warn("search index unavailable", "err", err)
		} else {
			s.Index = index
			logger.Debug("search index opened", "path", index.Path())
		}
	}

	logger.Info("connected", "api", client.BaseURL())
	return s, nil
}

// MethodIndex returns the search index, nil when it is unavailable
func (s *Services) MethodIndex() ports.MethodIndex {
	if s.Index == nil {
		return nil
	}
	return s.Index
}

// Close releases the views of every opened graph and the search index
func (s *Services) Close() error {
	for _, g := range s.Workspace.Graphs() {
		g.Close()
	}
	if s.Index != nil {
		if err := s.Index.Close(); err != nil {
			return fmt.Errorf("failed to close search index: %w", err)
		}
	}
	return nil
}
