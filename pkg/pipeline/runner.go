package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wrldbldr/pkg/cache"
	"github.com/matzehuels/wrldbldr/pkg/config"
	"github.com/matzehuels/wrldbldr/pkg/gen"
	"github.com/matzehuels/wrldbldr/pkg/layout"
	"github.com/matzehuels/wrldbldr/pkg/observability"
	"github.com/matzehuels/wrldbldr/pkg/tiles"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Every run gets a
// fresh engine and blueprint, so multiple goroutines can share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete generate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, p *config.Project, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	if opts.Seed != nil {
		p = p.WithSeed(*opts.Seed)
	}

	result := &Result{}

	genStart := time.Now()
	l, stats, hit, err := r.GenerateWithCacheInfo(ctx, p, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Layout = l
	result.ProjectHash = ProjectHash(p)
	result.Stats = stats
	result.Stats.GenerateTime = time.Since(genStart)
	result.CacheInfo.LayoutHit = hit

	opts.Logger.Info("generated world",
		"seed", l.Seed,
		"sections", len(l.Sections),
		"regions", len(l.Regions),
		"cached", hit,
		"duration", result.Stats.GenerateTime)

	renderStart := time.Now()
	artifacts, layoutHash, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.LayoutHash = layoutHash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo returns the layout of a project, generating it on a
// cache miss.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, p *config.Project, opts Options) (layout.Layout, Stats, bool, error) {
	r.applyLogger(&opts)

	key := r.Keyer.LayoutKey(ProjectHash(p), cache.LayoutKeyOpts{
		Seed:  p.Seed(),
		Scale: p.Generation.Scale,
	})
	useCache := !opts.Refresh && opts.Substrate == nil && len(opts.Observers) == 0

	if useCache {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if l, err := layout.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, key)
				return l, statsOf(l), true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, key)
	}

	l, stats, err := Generate(ctx, p, opts)
	if err != nil {
		return layout.Layout{}, Stats{}, false, err
	}

	if useCache {
		if data, err := layout.Marshal(l); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
				opts.Logger.Warn("cache write failed", "key", key, "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, key, len(data))
			}
		}
	}
	return l, stats, false, nil
}

// RenderWithCacheInfo renders every requested format of a layout. The
// returned hash identifies the layout content.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, string, bool, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, "", false, err
	}
	r.applyLogger(&opts)

	data, err := layout.Marshal(l)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(data)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, artifactKeyOpts(format, opts))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, key)
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, key)
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, layoutHash, true, nil
	}

	sub := opts
	sub.Formats = missing
	rendered, err := Render(ctx, l, sub)
	if err != nil {
		return nil, "", false, err
	}
	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, artifactKeyOpts(format, opts))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, key, len(data))
		}
	}
	return artifacts, layoutHash, false, nil
}

// Generate runs the engine on a fresh blueprint, autotiles the result and
// snapshots it into a layout. It does not touch any cache.
func Generate(ctx context.Context, p *config.Project, opts Options) (layout.Layout, Stats, error) {
	cfg, bp, ts, err := p.Build()
	if err != nil {
		return layout.Layout{}, Stats{}, err
	}

	engOpts := []gen.Option{}
	if opts.Logger != nil {
		engOpts = append(engOpts, gen.WithLogger(opts.Logger))
	}
	for _, o := range opts.Observers {
		engOpts = append(engOpts, gen.WithObserver(o))
	}
	eng := gen.New(cfg, engOpts...)

	run, err := eng.Generate(ctx, bp)
	if err != nil {
		return layout.Layout{}, Stats{}, err
	}

	placements, err := tiles.Assign(eng.World(), ts)
	if err != nil {
		return layout.Layout{}, Stats{}, err
	}
	if opts.Substrate != nil {
		if err := tiles.Apply(ctx, opts.Substrate, placements); err != nil {
			return layout.Layout{}, Stats{}, fmt.Errorf("apply tiles: %w", err)
		}
	}

	l := layout.Build(eng.World(), bp, placements, layout.Meta{
		RunID:   run.ID(),
		Seed:    cfg.Seed,
		TileSet: ts.Name,
	})

	pr := run.Progress()
	stats := statsOf(l)
	stats.Iterations = pr.Iterations
	stats.Slices = pr.Slices
	return l, stats, nil
}

// ProjectHash returns the content hash of a project.
func ProjectHash(p *config.Project) string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func artifactKeyOpts(format string, opts Options) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if format != FormatJSON {
		k.Detailed = opts.Detailed
		k.Regions = opts.Regions
	}
	return k
}

func statsOf(l layout.Layout) Stats {
	return Stats{Sections: len(l.Sections), Regions: len(l.Regions)}
}
