// Package pkg provides the core libraries for wrldbldr world generation.
//
// # Overview
//
// wrldbldr grows worlds of triangular sections from a tree of regions. Each
// region has a quota of sections; a run visits the regions depth-first and
// grows each one from a frontier of sections with free neighbor slots,
// backtracking when a section is boxed in and merging with existing
// sections on collision. A tile matcher then picks a tile for every section
// from the bitmask of its occupied neighbor slots.
//
// The pkg directory is organized into three areas:
//
//  1. Domain logic ([world], [gen], [tiles])
//  2. Serialization and rendering ([layout], [render], [render/nodelink])
//  3. Infrastructure ([config], [pipeline], [cache], [errors], [observability])
//
// # Architecture
//
// The typical data flow:
//
//	Project file (TOML/YAML/JSON)
//	         ↓
//	    [config] package (blueprint, tile set, engine settings)
//	         ↓
//	    [gen] package (time-sliced growth over a world)
//	         ↓
//	    [tiles] package (mask matching, substrate placement)
//	         ↓
//	    [layout] package (serializable snapshot)
//	         ↓
//	    JSON/DOT/SVG/PNG/PDF output
//
// # Quick Start
//
//	p := config.Default()
//	cfg, bp, ts, _ := p.Build()
//
//	eng := gen.New(cfg)
//	run, _ := eng.Generate(ctx, bp)
//
//	placements, _ := tiles.Assign(run.World(), ts)
//	l := layout.Build(run.World(), bp, placements, layout.Meta{RunID: run.ID(), Seed: cfg.Seed})
//
// Or let the pipeline do all of it, with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	res, _ := runner.Execute(ctx, p, pipeline.Options{Formats: []string{"json", "svg"}})
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/gen/...       # Specific package
//	go test -run Example ./...  # Examples only
//
// [world]: https://pkg.go.dev/github.com/matzehuels/wrldbldr/pkg/world
// [gen]: https://pkg.go.dev/github.com/matzehuels/wrldbldr/pkg/gen
// [tiles]: https://pkg.go.dev/github.com/matzehuels/wrldbldr/pkg/tiles
// [layout]: https://pkg.go.dev/github.com/matzehuels/wrldbldr/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/wrldbldr/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/wrldbldr/pkg/render/nodelink
// [config]: https://pkg.go.dev/github.com/matzehuels/wrldbldr/pkg/config
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/wrldbldr/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/wrldbldr/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/wrldbldr/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/wrldbldr/pkg/observability
package pkg
