// Package layout provides the serialization format for generated worlds.
//
// This package defines the canonical wire format for wrldbldr output, used
// for JSON files, API responses, caching, and the debug renderers.
//
// # Architecture
//
// The package sits at the serialization boundary between the live section
// graph and external formats:
//
//   - [Layout]: serialized world (this package)
//   - pkg/world.World: live sections with weak adjacency handles
//   - pkg/tiles.Placement: tile chosen for each section
//
// Use [Build] to capture a finished run, and [Marshal]/[Unmarshal] or the
// file helpers to move layouts around.
//
// # Core Types
//
//   - [Layout]: run metadata, bounds, sections and regions
//   - [Section]: one placed section with its adjacency handles and tile
//   - [Region]: region summary with its parent, quota and color
//   - [Edge]: an undirected adjacency link, derived from sections
//
// # Format
//
//	{
//	  "run_id": "6f1c...",
//	  "seed": 42,
//	  "scale": 1,
//	  "sections": [
//	    {"id": 1, "x": 0, "y": 0, "archetype": "start", "region": 3,
//	     "adjacent": [2, 0, 0], "mask": 1, "tile": "Wall", "rotation": 0}
//	  ],
//	  "regions": [{"id": 3, "target": 30, "count": 30, "color": "#ffffff80"}]
//	}
//
// A zero handle in "adjacent" means the slot is empty.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package layout
