// Package pkg provides the core libraries for canonic, a graph
// canonicalization and isomorphism toolkit.
//
// # Overview
//
// canonic computes equitable partitions of coloured graphs, relabels a graph
// into a canonical form shared by every isomorphic copy, and reports the
// automorphism group found along the way. The pkg directory is organized into
// three areas:
//
//  1. Core algorithms ([partition], [refine], [search], [cert], [perm])
//  2. Data plumbing ([graph], [io], [render])
//  3. Orchestration and infrastructure ([pipeline], [cache], [catalog], [config])
//
// # Architecture
//
// The typical data flow through canonic:
//
//	edge list / list / DIMACS / JSON
//	         ↓
//	    [io] package (parse graph and initial colouring)
//	         ↓
//	    [refine] package (equitable partition + trace)
//	         ↓
//	    [search] package (individualize, refine, compare leaves, prune)
//	         ↓
//	    [cert] package (canonical adjacency + hash)
//	         ↓
//	text/JSON/YAML report, DOT/SVG/PNG/PDF drawing
//
// # Quick Start
//
// Canonicalize the 4-cycle:
//
//	import (
//	    "context"
//	    "fmt"
//	    "github.com/matzehuels/canonic/pkg/cache"
//	    "github.com/matzehuels/canonic/pkg/graph/builder"
//	    "github.com/matzehuels/canonic/pkg/pipeline"
//	)
//
//	r := pipeline.NewRunner(cache.NewNullCache(), cache.NewDefaultKeyer(), nil, nil)
//	g, _ := builder.Cycle(4)
//	res, _ := r.Canonicalize(context.Background(), g, pipeline.Options{})
//	fmt.Println(res.Hash, res.GroupSize) // group size 8
//
// # Main Packages
//
// [partition] - Ordered partitions with constant-time cell lookup, stable
// splitting and a [partition.Nest] that undoes individualizations in reverse.
//
// [refine] - Equitable refinement. Cells are split by neighbour counts until
// no cell can be split further; every split is recorded in a [refine.Trace]
// so that two searches can be compared level by level.
//
// [search] - The individualization-refinement search tree. Leaves are ranked
// by their refinement traces and certificate; leaves equal to the best one
// yield automorphisms. Subtrees whose trace prefix is already greater are
// pruned. A [search.Controller] carries node limits and progress hooks.
//
// [cert] - Packed canonical adjacency matrices with a total order and a
// stable hash.
//
// [perm] - Permutations, cycle notation, orbits and automorphism checks.
//
// [graph] - Adjacency-list graphs (directed or undirected, optionally
// integer-weighted) and, in [graph/builder], the standard families used as
// fixtures.
//
// [io] - Readers and writers for the supported text formats.
//
// [render] - DOT output coloured by cell, rendered through Graphviz.
//
// ## Infrastructure
//
// [pipeline] - Runner shared by the CLI and the HTTP server. Applies the
// cache, records classes in the catalog and encodes results.
//
// [cache] - File, Redis and null caches keyed by graph hash and options.
//
// [catalog] - Persistent registry of isomorphism classes backed by badger,
// MongoDB or memory.
//
// [config] - TOML configuration file shared by every command.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                # All tests
//	go test ./pkg/search/...         # Specific package
//	go test -run Example ./pkg/...   # Examples only
//
// [partition]: https://pkg.go.dev/github.com/matzehuels/canonic/pkg/partition
// [refine]: https://pkg.go.dev/github.com/matzehuels/canonic/pkg/refine
// [search]: https://pkg.go.dev/github.com/matzehuels/canonic/pkg/search
// [cert]: https://pkg.go.dev/github.com/matzehuels/canonic/pkg/cert
// [perm]: https://pkg.go.dev/github.com/matzehuels/canonic/pkg/perm
// [graph]: https://pkg.go.dev/github.com/matzehuels/canonic/pkg/graph
// [graph/builder]: https://pkg.go.dev/github.com/matzehuels/canonic/pkg/graph/builder
// [io]: https://pkg.go.dev/github.com/matzehuels/canonic/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/canonic/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/canonic/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/canonic/pkg/cache
// [catalog]: https://pkg.go.dev/github.com/matzehuels/canonic/pkg/catalog
// [config]: https://pkg.go.dev/github.com/matzehuels/canonic/pkg/config
package pkg
