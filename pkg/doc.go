// Package pkg provides the core libraries for libmerge Liberty generation.
//
// # Overview
//
// libmerge assembles standard-cell timing libraries from the per-cell JSON
// fragments produced during characterization. Each process corner of a
// library becomes one Liberty document built from a shared common fragment,
// the corner's top-level fragment, and one fragment per cell. The pkg
// directory is organized into four main areas:
//
//  1. [liberty] - The Liberty value model and codec (decode, merge, encode)
//  2. [corners], [manifest] - Library discovery and metadata
//  3. [pipeline] - Orchestration (collect -> resolve -> generate)
//  4. [cache], [errors], [io], [httputil], [observability], [sizes],
//     [buildinfo] - Infrastructure shared by the CLI and the server
//
// # Architecture
//
// The typical data flow through libmerge:
//
//	Library tree (cells/, timing/, library.toml)
//	         ↓
//	    [corners] package (discover corners, cells, variants)
//	         ↓
//	    [liberty] package (decode fragments, merge, strip, encode)
//	         ↓
//	    [pipeline] package (per-corner generation + caching)
//	         ↓
//	    <library>__<corner>.lib documents
//
// # Quick Start
//
// Generate the basic documents for two corners of a library:
//
//	import (
//	    "context"
//	    "github.com/pdkit/libmerge/pkg/cache"
//	    "github.com/pdkit/libmerge/pkg/liberty"
//	    "github.com/pdkit/libmerge/pkg/pipeline"
//	)
//
//	store, _ := cache.NewFileCache("/tmp/libmerge-cache")
//	runner := pipeline.NewRunner(store, nil, logger)
//	defer runner.Close()
//
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    LibraryDir: "sky130_fd_sc_hd",
//	    Corners:    []string{"ff_100C_1v65", "ss_100C_1v60"},
//	    Output:     liberty.Basic,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, out := range result.Written {
//	    fmt.Println(out.Path)
//	}
//
// # Main Packages
//
// ## Domain Logic
//
// [liberty] - The timing data model. JSON fragments decode into an ordered
// group tree, fragments merge with collision detection, ccsnoise data strips
// for basic output, and groups encode into deterministic Liberty text with
// padded ten-digit floats.
//
// [corners] - Library discovery. Scans a library tree for the
// <library>__<cell>__<corner> fragment convention, records which timing
// variants each corner carries, and verifies the layout is complete before
// any merge starts.
//
// [manifest] - The optional library.toml read from the library root. Corner
// descriptions and electrical parameters enrich listings; nothing in it is
// required to generate output.
//
// ## Orchestration
//
// [pipeline] - The complete merge pipeline (collect -> resolve -> generate)
// used by the CLI and the server. Corners generate concurrently, documents
// and rendered cells are cached, and output files are written atomically.
//
// ## Infrastructure
//
// [cache] - Cache backends and key derivation. FileCache for the CLI
// (sharded filesystem tree), RedisCache for server deployments, NullCache
// for tests and --no-cache runs.
//
// [errors] - Coded errors. Every failure carries a stable machine-readable
// code plus a user-facing message, and name validation for libraries,
// cells, and corners lives here.
//
// [httputil] - Request logging, panic recovery, and JSON response helpers
// for the preview server.
//
// [observability] - Process-wide hook points the pipeline and caches invoke
// on stage boundaries. The default hooks are no-ops.
//
// [io] - Atomic file writes (temp file, sync, rename).
//
// [sizes] - Drive-strength suffix handling for cell names (inv_2 is the
// inv cell at strength 2).
//
// [buildinfo] - Version metadata injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/liberty/...      # Specific package
//	go test -run Example           # Examples only
//
// [liberty]: https://pkg.go.dev/github.com/pdkit/libmerge/pkg/liberty
// [corners]: https://pkg.go.dev/github.com/pdkit/libmerge/pkg/corners
// [manifest]: https://pkg.go.dev/github.com/pdkit/libmerge/pkg/manifest
// [pipeline]: https://pkg.go.dev/github.com/pdkit/libmerge/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/pdkit/libmerge/pkg/cache
// [errors]: https://pkg.go.dev/github.com/pdkit/libmerge/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/pdkit/libmerge/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/pdkit/libmerge/pkg/observability
// [io]: https://pkg.go.dev/github.com/pdkit/libmerge/pkg/io
// [sizes]: https://pkg.go.dev/github.com/pdkit/libmerge/pkg/sizes
// [buildinfo]: https://pkg.go.dev/github.com/pdkit/libmerge/pkg/buildinfo
package pkg
