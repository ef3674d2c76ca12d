// Package indexer builds the search index artifact for a Go module.
//
// A build walks the module root, groups .go files by directory, parses the
// packages concurrently, stages every documentation entry in the SQLite
// catalog and compiles the catalog into search_index.js (or .json). The
// output is written atomically, so a page loading the index never sees a
// partial file.
//
// # Pipeline
//
//	discover   filepath.Walk, skipping vendor, testdata, .hidden and _ignored dirs
//	parse      errgroup worker pool, one task per package
//	catalog    one transaction, packages in import path order
//	compile    searchindex.Builder over the catalog in sequence order
//	write      temp file + rename
//
// Packages are ordered by import path and files by name before anything is
// compiled, so the artifact is byte-identical for identical sources no matter
// how many workers run.
//
// # Concurrency
//
// Builds are single writer. A second Build while one is running returns
// ErrBuildInProgress immediately rather than queueing.
//
// # Watch mode
//
// Watcher rebuilds on source changes. Events are debounced until the tree has
// been quiet for WatchConfig.Debounce, and a rate limiter keeps consecutive
// rebuilds at least WatchConfig.MinInterval apart.
//
//	w, err := indexer.NewWatcher(idx, root, cfg, indexer.WatchConfig{
//	    Debounce:    300 * time.Millisecond,
//	    MinInterval: 2 * time.Second,
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	return w.Run(ctx)
package indexer
