// Package storage is the SQLite catalog that stages documentation entries
// during an index build.
//
// A build writes its entries into the catalog as packages finish parsing, then
// reads them back in sequence order to compile the search index. The catalog
// is reset at the start of every build, and by default it lives in memory, so
// no index state carries over between runs.
//
// # Database Schema
//
// Tables:
//   - builds: one row per indexer run with its statistics and outcome
//   - entries: the documentation entries of a build, ordered by seq
//   - schema_version: applied migrations, compared with semver
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage(storage.InMemory)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	build := &storage.Build{RootPath: root}
//	if err := db.CreateBuild(ctx, build); err != nil {
//	    return err
//	}
//	if err := db.StoreEntries(ctx, build.ID, result.Entries); err != nil {
//	    return err
//	}
//	entries, err := db.ListEntries(ctx, build.ID)
//
// # Drivers
//
// The default build uses modernc.org/sqlite and needs no C compiler. Building
// with -tags cgo_sqlite switches to github.com/mattn/go-sqlite3.
package storage
