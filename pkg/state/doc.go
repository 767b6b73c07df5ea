// Package state saves and reloads translation snapshots.
//
// A Snapshot holds the variable definitions and the formula and
// verification records of a run. "build --save-state" saves one and
// exits; "build --load-state" restores the last one and skips symbol
// loading and translation.
//
// Backends:
//
//   - file: one JSON file, replaced atomically (default state.json)
//   - sqlite: every snapshot in a SQLite database (default state.db),
//     through modernc.org/sqlite (driver "sqlite") or
//     github.com/mattn/go-sqlite3 (driver "sqlite3")
//   - memory: in-process, for tests
package state
