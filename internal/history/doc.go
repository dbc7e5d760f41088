// Package history persists one record per stage invocation in a SQLite
// database under the state directory.
//
// Rows are inserted as running when a stage starts and finished with a
// terminal status, output path, and error detail. The schema is embedded and
// versioned; a database written by a different schema version is rejected
// rather than migrated.
package history
