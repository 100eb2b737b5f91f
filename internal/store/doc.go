// Package store persists processed meetings in SQLite.
//
// Each successful report adds one row holding the validated record (lists
// encoded as JSON text), the generated PDF file name, and the length of the
// source notes. The schema is embedded and versioned; a database written by
// a different schema version is rejected with ErrSchemaMismatch rather than
// migrated. Writes retry briefly on SQLITE_BUSY so the CLI and a running
// server can share one database file.
package store
