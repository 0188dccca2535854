// Package sqlstore implements the store interfaces on database/sql.
//
// The same queries run on PostgreSQL (through pgx's database/sql driver)
// and on SQLite (through modernc.org/sqlite, which needs no cgo). Queries
// are written with ? placeholders and rebound for the active [Dialect].
// Schema changes are embedded goose migrations applied by [Migrate].
package sqlstore
