// Package postgres provides PostgreSQL implementations of the store
// interfaces, the embedded schema migrations and the connection setup.
// Queries go through database/sql with the pgx driver; every store accepts a
// store.DBTX so it can run inside a transaction.
package postgres
