// Package metrics exposes Prometheus collectors for API dispatch, rate
// limiting and the database pool.
package metrics
