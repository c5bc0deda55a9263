// Package store defines the persistence interfaces of the site and the
// errors their implementations return.
package store
