// Package api adapts HTTP requests to the controller dispatchers and renders
// their results. Each controller is a contract table and a set of endpoint
// handlers; the Server resolves the controller from the path, loads the
// session, dispatches and writes JSON, file downloads or raw content back.
package api
