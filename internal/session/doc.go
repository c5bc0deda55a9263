// Package session keeps per-browser state between requests: the logged in
// member and the answer of the last captcha challenge. Sessions are
// identified by an opaque cookie and persisted in memory or in Redis.
package session
