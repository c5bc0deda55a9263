// Package auth hashes member passwords and issues the signed, stateless
// tokens behind account activation and password reset links.
package auth
