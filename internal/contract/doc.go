// Package contract implements the request contract and dispatch engine.
//
// Every controller declares a Table of endpoint contracts. A contract names
// the access level an endpoint requires and the ordered rules each of its
// parameters must satisfy, written in a compact grammar ("min-6",
// "in[M,F]", "matches[password]") that is parsed once at startup.
//
// A Dispatcher turns one raw request into a handler call: it extracts and
// normalizes the parameters, resolves the endpoint contract, validates the
// declared fields in order stopping at the first failure, checks access and
// only then runs the handler. Any failure is returned as a single error:
// ErrInvalidRequest, ErrNotFound, *ValidationError or ErrAccessDenied.
package contract
