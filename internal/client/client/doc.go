// Package client talks to the vault REST API on behalf of the CLI.
//
// # Overview
//
// The Client interface is the API contract used by the CLI. HTTPClient
// implements it over net/http: it holds the access token returned by
// Register/Login, sends it as a bearer token and decodes the JSON bodies.
// The session shown in the prompt (username, role, divisions) is read from
// the token claims without verification; the server stays the authority.
//
// # Error Handling
//
// Transport failures are reported as ErrUnavailable. API errors carry the
// server's {err} message as their text and unwrap to a sentinel:
//
//	400 common.ErrInvalidInput
//	401 ErrUnauthorized (the held token is dropped)
//	403 common.ErrForbidden
//	404 common.ErrorNotFound
//	5xx common.ErrorInternal
//
// # Batch updates
//
// BatchUpdate applies several credential edits one request at a time. There
// is no cross-entry atomicity; the per-entry results name the edits that
// failed so they can be retried.
package client
