// Package cli provides the interactive vault command-line client.
//
// It wires configuration, the REST API client and a REPL. Users register or
// log in, then read, add and update the credentials of their divisions.
// Admins additionally manage OU/division membership and roles. When the
// server reports an expired session the token is dropped and the user is
// asked to log in again.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
