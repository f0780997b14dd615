// Package errors provides structured, actionable error messages for Strand.
//
// Every error carries a category and, for well-known failure modes, a
// registered code (e.g. "E101") that maps to a message, a longer detail
// string, and a fix suggestion. Wire-level parse failures, routing
// misconfiguration, and server lifecycle violations all report through
// this package so that callers can branch on codes instead of matching
// message text.
//
// # Error Categories
//
//   - protocol: wire-level failures (malformed request line, bad headers,
//     truncated bodies, invalid multipart payloads)
//   - routing: matcher and dispatch misconfiguration
//   - server: lifecycle violations (bad listen address, double start)
//   - config: strand.json loading and validation failures
//   - cli: command-line usage errors
//
// # Usage
//
//	if !validMethod(method) {
//	    return nil, errors.New("E105").WithDetail("got " + method)
//	}
//
//	var se *errors.StrandError
//	if stderrors.As(err, &se) && se.Code == "E101" { ... }
package errors
