// Package server implements the Strand connection and server lifecycle.
//
// A Server owns the listening socket (TCP or Unix-domain), accepts each
// connection exactly once (no keep-alive), parses the request through
// pkg/wire, resolves a handler through the configured Router, writes the
// response, and closes the socket. The lifecycle is a linear state
// machine (Idle, Listening, ShuttingDown, Stopped) driven by signals
// (SIGINT/SIGTERM/SIGHUP, plus SIGUSR1 for restart when enabled),
// context cancellation, or an explicit Shutdown call.
package server
