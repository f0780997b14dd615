// Package wire implements the HTTP/1.x byte-level protocol used by the
// Strand server: request parsing from a raw byte stream, multipart and
// urlencoded form decoding, and response framing.
//
// The package is deliberately small. It supports exactly one request per
// stream (no keep-alive, no pipelining, no chunked transfer encoding) and
// reads the body only when Content-Length is present. Requests that do not
// fit this shape fail with a structured protocol error rather than being
// coerced into something servable.
package wire
