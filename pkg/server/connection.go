package server

import (
	"bytes"
	"compress/gzip"
	stderrors "errors"
	"log/slog"
	"net"
	"strings"

	"github.com/strand-dev/strand/internal/errors"
	"github.com/strand-dev/strand/pkg/wire"
)

// gzipMinSize is the smallest body worth compressing. Responses that fit
// in a single ethernet frame are sent as-is.
const gzipMinSize = 1500

// incompressibleTypes are response content types assumed to already be
// heavily compressed.
var incompressibleTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
}

// Connection owns one accepted socket for its lifetime. It carries the
// parsed request and the outgoing response state, and is destroyed when
// the handler returns and the socket is closed.
type Connection struct {
	conn      net.Conn
	logger    *slog.Logger
	gzipLevel int

	// Request is the parsed request. Nil until parsing succeeds.
	Request *wire.Request

	header *wire.Header
	sent   bool
}

func newConnection(nc net.Conn, gzipLevel int, logger *slog.Logger) *Connection {
	return &Connection{
		conn:      nc,
		logger:    logger,
		gzipLevel: gzipLevel,
		header:    wire.NewHeader(),
	}
}

// parse reads and parses the request from the socket.
func (c *Connection) parse() error {
	req, err := wire.ReadRequest(c.conn)
	if err != nil {
		return err
	}
	c.Request = req
	return nil
}

// SetHeader sets a response header to be sent with the body.
func (c *Connection) SetHeader(key, value string) {
	c.header.Set(key, value)
}

// Header returns the accumulated response headers.
func (c *Connection) Header() *wire.Header {
	return c.header
}

// RemoteAddr returns the peer address.
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send frames and writes the response in a single socket write, applying
// gzip when the server and client both allow it. A broken or closed
// socket is logged and swallowed; framing errors (unknown status code,
// double send) are returned to the caller.
func (c *Connection) Send(status int, body []byte) error {
	if c.sent {
		return errors.New("E304")
	}
	body = c.maybeCompress(body)

	err := wire.WriteResponse(c.conn, status, c.header, body)
	if err != nil {
		var se *errors.StrandError
		if stderrors.As(err, &se) {
			// Framing mistakes (unknown status code) are caller errors.
			return err
		}
		c.logger.Warn("connection closed by client", "error", err)
	}
	c.sent = true
	return nil
}

// maybeCompress gzips body when compression is enabled, the client
// advertises gzip support, the body exceeds the frame-size threshold,
// and the response content type is compressible.
func (c *Connection) maybeCompress(body []byte) []byte {
	if c.gzipLevel <= 0 || len(body) <= gzipMinSize {
		return body
	}
	accept, ok := c.Request.Header.Lookup("Accept-Encoding")
	if !ok || !strings.Contains(accept, "gzip") {
		return body
	}
	if _, ok := incompressibleTypes[c.header.Get("Content-Type")]; ok {
		return body
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, c.gzipLevel)
	if err != nil {
		return body
	}
	if _, err := zw.Write(body); err != nil {
		return body
	}
	if err := zw.Close(); err != nil {
		return body
	}

	c.header.Set("Content-Encoding", "gzip")
	return buf.Bytes()
}

// close shuts the socket down. Errors are ignored; the peer may already
// be gone.
func (c *Connection) close() {
	_ = c.conn.Close()
}
