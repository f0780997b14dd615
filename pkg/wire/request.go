package wire

import (
	"bytes"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/strand-dev/strand/internal/errors"
)

// readChunkSize bounds each socket read issued while searching for the
// header terminator.
const readChunkSize = 1024

var headerDelim = []byte("\r\n\r\n")

var validMethods = map[string]struct{}{
	"GET": {}, "HEAD": {}, "POST": {}, "PUT": {},
	"DELETE": {}, "PATCH": {}, "OPTIONS": {},
}

var validVersions = map[string]struct{}{
	"1.0": {}, "1.1": {}, "2.0": {}, "3.0": {},
}

// Request is a fully parsed HTTP request.
type Request struct {
	// Method is the request method (GET, POST, ...).
	Method string

	// RawPath is the request target as received, including any query string.
	RawPath string

	// Path is the routing path: RawPath with the "?" suffix removed.
	Path string

	// Proto is the protocol version string ("1.0", "1.1", "2.0", "3.0").
	Proto string

	// Header holds the request headers, case-insensitively.
	Header *Header

	// Body is the raw request body. Nil when Content-Length was absent.
	Body []byte

	// Args holds query-string arguments and, for urlencoded POSTs,
	// the decoded body fields.
	Args map[string]string

	// MultipartArgs holds text fields decoded from multipart/form-data.
	MultipartArgs map[string]string

	// Files holds uploaded file bodies keyed by filename.
	Files map[string][]byte
}

// ReadRequest reads one HTTP request from r.
//
// It reads in bounded chunks until the header terminator has been seen,
// parses the request line and headers, then reads exactly Content-Length
// body bytes, accounting for bytes already buffered past the terminator.
// A request without Content-Length is headers-only; no body read is
// attempted.
func ReadRequest(r io.Reader) (*Request, error) {
	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)

	var delim int
	for {
		if delim = bytes.Index(buf, headerDelim); delim != -1 {
			break
		}
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			continue
		}
		if err != nil {
			return nil, errors.New("E110").Wrap(err)
		}
	}

	req := &Request{
		Header: NewHeader(),
		Args:   make(map[string]string),
	}
	if err := req.parseHeaderBlock(string(buf[:delim])); err != nil {
		return nil, err
	}

	raw, ok := req.Header.Lookup("Content-Length")
	if !ok {
		// Headers-only request.
		return req, nil
	}
	contentLength, err := strconv.Atoi(raw)
	if err != nil || contentLength < 0 {
		return nil, errors.New("E105").WithDetailf("Content-Length: %q", raw)
	}

	bodyStart := delim + len(headerDelim)
	total := bodyStart + contentLength
	if len(buf) < total {
		rest := make([]byte, total-len(buf))
		if _, err := io.ReadFull(r, rest); err != nil {
			return nil, errors.New("E106").Wrap(err)
		}
		buf = append(buf, rest...)
	}
	req.Body = buf[bodyStart:total]

	if req.Method == "POST" {
		contentType := req.Header.Get("Content-Type")
		switch {
		case strings.HasPrefix(contentType, "multipart/form-data"):
			if err := req.parseMultipart(contentType); err != nil {
				return nil, err
			}
		case contentType == "application/x-www-form-urlencoded":
			if err := parseURLEncoded(string(req.Body), req.Args); err != nil {
				return nil, err
			}
		}
	}

	return req, nil
}

// parseHeaderBlock parses the request line and header lines from the
// decoded header block (everything before the CRLF CRLF terminator).
func (req *Request) parseHeaderBlock(block string) error {
	lines := strings.Split(block, "\r\n")
	if err := req.parseRequestLine(lines[0]); err != nil {
		return err
	}
	for _, line := range lines[1:] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return errors.New("E104").WithDetailf("line %q", line)
		}
		req.Header.Set(key, strings.TrimLeft(value, " "))
	}
	return nil
}

// parseRequestLine parses "METHOD PATH[?QUERY] HTTP/VERSION".
func (req *Request) parseRequestLine(line string) error {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return errors.New("E101").WithDetailf("request line %q", line)
	}
	method, target, proto := parts[0], parts[1], parts[2]

	if _, ok := validMethods[method]; !ok {
		return errors.New("E102").WithDetailf("method %q", method)
	}
	version, ok := strings.CutPrefix(proto, "HTTP/")
	if !ok {
		return errors.New("E101").WithDetailf("protocol %q", proto)
	}
	if _, ok := validVersions[version]; !ok {
		return errors.New("E103").WithDetailf("version %q", version)
	}
	if !strings.HasPrefix(target, "/") {
		return errors.New("E101").WithDetailf("target %q", target)
	}

	req.Method = method
	req.RawPath = target
	req.Proto = version

	if query := strings.IndexByte(target, '?'); query != -1 {
		req.Path = target[:query]
		return parseURLEncoded(target[query+1:], req.Args)
	}
	req.Path = target
	return nil
}

// parseURLEncoded decodes k=v pairs joined by '&' into dst.
func parseURLEncoded(data string, dst map[string]string) error {
	for _, pair := range strings.Split(data, "&") {
		rawKey, rawValue, ok := strings.Cut(pair, "=")
		if !ok {
			return errors.New("E109").WithDetailf("pair %q", pair)
		}
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return errors.New("E109").Wrap(err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return errors.New("E109").Wrap(err)
		}
		dst[key] = value
	}
	return nil
}
