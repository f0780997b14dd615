package wire

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/strand-dev/strand/internal/errors"
)

// WriteResponse frames a response and sends it as a single write.
//
// The status line comes from the fixed code table; an unknown code is a
// caller error. Content-Length is emitted only when a body is present.
// Headers are written in insertion order, CRLF-joined, terminated by a
// blank line, followed by the body.
func WriteResponse(w io.Writer, status int, header *Header, body []byte) error {
	line, ok := StatusLine(status)
	if !ok {
		return errors.New("E301").WithDetailf("status %d", status)
	}

	var buf bytes.Buffer
	buf.WriteString(line)
	buf.WriteString("\r\n")
	if len(body) > 0 {
		buf.WriteString("Content-Length: ")
		buf.WriteString(strconv.Itoa(len(body)))
		buf.WriteString("\r\n")
	}
	header.Each(func(key, value string) {
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\r\n")
	})
	buf.WriteString("\r\n")
	buf.Write(body)

	_, err := w.Write(buf.Bytes())
	return err
}

// Response is a parsed HTTP response, as read by a client.
type Response struct {
	Status int
	Reason string
	Header *Header
	Body   []byte
}

// ReadResponse reads one HTTP response from r. It is the client half of
// the wire format and exists for the probe subcommand and for tests that
// verify framing round-trips.
func ReadResponse(r io.Reader) (*Response, error) {
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

	lines := strings.Split(string(buf[:delim]), "\r\n")
	parts := strings.SplitN(lines[0], " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/") {
		return nil, errors.New("E101").WithDetailf("status line %q", lines[0])
	}
	status, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, errors.New("E101").WithDetailf("status %q", parts[1])
	}

	resp := &Response{Status: status, Header: NewHeader()}
	if len(parts) == 3 {
		resp.Reason = parts[2]
	}
	for _, line := range lines[1:] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, errors.New("E104").WithDetailf("line %q", line)
		}
		resp.Header.Set(key, strings.TrimLeft(value, " "))
	}

	raw, ok := resp.Header.Lookup("Content-Length")
	if !ok {
		return resp, nil
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
	resp.Body = buf[bodyStart:total]
	return resp, nil
}
