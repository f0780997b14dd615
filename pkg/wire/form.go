package wire

import (
	"bytes"
	"strings"

	"github.com/strand-dev/strand/internal/errors"
)

var crlf = []byte("\r\n")

// parseMultipart splits the body on the boundary declared in contentType
// and routes each part into Files (filename present) or MultipartArgs
// (name only). A part without Content-Disposition is a protocol error.
func (req *Request) parseMultipart(contentType string) error {
	_, params, ok := strings.Cut(contentType, "boundary=")
	if !ok {
		return errors.New("E108")
	}
	boundary := params
	if semi := strings.IndexByte(boundary, ';'); semi != -1 {
		boundary = boundary[:semi]
	}
	boundary = strings.Trim(boundary, `"`)
	if boundary == "" {
		return errors.New("E108")
	}

	req.MultipartArgs = make(map[string]string)
	req.Files = make(map[string][]byte)

	segments := bytes.Split(req.Body, []byte("--"+boundary))
	if len(segments) < 3 {
		return errors.New("E107").WithDetail("no parts between boundary markers")
	}
	// First segment is the preamble, last is the closing marker.
	for _, segment := range segments[1 : len(segments)-1] {
		if err := req.parsePart(segment); err != nil {
			return err
		}
	}
	return nil
}

// parsePart handles a single boundary-delimited part: a header block in
// top-level header syntax, a blank line, then the part body.
func (req *Request) parsePart(segment []byte) error {
	rawHeaders, body, ok := bytes.Cut(segment, headerDelim)
	if !ok {
		return errors.New("E107").WithDetail("part missing header terminator")
	}
	body = bytes.TrimSuffix(body, crlf)

	partHeader := NewHeader()
	for _, line := range strings.Split(string(rawHeaders), "\r\n") {
		if line == "" {
			continue // leading CRLF after the boundary marker
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return errors.New("E104").WithDetailf("part header %q", line)
		}
		partHeader.Set(key, strings.TrimLeft(value, " "))
	}

	disposition, ok := partHeader.Lookup("Content-Disposition")
	if !ok {
		return errors.New("E107").WithDetail("part missing Content-Disposition")
	}

	attrs := parseDispositionAttrs(disposition)
	if filename, ok := attrs["filename"]; ok {
		req.Files[filename] = body
	} else if name, ok := attrs["name"]; ok {
		req.MultipartArgs[name] = string(body)
	}
	return nil
}

// parseDispositionAttrs decodes `form-data; name="k"; filename="x"` into
// its attribute map, dropping the leading disposition type token.
func parseDispositionAttrs(disposition string) map[string]string {
	attrs := make(map[string]string)
	parts := strings.Split(disposition, ";")
	for _, attr := range parts[1:] {
		key, value, ok := strings.Cut(strings.TrimSpace(attr), "=")
		if !ok {
			continue
		}
		attrs[key] = strings.Trim(value, `"`)
	}
	return attrs
}
