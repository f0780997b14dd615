package server

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/strand-dev/strand/internal/errors"
	"github.com/strand-dev/strand/pkg/wire"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sendOverPipe runs Connection.Send against one end of an in-memory pipe
// and reads the framed response back from the other.
func sendOverPipe(t *testing.T, gzipLevel int, acceptEncoding, contentType string, status int, body []byte) *wire.Response {
	t.Helper()

	client, srv := net.Pipe()
	defer client.Close()

	conn := newConnection(srv, gzipLevel, testLogger())
	conn.Request = &wire.Request{Header: wire.NewHeader()}
	if acceptEncoding != "" {
		conn.Request.Header.Set("Accept-Encoding", acceptEncoding)
	}
	if contentType != "" {
		conn.SetHeader("Content-Type", contentType)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- conn.Send(status, body)
		srv.Close()
	}()

	resp, err := wire.ReadResponse(client)
	if err != nil {
		t.Fatalf("ReadResponse() error: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	return resp
}

func TestSend_GzipApplied(t *testing.T) {
	body := []byte(strings.Repeat("a", 2000))

	resp := sendOverPipe(t, 6, "gzip, deflate", "text/plain", 200, body)

	if got := resp.Header.Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}
	if len(resp.Body) >= len(body) {
		t.Errorf("compressed body (%d bytes) not smaller than input (%d)", len(resp.Body), len(body))
	}

	zr, err := gzip.NewReader(bytes.NewReader(resp.Body))
	if err != nil {
		t.Fatalf("gzip.NewReader() error: %v", err)
	}
	plain, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("gunzip error: %v", err)
	}
	if !bytes.Equal(plain, body) {
		t.Error("gunzipped body differs from original")
	}
}

func TestSend_GzipSkipped(t *testing.T) {
	big := []byte(strings.Repeat("a", 2000))

	tests := []struct {
		name           string
		gzipLevel      int
		acceptEncoding string
		contentType    string
		body           []byte
	}{
		{"compression disabled", 0, "gzip", "text/plain", big},
		{"client does not accept gzip", 6, "", "text/plain", big},
		{"body under frame threshold", 6, "gzip", "text/plain", []byte("small")},
		{"png already compressed", 6, "gzip", "image/png", big},
		{"jpeg already compressed", 6, "gzip", "image/jpeg", big},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := sendOverPipe(t, tt.gzipLevel, tt.acceptEncoding, tt.contentType, 200, tt.body)
			if resp.Header.Has("Content-Encoding") {
				t.Error("Content-Encoding set on an identity response")
			}
			if !bytes.Equal(resp.Body, tt.body) {
				t.Error("body modified despite gzip being skipped")
			}
		})
	}
}

func TestSend_DoubleSend(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	conn := newConnection(srv, 0, testLogger())
	conn.Request = &wire.Request{Header: wire.NewHeader()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- conn.Send(200, []byte("ok"))
	}()
	if _, err := wire.ReadResponse(client); err != nil {
		t.Fatalf("ReadResponse() error: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("first Send() error: %v", err)
	}

	if err := conn.Send(200, []byte("again")); !errors.IsCode(err, "E304") {
		t.Errorf("second Send() error = %v, want E304", err)
	}
}

func TestSend_UnknownStatusIsRecoverable(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	conn := newConnection(srv, 0, testLogger())
	conn.Request = &wire.Request{Header: wire.NewHeader()}

	// Nothing hits the wire, so the caller may retry with a valid code.
	if err := conn.Send(299, []byte("x")); !errors.IsCode(err, "E301") {
		t.Fatalf("Send(299) error = %v, want E301", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- conn.Send(200, []byte("ok"))
	}()
	resp, err := wire.ReadResponse(client)
	if err != nil {
		t.Fatalf("ReadResponse() error: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("retry Send() error: %v", err)
	}
	if resp.Status != 200 || string(resp.Body) != "ok" {
		t.Errorf("retry response = %d %q", resp.Status, resp.Body)
	}
}

func TestSend_ResponseHeadersAccumulate(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	conn := newConnection(srv, 0, testLogger())
	conn.Request = &wire.Request{Header: wire.NewHeader()}
	conn.SetHeader("Content-Type", "application/json")
	conn.SetHeader("X-Request-Id", "abc123")

	errCh := make(chan error, 1)
	go func() {
		errCh <- conn.Send(200, []byte(`{}`))
	}()
	resp, err := wire.ReadResponse(client)
	if err != nil {
		t.Fatalf("ReadResponse() error: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := resp.Header.Get("X-Request-Id"); got != "abc123" {
		t.Errorf("X-Request-Id = %q", got)
	}
}
