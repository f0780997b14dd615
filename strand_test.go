package strand_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/strand-dev/strand"
	"github.com/strand-dev/strand/pkg/middleware"
	"github.com/strand-dev/strand/pkg/wire"
)

// startStack brings up a server with the given router on a loopback port
// and returns its address.
func startStack(t *testing.T, cfg *strand.Config, r *strand.Router) string {
	t.Helper()

	if cfg == nil {
		cfg = strand.DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := strand.NewServer(cfg)
	srv.SetRouter(r)

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(context.Background(), "127.0.0.1:0")
	}()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == nil {
		if time.Now().After(deadline) {
			t.Fatal("listener did not come up")
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Cleanup(func() {
		srv.Shutdown()
		<-done
	})
	return srv.Addr().String()
}

func request(t *testing.T, addr, raw string) *wire.Response {
	t.Helper()
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer nc.Close()
	if _, err := nc.Write([]byte(raw)); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp, err := wire.ReadResponse(nc)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp
}

func TestEndToEnd_MultiDomainRouting(t *testing.T) {
	apex := strand.NewDomain(strand.Exact("a.example.com"))
	if err := apex.HandleFunc("/", func(ctx context.Context, conn *strand.Connection) strand.Result {
		return strand.Body([]byte("apex"))
	}); err != nil {
		t.Fatal(err)
	}

	api := strand.NewDomain(strand.OneOf("api.example.com", "api2.example.com"))
	if err := api.HandleFunc("/ping", func(ctx context.Context, conn *strand.Connection) strand.Result {
		conn.SetHeader("Content-Type", "text/plain")
		return strand.Body([]byte("pong"))
	}); err != nil {
		t.Fatal(err)
	}

	r := strand.NewRouter()
	r.AddDomains(apex, api)
	addr := startStack(t, nil, r)

	resp := request(t, addr, "GET / HTTP/1.1\r\nHost: a.example.com\r\n\r\n")
	if resp.Status != 200 || string(resp.Body) != "apex" {
		t.Errorf("apex response = %d %q", resp.Status, resp.Body)
	}

	for _, host := range []string{"api.example.com", "api2.example.com"} {
		resp = request(t, addr, "GET /ping HTTP/1.1\r\nHost: "+host+"\r\n\r\n")
		if resp.Status != 200 || string(resp.Body) != "pong" {
			t.Errorf("%s response = %d %q", host, resp.Status, resp.Body)
		}
		if got := resp.Header.Get("Content-Type"); got != "text/plain" {
			t.Errorf("%s Content-Type = %q", host, got)
		}
	}

	// Unknown hostname falls to the fixed 404.
	resp = request(t, addr, "GET / HTTP/1.1\r\nHost: nobody.example.com\r\n\r\n")
	if resp.Status != 404 || string(resp.Body) != "Not Found." {
		t.Errorf("unknown host response = %d %q", resp.Status, resp.Body)
	}
}

func TestEndToEnd_GzipNegotiation(t *testing.T) {
	big := strings.Repeat("strand ", 500)

	d := strand.NewDomain(strand.Exact("a.example.com"))
	if err := d.HandleFunc("/big", func(ctx context.Context, conn *strand.Connection) strand.Result {
		conn.SetHeader("Content-Type", "text/plain")
		return strand.Body([]byte(big))
	}); err != nil {
		t.Fatal(err)
	}

	r := strand.NewRouter()
	r.AddDomain(d)
	addr := startStack(t, &strand.Config{GzipLevel: 6}, r)

	resp := request(t, addr, "GET /big HTTP/1.1\r\nHost: a.example.com\r\nAccept-Encoding: gzip\r\n\r\n")
	if got := resp.Header.Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}
	zr, err := gzip.NewReader(bytes.NewReader(resp.Body))
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	plain, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("gunzip: %v", err)
	}
	if string(plain) != big {
		t.Error("gunzipped body differs from handler output")
	}

	// The same route without Accept-Encoding serves identity.
	resp = request(t, addr, "GET /big HTTP/1.1\r\nHost: a.example.com\r\n\r\n")
	if resp.Header.Has("Content-Encoding") {
		t.Error("Content-Encoding set for a client that does not accept gzip")
	}
	if string(resp.Body) != big {
		t.Error("identity body differs from handler output")
	}
}

func TestEndToEnd_FormSubmission(t *testing.T) {
	d := strand.NewDomain(strand.Exact("a.example.com"))
	if err := d.HandleFunc("/submit", func(ctx context.Context, conn *strand.Connection) strand.Result {
		return strand.Body([]byte("got " + conn.Request.Args["msg"]))
	}, "POST"); err != nil {
		t.Fatal(err)
	}

	r := strand.NewRouter()
	r.AddDomain(d)
	addr := startStack(t, nil, r)

	body := "msg=hello"
	raw := "POST /submit HTTP/1.1\r\nHost: a.example.com\r\n" +
		"Content-Type: application/x-www-form-urlencoded\r\n" +
		"Content-Length: 9\r\n\r\n" + body

	resp := request(t, addr, raw)
	if resp.Status != 200 || string(resp.Body) != "got hello" {
		t.Errorf("response = %d %q, want 200 %q", resp.Status, resp.Body, "got hello")
	}

	// GET against a POST-only route misses.
	resp = request(t, addr, "GET /submit HTTP/1.1\r\nHost: a.example.com\r\n\r\n")
	if resp.Status != 404 {
		t.Errorf("GET status = %d, want 404", resp.Status)
	}
}

func TestEndToEnd_MetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()

	d := strand.NewDomain(strand.Exact("a.example.com"))
	if err := d.HandleFunc("/", func(ctx context.Context, conn *strand.Connection) strand.Result {
		return strand.Body([]byte("ok"))
	}); err != nil {
		t.Fatal(err)
	}
	if err := d.HandleFunc("/metrics", middleware.Exposition(reg)); err != nil {
		t.Fatal(err)
	}

	r := strand.NewRouter()
	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
	r.AddDomain(d)
	addr := startStack(t, nil, r)

	// Drive one request through the instrumented handler, then scrape.
	if resp := request(t, addr, "GET / HTTP/1.1\r\nHost: a.example.com\r\n\r\n"); resp.Status != 200 {
		t.Fatalf("instrumented request status = %d", resp.Status)
	}

	resp := request(t, addr, "GET /metrics HTTP/1.1\r\nHost: a.example.com\r\n\r\n")
	if resp.Status != 200 {
		t.Fatalf("metrics status = %d", resp.Status)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/plain") {
		t.Errorf("metrics Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(resp.Body), "strand_requests_total") {
		t.Error("exposition output missing strand_requests_total")
	}
}

func TestEndToEnd_ExplicitStatus(t *testing.T) {
	d := strand.NewDomain(strand.Exact("a.example.com"))
	if err := d.HandleFunc("/teapot", func(ctx context.Context, conn *strand.Connection) strand.Result {
		return strand.BodyWithStatus(418, []byte("short and stout"))
	}); err != nil {
		t.Fatal(err)
	}

	r := strand.NewRouter()
	r.AddDomain(d)
	addr := startStack(t, nil, r)

	resp := request(t, addr, "GET /teapot HTTP/1.1\r\nHost: a.example.com\r\n\r\n")
	if resp.Status != 418 {
		t.Errorf("Status = %d, want 418", resp.Status)
	}
	if resp.Reason != "IM A TEAPOT" {
		t.Errorf("Reason = %q", resp.Reason)
	}
}
