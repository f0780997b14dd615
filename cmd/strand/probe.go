package main

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/strand-dev/strand/pkg/wire"
)

func probeCmd() *cobra.Command {
	var (
		method  string
		host    string
		body    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "probe <addr> <path>",
		Short: "Send one raw request and print the parsed response",
		Long: `Probe opens a single TCP or Unix-domain connection to addr, writes
one HTTP request for path, and prints the response as parsed by the
same wire code the server uses. Useful for smoke-testing a running
server without an HTTP client in the way.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(args[0], args[1], method, host, body, timeout)
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", "GET", "Request method")
	cmd.Flags().StringVar(&host, "host", "", "Host header (default: addr)")
	cmd.Flags().StringVarP(&body, "data", "d", "", "Request body (sent with Content-Length)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Dial and read timeout")

	return cmd
}

func runProbe(addr, path, method, host, body string, timeout time.Duration) error {
	network := "tcp"
	if strings.Contains(addr, "/") {
		network = "unix"
	}
	if host == "" {
		host = addr
	}

	conn, err := net.DialTimeout(network, addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	var req strings.Builder
	fmt.Fprintf(&req, "%s %s HTTP/1.1\r\n", method, path)
	fmt.Fprintf(&req, "Host: %s\r\n", host)
	if body != "" {
		fmt.Fprintf(&req, "Content-Length: %d\r\n", len(body))
	}
	req.WriteString("\r\n")
	req.WriteString(body)

	if _, err := conn.Write([]byte(req.String())); err != nil {
		return err
	}

	resp, err := wire.ReadResponse(conn)
	if err != nil {
		return err
	}

	success("%d %s", resp.Status, resp.Reason)
	resp.Header.Each(func(key, value string) {
		info("%s: %s", key, value)
	})
	if len(resp.Body) > 0 {
		fmt.Println()
		fmt.Println(string(resp.Body))
	}
	return nil
}
