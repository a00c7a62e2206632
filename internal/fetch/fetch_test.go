package fetch

import (
	"bufio"
	"io"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// rawServer spins up a bare TCP listener (not httptest/net/http) so the
// request line of the fetcher's hand-rolled wire format can be asserted
// byte-for-byte, the
// same way the original system's fetcher was meant to be exercised.
func rawServer(t *testing.T, respond func(requestLine string) string) (host, port string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				reader := bufio.NewReader(conn)
				line, err := reader.ReadString('\n')
				if err != nil {
					return
				}
				io.WriteString(conn, respond(line))
			}()
		}
	}()
	host, port, err = net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return host, port
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestFetchWritesExactGETRequestAndDeliversBodyOnEOF(t *testing.T) {
	received := make(chan string, 1)
	host, port := rawServer(t, func(requestLine string) string {
		received <- requestLine
		return "HTTP/1.1 200 OK\r\n\r\n<a href=\"/page\">x</a>"
	})

	f := New(discardLogger(), WithPort(port))
	req := NewRequest(host + "/foo")
	done := make(chan string, 1)
	req.AddHandler(func(body string) { done <- body })
	f.Commit(req)

	select {
	case line := <-received:
		require.Equal(t, "GET /foo HTTP/1.1\r\n", line)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received a request")
	}

	select {
	case body := <-done:
		require.Contains(t, body, "HTTP/1.1 200 OK")
		require.Contains(t, body, `<a href="/page">x</a>`)
	case <-time.After(2 * time.Second):
		t.Fatal("handler was never invoked")
	}
}

func TestNewRequestDefaultsPathToSlash(t *testing.T) {
	req := NewRequest("host.test")
	require.Equal(t, "host.test", req.Host)
	require.Equal(t, "/", req.Path)
}

func TestNewRequestSplitsHostAndPath(t *testing.T) {
	req := NewRequest("host.test/a/b")
	require.Equal(t, "host.test", req.Host)
	require.Equal(t, "/a/b", req.Path)
}

func TestFetchDropsRequestOnUnresolvableHost(t *testing.T) {
	f := New(discardLogger())
	req := NewRequest("this-host-does-not-resolve.invalid/path")
	called := false
	req.AddHandler(func(body string) { called = true })
	f.Commit(req)
	time.Sleep(200 * time.Millisecond)
	require.False(t, called)
}
