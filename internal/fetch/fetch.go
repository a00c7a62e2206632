// Package fetch implements the crawler's HTTP/1.0-style client: plain
// cleartext GET requests on port 80 with hand-rolled wire framing, driven
// by a bounded worker pool. It intentionally bypasses net/http's client:
// the wire format, the read loop and the EOF-as-success semantics are
// part of this system's observable contract, not an implementation detail
// net/http's richer client would preserve.
package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// MaxThreads bounds the number of requests the Fetcher services at once.
const MaxThreads = 32

// ReadBufSize is the size of the Fetcher's per-read temporary buffer.
const ReadBufSize = 2048

// dialTimeout bounds DNS resolution and the TCP handshake; it is not part
// of the spec's tunables and exists only so a dead host can't wedge a
// worker slot forever.
const dialTimeout = 15 * time.Second

// Handler receives the full accumulated response buffer once a request
// completes successfully (i.e. the connection reached EOF cleanly).
type Handler func(body string)

// Request holds everything needed to issue a single GET and the handlers
// to invoke with its body.
type Request struct {
	Host     string
	Path     string
	handlers []Handler
}

// NewRequest builds a Request from a bare "host[/path]" string, the form
// URLs take throughout this system: no scheme, a host, and an optional
// path. A URL with no slash resolves to path "/".
func NewRequest(url string) *Request {
	if i := strings.IndexByte(url, '/'); i >= 0 {
		return &Request{Host: url[:i], Path: url[i:]}
	}
	return &Request{Host: url, Path: "/"}
}

// AddHandler registers a handler to be invoked with the response body
// once the request completes successfully.
func (r *Request) AddHandler(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Fetcher dispatches committed requests onto a bounded pool of MaxThreads
// concurrent workers, each performing DNS resolution, a TCP connect, the
// GET write and the read loop on its own goroutine.
type Fetcher struct {
	sem      *semaphore.Weighted
	resolver *net.Resolver
	log      *logrus.Logger
	port     string
}

// Option configures optional Fetcher behavior.
type Option func(*Fetcher)

// WithPort overrides the port every request connects to. Production
// crawls never need this: the fetcher always speaks cleartext HTTP on
// port 80. It exists so tests can point the fetcher at an ephemeral
// loopback listener instead.
func WithPort(port string) Option {
	return func(f *Fetcher) { f.port = port }
}

// New creates a Fetcher that logs through log.
func New(log *logrus.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		sem:      semaphore.NewWeighted(MaxThreads),
		resolver: net.DefaultResolver,
		log:      log,
		port:     "80",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Commit submits req for asynchronous processing and returns immediately.
// Response delivery happens later, on a pool goroutine, via req's
// registered handlers.
func (f *Fetcher) Commit(req *Request) {
	go func() {
		ctx := context.Background()
		if err := f.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer f.sem.Release(1)
		f.serve(ctx, req)
	}()
}

func (f *Fetcher) serve(ctx context.Context, req *Request) {
	lookupCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	addrs, err := f.resolver.LookupHost(lookupCtx, req.Host)
	if err != nil || len(addrs) == 0 {
		f.log.WithFields(logrus.Fields{"host": req.Host, "error": err}).Warn("fetch: DNS resolution failed")
		return
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	// The endpoint list may contain several addresses; this system connects
	// once to the first resolved endpoint rather than racing a connect per
	// endpoint against a single shared remote, which is what the original
	// implementation this was ported from did (almost certainly a bug: it
	// reused the same endpoint for every concurrent connect attempt).
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(addrs[0], f.port))
	if err != nil {
		f.log.WithFields(logrus.Fields{"host": req.Host, "error": err}).Warn("fetch: connect failed")
		return
	}
	defer conn.Close()

	request := "GET " + req.Path + " HTTP/1.1\r\n" +
		"HOST: " + req.Host + "\r\n" +
		"Connection: close\r\n\r\n"

	if _, err := conn.Write([]byte(request)); err != nil {
		f.log.WithFields(logrus.Fields{"host": req.Host, "error": err}).Warn("fetch: write failed")
		return
	}

	var body strings.Builder
	buf := make([]byte, ReadBufSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			body.Write(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				for _, h := range req.handlers {
					h(body.String())
				}
				return
			}
			f.log.WithFields(logrus.Fields{"host": req.Host, "error": err}).Warn("fetch: read failed")
			return
		}
	}
}
