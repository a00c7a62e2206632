// Package core wires the bounded queue, message, Bloom filter, extractor
// and fetcher packages into the crawl pipeline itself: three stage loops
// (request, analyze, filter) connected seeds -> responses -> candidates
// -> seeds, a shared shutdown protocol and a global dispatch budget.
package core

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/crawlkit/corecrawl/internal/bloom"
	"github.com/crawlkit/corecrawl/internal/extract"
	"github.com/crawlkit/corecrawl/internal/fetch"
	"github.com/crawlkit/corecrawl/internal/message"
	"github.com/crawlkit/corecrawl/internal/messaging"
	"github.com/crawlkit/corecrawl/internal/queue"
)

// Status is the core's lifecycle state. Transitions are monotone:
// Ready -> Running -> Unavailable.
type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Default tunables, overridable through Config.
const (
	MaxSeeds      = 1024
	MaxCandidates = 4096
	MaxResps      = 256
	MaxTotalSeeds = 10_000
	BFM           = 1_600_000
	BFN           = 110_000
	TimeoutIdle   = 20 * time.Second
	TimeoutPush   = 1 * time.Second
)

// Config holds every tunable the core needs at construction time.
type Config struct {
	MaxSeeds        int
	MaxCandidates   int
	MaxResps        int
	MaxTotalSeeds   int64
	BFM             int
	BFN             int
	TimeoutIdle     time.Duration
	TimeoutPush     time.Duration
	OutputPath      string
	AnalyzePoolSize int // 0 means runtime.GOMAXPROCS(0)

	// FetchOptions is threaded straight into fetch.New. Production callers
	// leave it nil (port 80); tests use it to point the fetcher at a
	// loopback listener.
	FetchOptions []fetch.Option

	// EdgeFeed, when set, receives a live JSON copy of every accepted
	// edge alongside the append-only log file. Optional: nil disables it.
	EdgeFeed messaging.Producer
}

// DefaultConfig returns the spec's default tunables, writing the edge log
// to outputPath.
func DefaultConfig(outputPath string) Config {
	return Config{
		MaxSeeds:      MaxSeeds,
		MaxCandidates: MaxCandidates,
		MaxResps:      MaxResps,
		MaxTotalSeeds: MaxTotalSeeds,
		BFM:           BFM,
		BFN:           BFN,
		TimeoutIdle:   TimeoutIdle,
		TimeoutPush:   TimeoutPush,
		OutputPath:    outputPath,
	}
}

// Core owns the three queues, the dedupe filter and the edge log sink,
// and drives the three stage loops across a run.
type Core struct {
	mu     sync.Mutex
	status Status

	seeds      *queue.Queue[message.Message]
	responses  *queue.Queue[message.Message]
	candidates *queue.Queue[message.Message]

	fetcher   *fetch.Fetcher
	extractor *extract.Extractor
	filter    *bloom.Filter
	edges     *edgeLog

	cfg    Config
	logger *logrus.Logger
	count  atomic.Int64

	wg sync.WaitGroup
}

// New constructs a Core in the Ready state, opening the edge log at
// cfg.OutputPath in append mode.
func New(cfg Config, logger *logrus.Logger) (*Core, error) {
	edges, err := openEdgeLog(cfg.OutputPath)
	if err != nil {
		return nil, err
	}
	return &Core{
		status:     StatusReady,
		seeds:      queue.New[message.Message](cfg.MaxSeeds),
		responses:  queue.New[message.Message](cfg.MaxResps),
		candidates: queue.New[message.Message](cfg.MaxCandidates),
		fetcher:    fetch.New(logger, cfg.FetchOptions...),
		extractor:  extract.New(),
		filter:     bloom.New(cfg.BFM, cfg.BFN),
		edges:      edges,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// Status reports the core's current lifecycle state.
func (c *Core) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Seed enqueues an initial URL onto the frontier, blocking while the
// seeds queue is full. Callers must seed before or concurrently with Run.
func (c *Core) Seed(url string) {
	c.seeds.Push(message.URL(url))
}

// Run transitions the core to Running, starts the three stage loops and
// blocks until shutdown drains all of them. It returns an error if the
// core was not in the Ready state.
func (c *Core) Run() error {
	c.mu.Lock()
	if c.status != StatusReady {
		c.mu.Unlock()
		return errors.New("core: Run called outside the Ready state")
	}
	c.status = StatusRunning
	c.mu.Unlock()

	c.wg.Add(3)
	go c.requestLoop()
	go c.analyzeLoop()
	go c.filterLoop()
	c.wg.Wait()
	return nil
}

// Shutdown moves the core to Unavailable, clears the three queues and
// enqueues a Stop sentinel into each so every blocked loop wakes within
// at most one additional pop. Idempotent once Unavailable.
func (c *Core) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusUnavailable {
		return
	}
	c.status = StatusUnavailable

	c.seeds.Clear()
	c.responses.Clear()
	c.candidates.Clear()

	c.seeds.Push(message.Stop())
	c.responses.Push(message.Stop())
	c.candidates.Push(message.Stop())
}

// Close releases the edge log file. Call after Run returns.
func (c *Core) Close() error {
	return c.edges.Close()
}

func (c *Core) requestLoop() {
	defer c.wg.Done()
	for {
		msg, ok := c.seeds.PopFor(c.cfg.TimeoutIdle)
		if !ok {
			c.logger.Warn("core: seeds queue idle, initiating shutdown")
			c.Shutdown()
			return
		}
		switch msg.Kind {
		case message.KindStop:
			return
		case message.KindURL:
			c.dispatch(msg.URL)
			if n := c.count.Add(1); n > c.cfg.MaxTotalSeeds {
				c.logger.WithField("dispatched", n).Warn("core: budget exhausted, initiating shutdown")
				c.Shutdown()
				return
			}
		default:
			c.logger.WithField("kind", msg.Kind).Debug("core: unexpected message on seeds queue")
		}
	}
}

func (c *Core) dispatch(u string) {
	req := fetch.NewRequest(u)
	req.AddHandler(func(body string) {
		if !isHTTP200(body) {
			c.logger.WithField("url", u).Debug("core: non-200 response discarded")
			return
		}
		if !c.responses.PushFor(message.HTTPResponse(u, body), c.cfg.TimeoutPush) {
			c.logger.WithField("url", u).Error("core: responses queue saturated, dropping response")
		}
	})
	c.fetcher.Commit(req)
}

// isHTTP200 reports whether body's status line begins "HTTP/?.? 200",
// i.e. bytes 9 through 11 read "200".
func isHTTP200(body string) bool {
	return len(body) >= 12 && body[9:12] == "200"
}

func (c *Core) analyzeLoop() {
	defer c.wg.Done()

	group, _ := errgroup.WithContext(context.Background())
	limit := c.cfg.AnalyzePoolSize
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	group.SetLimit(limit)

	for {
		msg := c.responses.Pop()
		if msg.Kind == message.KindStop {
			break
		}
		if msg.Kind != message.KindHTTPResponse {
			c.logger.WithField("kind", msg.Kind).Debug("core: unexpected message on responses queue")
			continue
		}
		requestURL, body := msg.RequestURL, msg.Body
		group.Go(func() error {
			c.analyzeTask(requestURL, body)
			return nil
		})
	}
	group.Wait()
}

func (c *Core) analyzeTask(requestURL, body string) {
	// The extractor derives its implicit hostName from the scanned text's
	// first line (up to the first '\r'), per spec.md §4.3 and the original
	// resolver's convention. Since message.Message keeps RequestURL and
	// Body as separate fields (see the Open Question decision on
	// message.Message), that first line has to be restored here rather
	// than relying on the fetched body, whose first line is the HTTP
	// status line, not the request URL.
	c.extractor.Extract(requestURL+"\r\n"+body, func(source string, offset int, url string) {
		trimmed := strings.TrimSpace(url)
		if trimmed == "" || strings.ContainsAny(trimmed, "\n\r\t") {
			return
		}
		if !c.candidates.PushFor(message.URL(trimmed), c.cfg.TimeoutPush) {
			c.logger.WithField("url", trimmed).Error("core: candidates queue saturated, dropping candidate")
			return
		}
		if err := c.edges.WriteLine(requestURL, trimmed); err != nil {
			c.logger.WithError(err).Error("core: failed writing edge log line")
		}
		if c.cfg.EdgeFeed != nil {
			if err := messaging.PublishEdge(c.cfg.EdgeFeed, requestURL, trimmed); err != nil {
				c.logger.WithError(err).Warn("core: failed publishing edge to live feed")
			}
		}
	})
}

func (c *Core) filterLoop() {
	defer c.wg.Done()
	for {
		msg := c.candidates.Pop()
		if msg.Kind == message.KindStop {
			return
		}
		if msg.Kind != message.KindURL {
			c.logger.WithField("kind", msg.Kind).Debug("core: unexpected message on candidates queue")
			continue
		}
		if c.filter.Test(msg.URL) {
			if !c.seeds.PushFor(message.URL(msg.URL), c.cfg.TimeoutPush) {
				c.logger.WithField("url", msg.URL).Error("core: seeds queue saturated, dropping accepted url")
			}
		}
	}
}
