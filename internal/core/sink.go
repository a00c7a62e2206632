package core

import (
	"fmt"
	"os"
	"sync"
)

// edgeLog is the append-only, thread-safe text sink the analyze stage
// writes "source\tdest" lines to. It mirrors the role of this system's
// original thread-safe output stream wrapper, backed by a single mutex
// guarding the one mutating operation that matters: appending a line.
type edgeLog struct {
	mu sync.Mutex
	f  *os.File
}

// openEdgeLog opens path in append mode, creating it if necessary.
// Multiple runs against the same path accumulate rather than overwrite.
func openEdgeLog(path string) (*edgeLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &edgeLog{f: f}, nil
}

// WriteLine appends "source\tdest\n" atomically with respect to other
// WriteLine calls.
func (s *edgeLog) WriteLine(source, dest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.f, "%s\t%s\n", source, dest)
	return err
}

// Close flushes and closes the underlying file.
func (s *edgeLog) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
