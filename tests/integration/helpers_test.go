package integration

import (
	"context"
	"sync"

	"github.com/iho/atmledger/internal/generator"
)

type memorySink struct {
	mu      sync.Mutex
	sources map[string][]string
}

func newMemorySink() *memorySink {
	return &memorySink{sources: make(map[string][]string)}
}

func (s *memorySink) Create(ctx context.Context, source string) (generator.LineWriter, error) {
	return &memoryWriter{sink: s, source: source}, nil
}

type memoryWriter struct {
	sink   *memorySink
	source string
}

func (w *memoryWriter) WriteLine(line string) error {
	w.sink.mu.Lock()
	defer w.sink.mu.Unlock()
	w.sink.sources[w.source] = append(w.sink.sources[w.source], line)
	return nil
}

func (w *memoryWriter) Close() error { return nil }
