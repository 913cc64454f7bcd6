package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iho/atmledger/internal/generator"
)

const pushBatchSize = 1000

// Sink writes generated sources to Redis lists.
type Sink struct {
	client *redis.Client
	prefix string
}

// NewSink creates a new Sink.
func NewSink(client *redis.Client, prefix string) *Sink {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Sink{client: client, prefix: prefix}
}

// Create deletes any previous list for source.
func (s *Sink) Create(ctx context.Context, source string) (generator.LineWriter, error) {
	key := s.prefix + source
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("failed to reset source %s: %w", source, err)
	}
	return &lineWriter{
		ctx:    ctx,
		client: s.client,
		key:    key,
		buf:    make([]any, 0, pushBatchSize),
	}, nil
}

type lineWriter struct {
	ctx    context.Context
	client *redis.Client
	key    string
	buf    []any
}

func (w *lineWriter) WriteLine(line string) error {
	w.buf = append(w.buf, line)
	if len(w.buf) >= pushBatchSize {
		return w.flush()
	}
	return nil
}

func (w *lineWriter) flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	if err := w.client.RPush(w.ctx, w.key, w.buf...).Err(); err != nil {
		return fmt.Errorf("failed to push lines to %s: %w", w.key, err)
	}
	w.buf = w.buf[:0]
	return nil
}

func (w *lineWriter) Close() error {
	return w.flush()
}
