package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/atmledger/internal/generator"
)

const copyBatchSize = 10000

// Sink writes generated sources into source_lines with COPY.
type Sink struct {
	pool pgxPool
}

// NewSink creates a new Sink.
func NewSink(pool *pgxpool.Pool) *Sink {
	return newSinkWithPool(pool)
}

func newSinkWithPool(pool pgxPool) *Sink {
	return &Sink{pool: pool}
}

// Create deletes the previous rows of source.
func (s *Sink) Create(ctx context.Context, source string) (generator.LineWriter, error) {
	if _, err := s.pool.Exec(ctx, queryDeleteSource, source); err != nil {
		return nil, fmt.Errorf("failed to reset source %s: %w", source, err)
	}
	return &lineWriter{
		ctx:    ctx,
		pool:   s.pool,
		source: source,
		rows:   make([][]any, 0, copyBatchSize),
	}, nil
}

type lineWriter struct {
	ctx    context.Context
	pool   pgxPool
	source string
	lineNo int32
	rows   [][]any
}

func (w *lineWriter) WriteLine(line string) error {
	w.lineNo++
	w.rows = append(w.rows, []any{w.source, w.lineNo, line})
	if len(w.rows) >= copyBatchSize {
		return w.flush()
	}
	return nil
}

func (w *lineWriter) flush() error {
	if len(w.rows) == 0 {
		return nil
	}
	_, err := w.pool.CopyFrom(w.ctx, sourceLinesTable, sourceLinesColumns, pgx.CopyFromRows(w.rows))
	if err != nil {
		return fmt.Errorf("failed to copy lines of %s: %w", w.source, err)
	}
	w.rows = w.rows[:0]
	return nil
}

func (w *lineWriter) Close() error {
	return w.flush()
}
