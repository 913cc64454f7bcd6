// Package postgres serves transaction sources stored in the source_lines
// table.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/atmledger/internal/domain"
	"github.com/iho/atmledger/internal/usecase"
)

const (
	queryListSources  = `SELECT DISTINCT source FROM source_lines ORDER BY source`
	querySourceExists = `SELECT EXISTS (SELECT 1 FROM source_lines WHERE source = $1)`
	querySourceLines  = `SELECT line FROM source_lines WHERE source = $1 ORDER BY line_no`
	queryDeleteSource = `DELETE FROM source_lines WHERE source = $1`
)

var sourceLinesTable = pgx.Identifier{"source_lines"}

var sourceLinesColumns = []string{"source", "line_no", "line"}

type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Provider implements usecase.SourceProvider over the source_lines table.
type Provider struct {
	pool pgxPool
}

// NewProvider creates a new Provider.
func NewProvider(pool *pgxpool.Pool) *Provider {
	return newProviderWithPool(pool)
}

func newProviderWithPool(pool pgxPool) *Provider {
	return &Provider{pool: pool}
}

// List returns the distinct sources, sorted by name.
func (p *Provider) List(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, queryListSources)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	sources, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return sources, nil
}

// Open streams the lines of source in line order.
func (p *Provider) Open(ctx context.Context, source string) (usecase.LineScanner, error) {
	var exists bool
	if err := p.pool.QueryRow(ctx, querySourceExists, source).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", source, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceUnavailable, source)
	}

	rows, err := p.pool.Query(ctx, querySourceLines, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", source, err)
	}
	return &scanner{rows: rows}, nil
}

type scanner struct {
	rows pgx.Rows
	line string
	err  error
}

func (s *scanner) Scan() bool {
	if s.err != nil || !s.rows.Next() {
		return false
	}
	if err := s.rows.Scan(&s.line); err != nil {
		s.err = err
		return false
	}
	return true
}

func (s *scanner) Text() string { return s.line }

func (s *scanner) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.rows.Err()
}

func (s *scanner) Close() error {
	s.rows.Close()
	return nil
}
