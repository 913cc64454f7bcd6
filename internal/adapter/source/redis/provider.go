// Package redis serves transaction sources stored as Redis lists, one list
// per source under a common key prefix.
package redis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/iho/atmledger/internal/domain"
	"github.com/iho/atmledger/internal/usecase"
)

// DefaultKeyPrefix is prepended to every source name.
const DefaultKeyPrefix = "atm:"

const (
	scanCount = 100
	pageSize  = 1000
)

// Provider implements usecase.SourceProvider over Redis lists.
type Provider struct {
	client *redis.Client
	prefix string
}

// NewProvider creates a new Provider.
func NewProvider(client *redis.Client, prefix string) *Provider {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Provider{
		client: client,
		prefix: prefix,
	}
}

// List returns the sources under the key prefix, sorted by name.
func (p *Provider) List(ctx context.Context) ([]string, error) {
	var sources []string

	iter := p.client.Scan(ctx, 0, p.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		sources = append(sources, strings.TrimPrefix(iter.Val(), p.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sources: %w", err)
	}

	sort.Strings(sources)
	return sources, nil
}

// Open returns a scanner that pages through the source list.
func (p *Provider) Open(ctx context.Context, source string) (usecase.LineScanner, error) {
	key := p.prefix + source

	n, err := p.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", source, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceUnavailable, source)
	}

	return &scanner{ctx: ctx, client: p.client, key: key, pos: -1}, nil
}

type scanner struct {
	ctx    context.Context
	client *redis.Client
	key    string

	page   []string
	pos    int
	offset int64
	done   bool
	err    error
}

func (s *scanner) Scan() bool {
	if s.pos+1 < len(s.page) {
		s.pos++
		return true
	}
	if s.done || s.err != nil {
		return false
	}

	page, err := s.client.LRange(s.ctx, s.key, s.offset, s.offset+pageSize-1).Result()
	if err != nil {
		s.err = err
		return false
	}
	s.offset += int64(len(page))
	if len(page) < pageSize {
		s.done = true
	}
	if len(page) == 0 {
		return false
	}

	s.page = page
	s.pos = 0
	return true
}

func (s *scanner) Text() string { return s.page[s.pos] }

func (s *scanner) Err() error { return s.err }

func (s *scanner) Close() error {
	s.done = true
	s.page = nil
	s.pos = -1
	return nil
}
