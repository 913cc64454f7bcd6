package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/iho/atmledger/internal/domain"
	"github.com/iho/atmledger/internal/usecase"
)

// MemoryProvider is an in-memory usecase.SourceProvider.
type MemoryProvider struct {
	mu      sync.RWMutex
	sources map[string][]string
	opened  map[string]int
}

// NewMemoryProvider creates a provider serving the given sources.
func NewMemoryProvider(sources map[string][]string) *MemoryProvider {
	p := &MemoryProvider{
		sources: make(map[string][]string, len(sources)),
		opened:  make(map[string]int),
	}
	for name, lines := range sources {
		p.sources[name] = lines
	}
	return p
}

// List returns the source names in sorted order.
func (p *MemoryProvider) List(ctx context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.sources))
	for name := range p.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Open returns a scanner over the lines of source.
func (p *MemoryProvider) Open(ctx context.Context, source string) (usecase.LineScanner, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	lines, ok := p.sources[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceUnavailable, source)
	}
	p.opened[source]++
	return NewSliceScanner(lines), nil
}

// Opened returns how many times source was opened.
func (p *MemoryProvider) Opened(source string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.opened[source]
}

// SliceScanner is a usecase.LineScanner over a slice.
type SliceScanner struct {
	lines  []string
	pos    int
	closed bool
}

// NewSliceScanner creates a scanner over lines.
func NewSliceScanner(lines []string) *SliceScanner {
	return &SliceScanner{lines: lines, pos: -1}
}

func (s *SliceScanner) Scan() bool {
	if s.closed || s.pos+1 >= len(s.lines) {
		return false
	}
	s.pos++
	return true
}

func (s *SliceScanner) Text() string { return s.lines[s.pos] }
func (s *SliceScanner) Err() error   { return nil }

func (s *SliceScanner) Close() error {
	s.closed = true
	return nil
}

// Record is a transaction used to build test sources.
type Record struct {
	AccountID int64
	Op        domain.Operation
	Amount    string
}

// Line renders r in source format.
func (r Record) Line() string {
	return fmt.Sprintf("%d,%s,%s", r.AccountID, r.Op, r.Amount)
}

// Records builds n deterministic records over accounts 1..accounts.
func Records(n, accounts int) []Record {
	out := make([]Record, n)
	for i := range n {
		op := domain.OpDeposit
		if i%3 == 0 {
			op = domain.OpWithdraw
		}
		cents := (i*7919 + 13) % 50000
		out[i] = Record{
			AccountID: int64(i%accounts + 1),
			Op:        op,
			Amount:    fmt.Sprintf("%d.%02d", cents/100, cents%100),
		}
	}
	return out
}

// Partition splits records round-robin into n named sources.
func Partition(records []Record, n int) map[string][]string {
	sources := make(map[string][]string, n)
	for i, r := range records {
		name := fmt.Sprintf("src-%02d", i%n+1)
		sources[name] = append(sources[name], r.Line())
	}
	return sources
}

// ExpectedBalances sums records per account.
func ExpectedBalances(records []Record) map[int64]domain.Money {
	out := make(map[int64]domain.Money)
	for _, r := range records {
		m := domain.MustParseMoney(r.Amount)
		if r.Op == domain.OpWithdraw {
			m = m.Neg()
		}
		out[r.AccountID] = out[r.AccountID].Add(m)
	}
	return out
}

// WriteSourceFiles writes each source to dir/<name>.dat.
func WriteSourceFiles(t *testing.T, dir string, sources map[string][]string) {
	t.Helper()

	for name, lines := range sources {
		path := filepath.Join(dir, name+".dat")
		content := strings.Join(lines, "\n") + "\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}
