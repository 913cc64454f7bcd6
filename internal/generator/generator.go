// Package generator writes the synthetic ATM transaction sources.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

// Default generation parameters.
const (
	DefaultSources      = 10
	DefaultAccounts     = 20
	DefaultTransactions = 250000
	DefaultSeed         = 102030
	DefaultMean         = 100.00
	DefaultStdDev       = 50.00
)

const contextCheckInterval = 1024

// Config controls what Generate writes.
type Config struct {
	Sources      int
	Accounts     int
	Transactions int
	Seed         int64
	Mean         float64
	StdDev       float64
}

// DefaultConfig returns the parameters behind ExpectedBalances.
func DefaultConfig() Config {
	return Config{
		Sources:      DefaultSources,
		Accounts:     DefaultAccounts,
		Transactions: DefaultTransactions,
		Seed:         DefaultSeed,
		Mean:         DefaultMean,
		StdDev:       DefaultStdDev,
	}
}

// Validate checks that cfg describes something to generate.
func (c Config) Validate() error {
	if c.Sources <= 0 || c.Sources > 99 {
		return fmt.Errorf("sources must be between 1 and 99, got %d", c.Sources)
	}
	if c.Accounts <= 0 {
		return fmt.Errorf("accounts must be positive, got %d", c.Accounts)
	}
	if c.Transactions < 0 {
		return fmt.Errorf("transactions must not be negative, got %d", c.Transactions)
	}
	return nil
}

// LineWriter receives the lines of one source.
type LineWriter interface {
	WriteLine(line string) error
	Close() error
}

// Sink stores generated sources.
type Sink interface {
	// Create starts source, replacing any previous content.
	Create(ctx context.Context, source string) (LineWriter, error)
}

// SourceName returns the identifier of the n-th source, starting at 1.
func SourceName(n int) string {
	return fmt.Sprintf("atm-%02d", n)
}

// Generate writes cfg.Sources sources to sink and returns their names.
// The random stream continues from one source to the next, so the output
// only depends on cfg.
func Generate(ctx context.Context, cfg Config, sink Sink, logger zerolog.Logger) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := NewRand(cfg.Seed)
	names := make([]string, 0, cfg.Sources)

	for n := 1; n <= cfg.Sources; n++ {
		name := SourceName(n)
		if err := writeSource(ctx, cfg, rng, sink, n, name); err != nil {
			return names, fmt.Errorf("failed to generate %s: %w", name, err)
		}
		names = append(names, name)

		logger.Info().
			Str("source", name).
			Int("transactions", cfg.Transactions).
			Msg("source generated")
	}

	return names, nil
}

func writeSource(ctx context.Context, cfg Config, rng *Rand, sink Sink, n int, name string) (err error) {
	w, err := sink.Create(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	header := []string{
		fmt.Sprintf("# Atm transactions from machine %02d", n),
		"# format: account number, type, amount",
	}
	for _, line := range header {
		if err := w.WriteLine(line); err != nil {
			return err
		}
	}

	buf := make([]byte, 0, 32)
	for i := 0; i < cfg.Transactions; i++ {
		if i%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		account := rng.IntRange(1, cfg.Accounts)
		op := byte('w')
		if rng.IntRange(0, 1) == 0 {
			op = 'd'
		}
		amount := rng.Gauss(cfg.Mean, cfg.StdDev)

		buf = buf[:0]
		buf = strconv.AppendInt(buf, int64(account), 10)
		buf = append(buf, ',', op, ',')
		buf = strconv.AppendFloat(buf, amount, 'f', 2, 64)
		if err := w.WriteLine(string(buf)); err != nil {
			return err
		}
	}

	return nil
}

// EnsureDataFiles generates into sink only when dir does not exist yet,
// creating dir first. It reports whether anything was generated.
func EnsureDataFiles(ctx context.Context, dir string, cfg Config, sink Sink, logger zerolog.Logger) (bool, error) {
	_, err := os.Stat(dir)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", dir, err)
	}

	logger.Info().Str("dir", dir).Msg("creating data files")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if _, err := Generate(ctx, cfg, sink, logger); err != nil {
		return false, err
	}
	return true, nil
}
