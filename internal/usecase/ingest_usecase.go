package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/atmledger/internal/domain"
)

// Worker streams one source into the ledger. Workers share nothing but the
// ledger, so one Worker value may serve many sources concurrently.
type Worker struct {
	ledger   *Ledger
	provider SourceProvider
	retrier  Retrier
	logger   zerolog.Logger
}

// NewWorker creates a Worker. retrier may be nil, in which case a source is
// opened exactly once.
func NewWorker(ledger *Ledger, provider SourceProvider, retrier Retrier, logger zerolog.Logger) *Worker {
	return &Worker{
		ledger:   ledger,
		provider: provider,
		retrier:  retrier,
		logger:   logger,
	}
}

// Ingest applies every transaction line of source to the ledger and returns
// what it did. It never fails: a source that cannot be opened counts as zero
// transactions, malformed lines are skipped and lines whose amount does not
// parse are counted as failed.
func (w *Worker) Ingest(ctx context.Context, source string) domain.IngestStats {
	start := time.Now()
	stats := domain.IngestStats{Source: source}
	log := w.logger.With().Str("source", source).Logger()

	scanner, err := w.open(ctx, source)
	if err != nil {
		stats.Unavailable = true
		stats.Elapsed = time.Since(start)
		if errors.Is(err, domain.ErrSourceUnavailable) {
			log.Debug().Msg("source not found, nothing to ingest")
		} else {
			log.Warn().Err(err).Msg("failed to open source")
		}
		return stats
	}
	defer scanner.Close()

	var lineNo int64
	for scanner.Scan() {
		lineNo++
		if lineNo%ContextCheckInterval == 0 && ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Int64("line", lineNo).Msg("ingestion cancelled")
			break
		}

		tx, kind := domain.ParseLine(scanner.Text())
		switch kind {
		case domain.LineIgnored:
			stats.Ignored++
			continue
		case domain.LineMalformed:
			stats.Malformed++
			continue
		}

		if err := w.ledger.Apply(tx); err != nil {
			stats.Failed++
			log.Debug().Err(err).Int64("line", lineNo).Msg("transaction rejected")
			continue
		}

		if tx.Op == domain.OpWithdraw {
			stats.Withdrawals++
		} else {
			stats.Deposits++
		}
	}

	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Int64("line", lineNo).Msg("source read stopped early")
	}

	stats.Elapsed = time.Since(start)

	return stats
}

func (w *Worker) open(ctx context.Context, source string) (LineScanner, error) {
	if w.retrier == nil {
		return w.provider.Open(ctx, source)
	}

	var scanner LineScanner
	err := w.retrier.Retry(ctx, func() error {
		s, err := w.provider.Open(ctx, source)
		if err != nil {
			return err
		}
		scanner = s
		return nil
	})

	return scanner, err
}
