package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/atmledger/internal/domain"
)

// RunUseCase ingests every source concurrently into a fresh ledger.
type RunUseCase struct {
	provider  SourceProvider
	retrier   Retrier
	idGen     IDGenerator
	metrics   MetricsRecorder
	publisher EventPublisher
	logger    zerolog.Logger
}

// RunConfig holds the dependencies of a RunUseCase. Only Provider is required.
type RunConfig struct {
	Provider  SourceProvider
	Retrier   Retrier
	IDGen     IDGenerator
	Metrics   MetricsRecorder
	Publisher EventPublisher
	Logger    *zerolog.Logger
}

// NewRunUseCase creates a new RunUseCase.
func NewRunUseCase(cfg RunConfig) *RunUseCase {
	uc := &RunUseCase{
		provider:  cfg.Provider,
		retrier:   cfg.Retrier,
		idGen:     cfg.IDGen,
		metrics:   cfg.Metrics,
		publisher: cfg.Publisher,
		logger:    zerolog.Nop(),
	}
	if uc.metrics == nil {
		uc.metrics = NopMetrics{}
	}
	if cfg.Logger != nil {
		uc.logger = *cfg.Logger
	}
	return uc
}

// RunResult is the outcome of a completed run. It is only ever built after
// every worker has finished, so its balances are final.
type RunResult struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Sources    []domain.IngestStats
	Totals     domain.IngestStats

	ledger *Ledger
}

// Balance returns the final balance of id; zero for an unknown account.
func (r *RunResult) Balance(id int64) domain.Money {
	return r.ledger.Balance(id)
}

// Account returns the final balance of an account the run created.
func (r *RunResult) Account(id int64) (domain.Money, error) {
	return r.ledger.Account(id)
}

// Balances returns every account's final balance, ordered by id.
func (r *RunResult) Balances() []domain.AccountBalance {
	return r.ledger.Snapshot()
}

// AccountsCreated returns how many accounts the run created.
func (r *RunResult) AccountsCreated() int64 {
	return r.ledger.AccountsCreated()
}

// Event builds the RunCompleted event for this result.
func (r *RunResult) Event() *domain.RunCompletedEvent {
	balances := r.Balances()
	payload := make([]domain.BalancePayload, len(balances))
	for i, b := range balances {
		payload[i] = domain.BalancePayload{AccountID: b.AccountID, Balance: b.Balance.String()}
	}

	unavailable := 0
	for _, s := range r.Sources {
		if s.Unavailable {
			unavailable++
		}
	}

	return &domain.RunCompletedEvent{
		RunID:       r.RunID,
		EventType:   domain.EventTypeRunCompleted,
		Sources:     len(r.Sources),
		Unavailable: unavailable,
		Accounts:    len(balances),
		Applied:     r.Totals.Applied(),
		Skipped:     r.Totals.Ignored + r.Totals.Malformed,
		Failed:      r.Totals.Failed,
		Balances:    payload,
		StartedAt:   r.StartedAt,
		CompletedAt: r.FinishedAt,
	}
}

// Run lists the sources, starts one worker per source and waits for all of
// them before returning. Failures inside a worker never abort the run; only
// a failure to enumerate sources or a cancelled ctx does.
func (uc *RunUseCase) Run(ctx context.Context) (*RunResult, error) {
	sources, err := uc.provider.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	return uc.RunSources(ctx, sources)
}

// RunSources ingests the given sources into a fresh ledger. If ctx is done
// by the time every worker has returned, the partial result is discarded and
// nothing is published.
func (uc *RunUseCase) RunSources(ctx context.Context, sources []string) (*RunResult, error) {
	result := &RunResult{
		StartedAt: time.Now().UTC(),
		ledger:    NewLedger(WithLedgerMetrics(uc.metrics)),
	}
	if uc.idGen != nil {
		result.RunID = uc.idGen.Generate()
	}

	log := uc.logger.With().Str("run_id", result.RunID).Logger()
	log.Info().Int("sources", len(sources)).Msg("run started")

	worker := NewWorker(result.ledger, uc.provider, uc.retrier, log)

	// Each worker writes only its own slot.
	stats := make([]domain.IngestStats, len(sources))

	var wg sync.WaitGroup
	wg.Add(len(sources))
	for i, source := range sources {
		go func() {
			defer wg.Done()
			stats[i] = worker.Ingest(ctx, source)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		log.Warn().Err(err).Msg("run cancelled, discarding partial balances")
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	result.FinishedAt = time.Now().UTC()
	result.Sources = stats
	for _, s := range stats {
		result.Totals = result.Totals.Add(s)
		uc.metrics.SourceIngested(s)
		log.Info().
			Str("source", s.Source).
			Int64("applied", s.Applied()).
			Int64("ignored", s.Ignored).
			Int64("malformed", s.Malformed).
			Int64("failed", s.Failed).
			Bool("unavailable", s.Unavailable).
			Dur("elapsed", s.Elapsed).
			Msg("source ingested")
	}
	result.Totals.Elapsed = result.FinishedAt.Sub(result.StartedAt)
	uc.metrics.RunCompleted(result.Totals.Elapsed)

	log.Info().
		Int64("applied", result.Totals.Applied()).
		Int64("accounts", result.AccountsCreated()).
		Dur("elapsed", result.Totals.Elapsed).
		Msg("run completed")

	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, result.Event()); err != nil {
			log.Error().Err(err).Msg("failed to publish run event")
		}
	}

	return result, nil
}
