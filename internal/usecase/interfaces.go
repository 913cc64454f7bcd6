package usecase

import (
	"context"
	"time"

	"github.com/iho/atmledger/internal/domain"
)

// SourceProvider enumerates and opens transaction sources.
type SourceProvider interface {
	// List returns the identifiers of the sources available at startup, in order.
	List(ctx context.Context) ([]string, error)
	// Open returns a scanner over the lines of a source. It returns an error
	// wrapping domain.ErrSourceUnavailable if the source does not exist.
	Open(ctx context.Context, source string) (LineScanner, error)
}

// LineScanner yields the lines of one source, bufio.Scanner style.
type LineScanner interface {
	Scan() bool
	Text() string
	Err() error
	Close() error
}

// MetricsRecorder receives counters from the ledger and its workers.
type MetricsRecorder interface {
	AccountCreated()
	SourceIngested(stats domain.IngestStats)
	RunCompleted(elapsed time.Duration)
}

// EventPublisher publishes run events to external systems.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.RunCompletedEvent) error
}

// Retrier retries an operation while its error is transient.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}
