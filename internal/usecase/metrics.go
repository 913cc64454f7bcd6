package usecase

import (
	"time"

	"github.com/iho/atmledger/internal/domain"
)

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) AccountCreated()                   {}
func (NopMetrics) SourceIngested(domain.IngestStats) {}
func (NopMetrics) RunCompleted(time.Duration)        {}
