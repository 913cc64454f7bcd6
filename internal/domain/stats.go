package domain

import "time"

// IngestStats counts what one worker did with one source. Each worker owns
// its stats; they are summed only after all workers have finished.
type IngestStats struct {
	Source      string        `json:"source,omitempty"`
	Deposits    int64         `json:"deposits"`
	Withdrawals int64         `json:"withdrawals"`
	Ignored     int64         `json:"ignored"`
	Malformed   int64         `json:"malformed"`
	Failed      int64         `json:"failed"`
	Unavailable bool          `json:"unavailable,omitempty"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// Applied returns the number of transactions applied to the ledger.
func (s IngestStats) Applied() int64 {
	return s.Deposits + s.Withdrawals
}

// Lines returns the number of lines read from the source.
func (s IngestStats) Lines() int64 {
	return s.Applied() + s.Ignored + s.Malformed + s.Failed
}

// Add returns the sum of two stats. Source and Elapsed are not summed.
func (s IngestStats) Add(o IngestStats) IngestStats {
	return IngestStats{
		Source:      s.Source,
		Deposits:    s.Deposits + o.Deposits,
		Withdrawals: s.Withdrawals + o.Withdrawals,
		Ignored:     s.Ignored + o.Ignored,
		Malformed:   s.Malformed + o.Malformed,
		Failed:      s.Failed + o.Failed,
		Unavailable: s.Unavailable,
		Elapsed:     s.Elapsed,
	}
}
