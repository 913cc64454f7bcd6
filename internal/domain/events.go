package domain

import "time"

// Event types
const (
	EventTypeRunCompleted = "run.completed"
)

// RunCompletedEvent is emitted once every worker of a run has finished.
type RunCompletedEvent struct {
	RunID       string           `json:"run_id"`
	EventType   string           `json:"event_type"`
	Sources     int              `json:"sources"`
	Unavailable int              `json:"unavailable_sources"`
	Accounts    int              `json:"accounts"`
	Applied     int64            `json:"applied"`
	Skipped     int64            `json:"skipped"`
	Failed      int64            `json:"failed"`
	Balances    []BalancePayload `json:"balances"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
}

// BalancePayload is the wire form of an account balance.
type BalancePayload struct {
	AccountID int64  `json:"account_id"`
	Balance   string `json:"balance"`
}
