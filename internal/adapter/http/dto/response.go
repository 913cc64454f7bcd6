package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/atmledger/internal/domain"
	"github.com/iho/atmledger/internal/usecase"
)

// BalanceResponse represents an account balance in API responses.
type BalanceResponse struct {
	AccountID int64           `json:"account_id"`
	Balance   domain.Money    `json:"balance"`
	Amount    decimal.Decimal `json:"amount"`
	Display   string          `json:"display"`
}

// BalanceFromDomain converts a domain balance to a response.
func BalanceFromDomain(id int64, balance domain.Money, currency string) *BalanceResponse {
	return &BalanceResponse{
		AccountID: id,
		Balance:   balance,
		Amount:    balance.Decimal(),
		Display:   balance.Display(currency),
	}
}

// BalancesFromDomain converts domain balances to responses.
func BalancesFromDomain(balances []domain.AccountBalance, currency string) []*BalanceResponse {
	result := make([]*BalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = BalanceFromDomain(b.AccountID, b.Balance, currency)
	}
	return result
}

// SourceResponse represents the ingestion counts of one source.
type SourceResponse struct {
	Source      string `json:"source"`
	Deposits    int64  `json:"deposits"`
	Withdrawals int64  `json:"withdrawals"`
	Ignored     int64  `json:"ignored"`
	Malformed   int64  `json:"malformed"`
	Failed      int64  `json:"failed"`
	Unavailable bool   `json:"unavailable"`
	ElapsedMS   int64  `json:"elapsed_ms"`
}

// SourceFromDomain converts ingestion stats to a response.
func SourceFromDomain(s domain.IngestStats) SourceResponse {
	return SourceResponse{
		Source:      s.Source,
		Deposits:    s.Deposits,
		Withdrawals: s.Withdrawals,
		Ignored:     s.Ignored,
		Malformed:   s.Malformed,
		Failed:      s.Failed,
		Unavailable: s.Unavailable,
		ElapsedMS:   s.Elapsed.Milliseconds(),
	}
}

// RunResponse represents a completed run in API responses.
type RunResponse struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Accounts   int64            `json:"accounts"`
	Applied    int64            `json:"applied"`
	Totals     SourceResponse   `json:"totals"`
	Sources    []SourceResponse `json:"sources"`
}

// RunFromDomain converts a run result to a response.
func RunFromDomain(r *usecase.RunResult) *RunResponse {
	sources := make([]SourceResponse, len(r.Sources))
	for i, s := range r.Sources {
		sources[i] = SourceFromDomain(s)
	}

	totals := SourceFromDomain(r.Totals)
	totals.Source = ""

	return &RunResponse{
		RunID:      r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Accounts:   r.AccountsCreated(),
		Applied:    r.Totals.Applied(),
		Totals:     totals,
		Sources:    sources,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
