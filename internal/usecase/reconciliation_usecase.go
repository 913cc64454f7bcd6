package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/iho/atmledger/internal/domain"
)

// BalanceReader exposes final balances. *RunResult implements it.
type BalanceReader interface {
	Balance(id int64) domain.Money
}

// ReconciliationUseCase compares final balances with expected values.
type ReconciliationUseCase struct{}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase() *ReconciliationUseCase {
	return &ReconciliationUseCase{}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID       int64
	RecordedBalance domain.Money
	ExpectedBalance domain.Money
	Difference      domain.Money
	IsReconciled    bool
}

// ReconcileAccount checks a single account against its expected balance.
func (uc *ReconciliationUseCase) ReconcileAccount(balances BalanceReader, id int64, expected domain.Money) *ReconciliationResult {
	recorded := balances.Balance(id)

	return &ReconciliationResult{
		AccountID:       id,
		RecordedBalance: recorded,
		ExpectedBalance: expected,
		Difference:      recorded.Sub(expected),
		IsReconciled:    recorded.Equal(expected),
	}
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Results            []*ReconciliationResult
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// Consistent reports whether every account matched.
func (r *ReconciliationReport) Consistent() bool {
	return len(r.Discrepancies) == 0
}

// Err returns a summary error if any account did not match.
func (r *ReconciliationReport) Err() error {
	if r.Consistent() {
		return nil
	}
	first := r.Discrepancies[0]
	return fmt.Errorf(
		"%d of %d balances wrong: account=%d expected=%s actual=%s",
		len(r.Discrepancies),
		r.TotalAccounts,
		first.AccountID,
		first.ExpectedBalance,
		first.RecordedBalance,
	)
}

// Reconcile checks every expected balance, in account order.
func (uc *ReconciliationUseCase) Reconcile(balances BalanceReader, expected map[int64]domain.Money) *ReconciliationReport {
	ids := make([]int64, 0, len(expected))
	for id := range expected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	report := &ReconciliationReport{
		TotalAccounts: len(ids),
		Results:       make([]*ReconciliationResult, 0, len(ids)),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, id := range ids {
		result := uc.ReconcileAccount(balances, id, expected[id])
		report.Results = append(report.Results, result)
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report
}
