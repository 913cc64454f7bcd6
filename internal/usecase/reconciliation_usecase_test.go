package usecase

import (
	"testing"

	"github.com/iho/atmledger/internal/domain"
)

func TestReconciliationUseCase_Reconcile(t *testing.T) {
	ledger := NewLedger()
	for _, err := range []error{
		ledger.Deposit(1, "59362.93"),
		ledger.Withdraw(4, "22474.29"),
		ledger.Deposit(20, "1.00"),
	} {
		if err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}

	tests := []struct {
		name           string
		expected       map[int64]domain.Money
		wantConsistent bool
		wantWrong      []int64
	}{
		{
			name: "all balances match",
			expected: map[int64]domain.Money{
				1: domain.MustParseMoney("59362.93"),
				4: domain.MustParseMoney("-22474.29"),
			},
			wantConsistent: true,
		},
		{
			name: "wrong balance",
			expected: map[int64]domain.Money{
				1:  domain.MustParseMoney("59362.93"),
				20: domain.MustParseMoney("-47460.38"),
			},
			wantWrong: []int64{20},
		},
		{
			name: "unknown account reads zero",
			expected: map[int64]domain.Money{
				7: domain.Zero,
				8: domain.MustParseMoney("0.01"),
			},
			wantWrong: []int64{8},
		},
	}

	uc := NewReconciliationUseCase()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := uc.Reconcile(ledger, tt.expected)

			if report.Consistent() != tt.wantConsistent {
				t.Fatalf("Consistent() = %v, want %v", report.Consistent(), tt.wantConsistent)
			}
			if (report.Err() == nil) != tt.wantConsistent {
				t.Fatalf("Err() = %v, want consistent=%v", report.Err(), tt.wantConsistent)
			}
			if report.TotalAccounts != len(tt.expected) {
				t.Fatalf("expected %d accounts, got %d", len(tt.expected), report.TotalAccounts)
			}
			if report.ReconciledAccounts != len(tt.expected)-len(tt.wantWrong) {
				t.Fatalf("expected %d reconciled, got %d", len(tt.expected)-len(tt.wantWrong), report.ReconciledAccounts)
			}
			for i, id := range tt.wantWrong {
				if report.Discrepancies[i].AccountID != id {
					t.Fatalf("expected discrepancy for %d, got %d", id, report.Discrepancies[i].AccountID)
				}
			}
		})
	}
}

func TestReconciliationUseCase_ReconcileAccount(t *testing.T) {
	ledger := NewLedger()
	if err := ledger.Deposit(3, "10.00"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	result := NewReconciliationUseCase().ReconcileAccount(ledger, 3, domain.MustParseMoney("12.50"))

	if result.IsReconciled {
		t.Fatal("expected mismatch")
	}
	if result.Difference.String() != "-2.50" {
		t.Fatalf("expected difference -2.50, got %s", result.Difference)
	}
}
