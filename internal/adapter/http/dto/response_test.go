package dto

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iho/atmledger/internal/domain"
	"github.com/iho/atmledger/internal/usecase"
	"github.com/iho/atmledger/tests/testutil"
)

func TestBalanceFromDomain(t *testing.T) {
	resp := BalanceFromDomain(4, domain.MustParseMoney("-22474.29"), "USD")

	if resp.AccountID != 4 || resp.Balance.String() != "-22474.29" {
		t.Fatalf("unexpected balance response: %+v", resp)
	}
	if resp.Display != "-$22,474.29" {
		t.Fatalf("unexpected display: %q", resp.Display)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["balance"] != "-22474.29" || decoded["amount"] != "-22474.29" {
		t.Fatalf("expected string amounts, got %v", decoded)
	}
}

func TestBalancesFromDomain(t *testing.T) {
	list := BalancesFromDomain([]domain.AccountBalance{
		{AccountID: 1, Balance: domain.MustParseMoney("1.00")},
		{AccountID: 2, Balance: domain.MustParseMoney("2.50")},
	}, "USD")

	if len(list) != 2 || list[1].AccountID != 2 || list[1].Display != "$2.50" {
		t.Fatalf("BalancesFromDomain returned %+v", list)
	}
}

func TestRunFromDomain(t *testing.T) {
	provider := testutil.NewMemoryProvider(map[string][]string{
		"atm-01": {"# header", "1,d,10.00", "2,w,x"},
		"atm-02": {"1,w,2.50"},
	})
	result, err := usecase.NewRunUseCase(usecase.RunConfig{Provider: provider}).
		RunSources(context.Background(), []string{"atm-01", "atm-02", "atm-03"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	resp := RunFromDomain(result)

	if len(resp.Sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(resp.Sources))
	}
	if resp.Applied != 2 || resp.Totals.Ignored != 1 || resp.Totals.Failed != 1 {
		t.Fatalf("unexpected totals: %+v", resp)
	}
	if !resp.Sources[2].Unavailable {
		t.Fatalf("expected atm-03 to be unavailable: %+v", resp.Sources[2])
	}
	if resp.Accounts != 1 {
		t.Fatalf("expected 1 account, got %d", resp.Accounts)
	}
}
