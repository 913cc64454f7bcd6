package usecase

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/iho/atmledger/internal/domain"
)

// Ledger owns every account and routes transactions to them. Accounts are
// created lazily on first reference; the directory lock is only taken on a
// lookup miss and is always released before an account lock is acquired.
type Ledger struct {
	accounts sync.Map // int64 -> *domain.Account
	dirMu    sync.Mutex
	created  atomic.Int64
	metrics  MetricsRecorder
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithLedgerMetrics sets the recorder notified on account creation.
func WithLedgerMetrics(m MetricsRecorder) LedgerOption {
	return func(l *Ledger) {
		if m != nil {
			l.metrics = m
		}
	}
}

// NewLedger creates an empty Ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{metrics: NopMetrics{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) lookup(id int64) (*domain.Account, bool) {
	v, ok := l.accounts.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*domain.Account), true
}

// resolveOrCreate returns the account for id, creating it exactly once.
func (l *Ledger) resolveOrCreate(id int64) *domain.Account {
	if acc, ok := l.lookup(id); ok {
		return acc
	}

	l.dirMu.Lock()
	defer l.dirMu.Unlock()

	// Another worker may have created it while we waited.
	if acc, ok := l.lookup(id); ok {
		return acc
	}

	acc := domain.NewAccount(id)
	l.accounts.Store(id, acc)
	l.created.Add(1)
	l.metrics.AccountCreated()

	return acc
}

// Deposit parses amount and adds it to the account, creating the account if
// needed. A malformed amount returns a *domain.FormatError and leaves the
// directory untouched.
func (l *Ledger) Deposit(id int64, amount string) error {
	m, err := domain.ParseMoney(amount)
	if err != nil {
		return err
	}
	l.resolveOrCreate(id).Deposit(m)
	return nil
}

// Withdraw parses amount and subtracts it from the account, creating the
// account if needed. Overdrafts are allowed.
func (l *Ledger) Withdraw(id int64, amount string) error {
	m, err := domain.ParseMoney(amount)
	if err != nil {
		return err
	}
	l.resolveOrCreate(id).Withdraw(m)
	return nil
}

// Apply routes a parsed transaction to Deposit or Withdraw. Any other
// operation returns domain.ErrUnknownOperation and touches nothing.
func (l *Ledger) Apply(tx domain.Transaction) error {
	switch tx.Op {
	case domain.OpDeposit:
		return l.Deposit(tx.AccountID, tx.Amount)
	case domain.OpWithdraw:
		return l.Withdraw(tx.AccountID, tx.Amount)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownOperation, tx.Op)
	}
}

// Balance returns the balance of id, or zero if the account was never
// referenced. It never creates an account.
func (l *Ledger) Balance(id int64) domain.Money {
	acc, ok := l.lookup(id)
	if !ok {
		return domain.Zero
	}
	return acc.Balance()
}

// Account returns the balance of an existing account. It returns
// domain.ErrAccountNotFound if id was never referenced.
func (l *Ledger) Account(id int64) (domain.Money, error) {
	acc, ok := l.lookup(id)
	if !ok {
		return domain.Zero, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, id)
	}
	return acc.Balance(), nil
}

// AccountsCreated returns how many accounts have been created.
func (l *Ledger) AccountsCreated() int64 {
	return l.created.Load()
}

// Snapshot returns the balance of every account, ordered by id.
func (l *Ledger) Snapshot() []domain.AccountBalance {
	var out []domain.AccountBalance
	l.accounts.Range(func(_, v any) bool {
		acc := v.(*domain.Account)
		out = append(out, domain.AccountBalance{AccountID: acc.ID, Balance: acc.Balance()})
		return true
	})

	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })

	return out
}
