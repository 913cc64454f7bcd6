package domain

import "sync"

// Account is a single ledger account. Its balance is only read or written
// while mu is held.
type Account struct {
	ID int64

	mu      sync.Mutex
	balance Money
}

// NewAccount creates an account with a zero balance.
func NewAccount(id int64) *Account {
	return &Account{ID: id}
}

// Deposit adds amount to the balance.
func (a *Account) Deposit(amount Money) {
	a.mu.Lock()
	a.balance = a.balance.Add(amount)
	a.mu.Unlock()
}

// Withdraw subtracts amount from the balance. Overdrafts are allowed.
func (a *Account) Withdraw(amount Money) {
	a.mu.Lock()
	a.balance = a.balance.Sub(amount)
	a.mu.Unlock()
}

// Balance returns a copy of the current balance.
func (a *Account) Balance() Money {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// AccountBalance is a point-in-time view of an account.
type AccountBalance struct {
	AccountID int64
	Balance   Money
}
