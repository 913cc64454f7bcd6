package usecase

const (
	// ContextCheckInterval is how many lines a worker reads between
	// cancellation checks.
	ContextCheckInterval = 1024

	// DefaultCurrency is used when balances are rendered for humans.
	DefaultCurrency = "USD"
)
