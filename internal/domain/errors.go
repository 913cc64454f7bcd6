package domain

import (
	"errors"
	"fmt"
)

var (
	// Money errors
	ErrInvalidMoneyFormat = errors.New("invalid money format")

	// Account errors
	ErrAccountNotFound  = errors.New("account not found")
	ErrInvalidAccountID = errors.New("account id must be a positive integer")

	// Transaction errors
	ErrUnknownOperation = errors.New("unknown operation")

	// Source errors
	ErrSourceUnavailable = errors.New("source unavailable")
)

// FormatError reports amount text that could not be parsed as Money.
type FormatError struct {
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q: %s", ErrInvalidMoneyFormat, e.Text, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidMoneyFormat
}
