package domain

import (
	"strconv"
	"strings"
)

// CommentMarker starts a line that carries no transaction.
const CommentMarker = "#"

// MaxLineLength is the longest line, in bytes, that can hold a record.
// Longer lines are malformed whatever they contain.
const MaxLineLength = 1 << 20

// Operation is the kind of a transaction record.
type Operation string

const (
	OpDeposit  Operation = "d"
	OpWithdraw Operation = "w"
)

// ParseOperation accepts "d" or "w", case-insensitively, with surrounding
// whitespace.
func ParseOperation(s string) (Operation, bool) {
	switch Operation(strings.ToLower(strings.TrimSpace(s))) {
	case OpDeposit:
		return OpDeposit, true
	case OpWithdraw:
		return OpWithdraw, true
	default:
		return "", false
	}
}

// Transaction is one parsed "<account_id>,<op>,<amount>" record. Amount is
// kept as text; it is parsed when the transaction is applied.
type Transaction struct {
	AccountID int64
	Op        Operation
	Amount    string
}

// LineKind classifies an input line.
type LineKind int

const (
	LineTransaction LineKind = iota
	LineIgnored              // blank or comment
	LineMalformed            // too long, too few fields, bad account id or unknown op
)

// ParseLine parses a single source line. Only LineTransaction results carry
// a usable Transaction.
func ParseLine(line string) (Transaction, LineKind) {
	if len(line) > MaxLineLength {
		return Transaction{}, LineMalformed
	}

	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, CommentMarker) {
		return Transaction{}, LineIgnored
	}

	parts := strings.Split(line, ",")
	if len(parts) < 3 {
		return Transaction{}, LineMalformed
	}

	id, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil || id <= 0 {
		return Transaction{}, LineMalformed
	}

	op, ok := ParseOperation(parts[1])
	if !ok {
		return Transaction{}, LineMalformed
	}

	return Transaction{
		AccountID: id,
		Op:        op,
		Amount:    strings.TrimSpace(parts[2]),
	}, LineTransaction
}
