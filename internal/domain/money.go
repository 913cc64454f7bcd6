package domain

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MinorUnitsPerMajor is the number of cents in one unit of currency.
const MinorUnitsPerMajor = 100

// Money is an exact amount with two implied fraction digits, stored as a
// signed count of minor units.
type Money struct {
	minor int64
}

// Zero is the zero amount.
var Zero = Money{}

// NewMoney creates Money from a count of minor units (cents).
func NewMoney(minor int64) Money {
	return Money{minor: minor}
}

// ParseMoney parses decimal text such as "12", "-3.5" or "+0.07".
// At most two fraction digits are accepted; leading zeros are ignored.
func ParseMoney(text string) (Money, error) {
	s := text
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign = s[:1]
		s = s[1:]
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" {
		return Zero, &FormatError{Text: text, Reason: "missing integer digits"}
	}
	if !isDigits(whole) {
		return Zero, &FormatError{Text: text, Reason: "unexpected character"}
	}
	if hasDot {
		if len(frac) == 0 || len(frac) > 2 {
			return Zero, &FormatError{Text: text, Reason: "expected one or two fraction digits"}
		}
		if !isDigits(frac) {
			return Zero, &FormatError{Text: text, Reason: "unexpected character"}
		}
	}
	for len(frac) < 2 {
		frac += "0"
	}

	minor, err := strconv.ParseInt(sign+whole+frac, 10, 64)
	if err != nil {
		return Zero, &FormatError{Text: text, Reason: "out of range"}
	}

	return Money{minor: minor}, nil
}

// MustParseMoney is like ParseMoney but panics on malformed input.
func MustParseMoney(text string) Money {
	m, err := ParseMoney(text)
	if err != nil {
		panic(err)
	}
	return m
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MinorUnits returns the amount in cents.
func (m Money) MinorUnits() int64 { return m.minor }

func (m Money) Add(n Money) Money  { return Money{minor: m.minor + n.minor} }
func (m Money) Sub(n Money) Money  { return Money{minor: m.minor - n.minor} }
func (m Money) Neg() Money         { return Money{minor: -m.minor} }
func (m Money) Equal(n Money) bool { return m.minor == n.minor }
func (m Money) IsZero() bool       { return m.minor == 0 }
func (m Money) IsNegative() bool   { return m.minor < 0 }

// String renders the amount as "[-]digits.dd".
func (m Money) String() string {
	u := uint64(m.minor)
	if m.minor < 0 {
		u = uint64(-(m.minor + 1)) + 1
	}

	var b strings.Builder
	if m.minor < 0 {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatUint(u/MinorUnitsPerMajor, 10))
	b.WriteByte('.')
	cents := u % MinorUnitsPerMajor
	if cents < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatUint(cents, 10))

	return b.String()
}

// Decimal returns the amount as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.minor, -2)
}

// Display formats the amount for humans in the given ISO 4217 currency,
// e.g. "$1,234.50".
func (m Money) Display(currency string) string {
	return money.New(m.minor, currency).Display()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
