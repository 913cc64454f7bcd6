package domain

import (
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantKind LineKind
		want     Transaction
	}{
		{
			name:     "deposit",
			line:     "4,d,100.25",
			wantKind: LineTransaction,
			want:     Transaction{AccountID: 4, Op: OpDeposit, Amount: "100.25"},
		},
		{
			name:     "withdraw with whitespace and upper case",
			line:     "  12 , W ,  7.5 \n",
			wantKind: LineTransaction,
			want:     Transaction{AccountID: 12, Op: OpWithdraw, Amount: "7.5"},
		},
		{
			name:     "extra fields are ignored",
			line:     "1,d,5.00,note",
			wantKind: LineTransaction,
			want:     Transaction{AccountID: 1, Op: OpDeposit, Amount: "5.00"},
		},
		{
			name:     "bad amount is still a transaction",
			line:     "1,d,abc",
			wantKind: LineTransaction,
			want:     Transaction{AccountID: 1, Op: OpDeposit, Amount: "abc"},
		},
		{name: "blank", line: "   ", wantKind: LineIgnored},
		{name: "comment", line: "# format: account number, type, amount", wantKind: LineIgnored},
		{name: "too few fields", line: "1,d", wantKind: LineMalformed},
		{name: "non numeric id", line: "x,d,1.00", wantKind: LineMalformed},
		{name: "zero id", line: "0,d,1.00", wantKind: LineMalformed},
		{name: "negative id", line: "-3,d,1.00", wantKind: LineMalformed},
		{name: "unknown op", line: "1,t,1.00", wantKind: LineMalformed},
		{name: "longer than MaxLineLength", line: "# " + strings.Repeat("x", MaxLineLength), wantKind: LineMalformed},
		{
			name:     "exactly MaxLineLength",
			line:     "1,d,2.00," + strings.Repeat("x", MaxLineLength-len("1,d,2.00,")),
			wantKind: LineTransaction,
			want:     Transaction{AccountID: 1, Op: OpDeposit, Amount: "2.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kind := ParseLine(tt.line)
			if kind != tt.wantKind {
				t.Fatalf("ParseLine(%q) kind = %v, want %v", tt.line, kind, tt.wantKind)
			}
			if got != tt.want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestIngestStats_Add(t *testing.T) {
	a := IngestStats{Source: "a", Deposits: 2, Withdrawals: 1, Ignored: 2, Failed: 1}
	b := IngestStats{Source: "b", Deposits: 3, Malformed: 4}

	sum := a.Add(b)
	if sum.Applied() != 6 {
		t.Errorf("expected 6 applied, got %d", sum.Applied())
	}
	if sum.Lines() != 13 {
		t.Errorf("expected 13 lines, got %d", sum.Lines())
	}
	if sum.Source != "a" {
		t.Errorf("expected receiver source to be kept, got %q", sum.Source)
	}
}
