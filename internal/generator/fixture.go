package generator

import "github.com/iho/atmledger/internal/domain"

var expectedBalances = map[int64]string{
	1:  "59362.93",
	2:  "11988.60",
	3:  "35982.34",
	4:  "-22474.29",
	5:  "11998.99",
	6:  "-42110.72",
	7:  "-3038.78",
	8:  "18118.83",
	9:  "35529.50",
	10: "2722.01",
	11: "11194.88",
	12: "-37512.97",
	13: "-21252.47",
	14: "41287.06",
	15: "7766.52",
	16: "-26820.11",
	17: "15792.78",
	18: "-12626.83",
	19: "-59303.54",
	20: "-47460.38",
}

// ExpectedBalances returns the final balance of every account after
// ingesting the sources DefaultConfig generates.
func ExpectedBalances() map[int64]domain.Money {
	out := make(map[int64]domain.Money, len(expectedBalances))
	for id, text := range expectedBalances {
		out[id] = domain.MustParseMoney(text)
	}
	return out
}
