package handlog

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal parses a chip amount without going through float64. Unknown
// types and unparsable text give zero.
func Decimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case decimal.Decimal:
		return x
	case json.Number:
		return parseDecimal(string(x))
	case string:
		return parseDecimal(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case float64:
		return decimal.NewFromFloat(x)
	}
	return decimal.Zero
}

// Chips converts an amount to whole chips, truncating toward zero.
func Chips(v any) int64 {
	return Decimal(v).IntPart()
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
