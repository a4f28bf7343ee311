package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a tolerant optional decimal as produced by the extraction model.
// Null, absent and unreadable values decode to an invalid zero instead of failing.
type Number struct {
	Value decimal.Decimal
	Valid bool
}

// NewNumber returns a valid Number.
func NewNumber(d decimal.Decimal) Number {
	return Number{Value: d, Valid: true}
}

// NumberFromFloat returns a valid Number from a float64.
func NumberFromFloat(f float64) Number {
	return NewNumber(decimal.NewFromFloat(f))
}

// ParseNumber reads "6,738,000", " 30.5 " or "1e3". Unreadable input yields an invalid zero.
func ParseNumber(s string) Number {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return Number{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}
	}
	return NewNumber(d)
}

// Decimal returns the value, or zero when the number is absent or invalid.
func (n Number) Decimal() decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Value
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = Number{}
			return nil
		}
		*n = ParseNumber(s)
		return nil
	}
	*n = ParseNumber(string(data))
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(n.Value.String()), nil
}
