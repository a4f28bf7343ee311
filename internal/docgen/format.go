package docgen

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// unitPriceDecimals is the display precision of the unit price. Fees are always
// computed from the unrounded price.
const unitPriceDecimals = 2

// GroupInt renders n with comma thousands separators: 6738000 -> "6,738,000".
func GroupInt(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// GroupDecimal renders d with comma-grouped integer digits, keeping fractional digits
// only when they are non-zero: 1000 -> "1,000", 30.50 -> "30.5".
func GroupDecimal(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	out := sign + groupIntPart(d)
	if _, frac, ok := strings.Cut(d.String(), "."); ok {
		out += "." + frac
	}
	return out
}

// groupIntPart comma-groups the integer digits of a non-negative d. Values past
// int64 are grouped from their digit string.
func groupIntPart(d decimal.Decimal) string {
	n := d.BigInt()
	if n.IsInt64() {
		return GroupInt(n.Int64())
	}
	digits := n.String()
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DisplayUnitPrice rounds the unit price for display: 6738.456 -> "6,738.46".
func DisplayUnitPrice(d decimal.Decimal) string {
	return GroupDecimal(d.Round(unitPriceDecimals))
}
