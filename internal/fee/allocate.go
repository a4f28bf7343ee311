// Package fee splits a metered bill between sub-units in proportion to their usage.
package fee

import "github.com/shopspring/decimal"

// Allocation is the result of splitting a bill. SubunitFees is aligned with Usages.
// Fees are whole won amounts kept as decimals, so no bill is too large to represent.
type Allocation struct {
	UnitPrice     decimal.Decimal
	Usages        []decimal.Decimal
	CombinedUsage decimal.Decimal
	SubunitFees   []decimal.Decimal
	CombinedFee   decimal.Decimal
}

// Allocate computes the unit price totalAmount/totalUsage and each sub-unit's fee,
// truncated to a multiple of ten. A non-positive totalUsage yields a zero unit price
// and zero fees.
func Allocate(totalAmount, totalUsage decimal.Decimal, usages []decimal.Decimal) Allocation {
	a := Allocation{
		UnitPrice:     decimal.Zero,
		Usages:        append([]decimal.Decimal(nil), usages...),
		CombinedUsage: decimal.Sum(decimal.Zero, usages...),
		SubunitFees:   make([]decimal.Decimal, len(usages)),
		CombinedFee:   decimal.Zero,
	}
	for i := range a.SubunitFees {
		a.SubunitFees[i] = decimal.Zero
	}

	if !totalUsage.IsPositive() {
		return a
	}

	a.UnitPrice = totalAmount.Div(totalUsage)
	for i, u := range usages {
		a.SubunitFees[i] = Truncate(share(totalAmount, totalUsage, u))
	}
	a.CombinedFee = Truncate(share(totalAmount, totalUsage, a.CombinedUsage))
	return a
}

// share is unitPrice*usage, multiplied before dividing so that exact products
// (e.g. 100/3*3) are not lost to division precision.
func share(totalAmount, totalUsage, usage decimal.Decimal) decimal.Decimal {
	return totalAmount.Mul(usage).Div(totalUsage)
}

// Truncate drops the fractional part and the ones digit, toward zero:
// 202147.9 -> 202140, -15 -> -10.
func Truncate(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(0).Shift(-1).Truncate(0).Shift(1)
}
