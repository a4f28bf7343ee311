// Package docgen builds water bill notice documents from extracted bill data.
//
// Generation is a pure function of the template bytes and the bill record: fees are
// allocated, period values derived, the charge spelled out in Korean, and the
// resulting placeholder map substituted into the template's content.xml.
package docgen

import (
	"fmt"
	"log"
	"strconv"

	"github.com/shopspring/decimal"

	"billdoc/internal/domain"
	"billdoc/internal/fee"
	"billdoc/internal/numeral"
	"billdoc/internal/odt"
	"billdoc/internal/period"
)

// Result is a generated document together with the values that went into it.
type Result struct {
	Document     []byte
	Replacements odt.Replacements
	Allocation   fee.Allocation
	// Warnings lists derived fields that could not be computed and were left blank.
	Warnings []string
	// Unresolved lists placeholder tokens still present in the generated content.
	Unresolved []string
}

// GenerationError reports that no document was produced.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("document generation failed: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Generator renders notices. The zero value is ready to use and safe for concurrent use.
type Generator struct{}

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate fills template with values derived from data. An unparseable service period
// blanks the period-derived fields and adds a warning; only template errors fail.
func (g *Generator) Generate(template []byte, data domain.ExtractedBillData) (*Result, error) {
	repl, alloc, warnings := BuildReplacements(data)

	doc, err := odt.SubstituteBytes(template, repl)
	if err != nil {
		return nil, &GenerationError{Cause: err}
	}

	var unresolved []string
	if text, err := odt.PrimaryText(doc); err == nil {
		unresolved = odt.Unresolved(text, Tokens)
	}
	if problems := odt.Lint(repl); len(problems) > 0 {
		log.Printf("docgen.Generate: replacement values contain tokens: %v", problems)
	}

	return &Result{
		Document:     doc,
		Replacements: repl,
		Allocation:   alloc,
		Warnings:     warnings,
		Unresolved:   unresolved,
	}, nil
}

// BuildReplacements computes every placeholder value for data.
func BuildReplacements(data domain.ExtractedBillData) (odt.Replacements, fee.Allocation, []string) {
	totalAmount := data.DueDateAmount.Decimal()
	totalUsage := data.WaterUsageM3.Decimal()
	alloc := fee.Allocate(totalAmount, totalUsage, data.SubunitUsages())

	var warnings []string
	if !totalUsage.IsPositive() {
		warnings = append(warnings, "total usage is not positive; unit price and fees are zero")
	}

	var periodDisplay, month, dueDate string
	if p, err := period.Parse(data.Period()); err != nil {
		warnings = append(warnings, fmt.Sprintf("service period %q: %v", data.Period(), err))
	} else {
		periodDisplay = p.Display()
		month = strconv.Itoa(p.Month())
		dueDate = p.NextMonthLastDay()
	}

	var repl odt.Replacements
	repl.Set(TokenTotalAmount, GroupDecimal(totalAmount))
	repl.Set(TokenTotalUsage, GroupDecimal(totalUsage))
	repl.Set(TokenServicePeriod, periodDisplay)
	repl.Set(TokenUnitPrice, DisplayUnitPrice(alloc.UnitPrice))
	repl.Set(TokenLab1Usage, GroupDecimal(alloc.Usages[0]))
	repl.Set(TokenLab2Usage, GroupDecimal(alloc.Usages[1]))
	repl.Set(TokenLabUsage, GroupDecimal(alloc.CombinedUsage))
	repl.Set(TokenChargedAmount, GroupDecimal(alloc.CombinedFee))
	repl.Set(TokenServiceMonth, month)
	repl.Set(TokenPaymentDueDate, dueDate)
	words, err := AmountInWords(alloc.CombinedFee)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("charged amount %s: %v", alloc.CombinedFee, err))
	}
	repl.Set(TokenChargedAmountKor, words)

	return repl, alloc, warnings
}

// AmountInWords spells out the whole-won part of amount: 336900 -> "삼십삼만육천구백원".
func AmountInWords(amount decimal.Decimal) (string, error) {
	words, err := numeral.Big(amount.BigInt())
	if err != nil {
		return "", err
	}
	return words + CurrencyUnit, nil
}
