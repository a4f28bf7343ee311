package docgen_test

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billdoc/internal/docgen"
	"billdoc/internal/domain"
	"billdoc/internal/odt"
)

func strPtr(s string) *string { return &s }

func noticeTemplate(t *testing.T) []byte {
	t.Helper()
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><office:document-content><office:body><office:text>`)
	for _, tok := range docgen.Tokens {
		body.WriteString("<text:p>" + tok + "</text:p>")
	}
	body.WriteString(`</office:text></office:body></office:document-content>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range []struct {
		name   string
		method uint16
		data   string
	}{
		{"mimetype", zip.Store, odt.MimeType},
		{"content.xml", zip.Deflate, body.String()},
		{"styles.xml", zip.Deflate, "<office:document-styles/>"},
	} {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: p.name, Method: p.method})
		require.NoError(t, err)
		_, err = w.Write([]byte(p.data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func sampleData() domain.ExtractedBillData {
	return domain.ExtractedBillData{
		DueDateAmount: domain.ParseNumber("6738000"),
		WaterUsageM3:  domain.ParseNumber("1000"),
		Lab1Tons:      domain.ParseNumber("30"),
		Lab2Tons:      domain.ParseNumber("20"),
		ServicePeriod: strPtr("2025.06.23 ~ 2025.07.22"),
	}
}

func TestGenerate_EndToEnd(t *testing.T) {
	res, err := docgen.NewGenerator().Generate(noticeTemplate(t), sampleData())
	require.NoError(t, err)

	text, err := odt.PrimaryText(res.Document)
	require.NoError(t, err)

	assert.Contains(t, text, "2025. 6. 23. ~ 2025. 7. 22.")
	assert.Contains(t, text, "6,738,000")
	assert.Empty(t, res.Unresolved)
	assert.Empty(t, res.Warnings)
	for _, tok := range docgen.Tokens {
		assert.NotContains(t, text, tok)
	}
}

func TestBuildReplacements_Values(t *testing.T) {
	repl, alloc, warnings := docgen.BuildReplacements(sampleData())
	assert.Empty(t, warnings)
	assert.Equal(t, "336900", alloc.CombinedFee.String())

	want := map[string]string{
		docgen.TokenTotalAmount:      "6,738,000",
		docgen.TokenTotalUsage:       "1,000",
		docgen.TokenServicePeriod:    "2025. 6. 23. ~ 2025. 7. 22.",
		docgen.TokenUnitPrice:        "6,738",
		docgen.TokenLab1Usage:        "30",
		docgen.TokenLab2Usage:        "20",
		docgen.TokenLabUsage:         "50",
		docgen.TokenChargedAmount:    "336,900",
		docgen.TokenServiceMonth:     "6",
		docgen.TokenPaymentDueDate:   "2025. 7. 31.",
		docgen.TokenChargedAmountKor: "삼십삼만육천구백원",
	}
	assert.Equal(t, want, repl.Map())
	assert.Equal(t, docgen.Tokens, repl.Tokens())
}

func TestBuildReplacements_BadPeriodBlanksDerivedFields(t *testing.T) {
	data := sampleData()
	data.ServicePeriod = strPtr("not a date")

	repl, _, warnings := docgen.BuildReplacements(data)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "not a date")

	for _, tok := range []string{docgen.TokenServicePeriod, docgen.TokenServiceMonth, docgen.TokenPaymentDueDate} {
		v, ok := repl.Get(tok)
		assert.True(t, ok)
		assert.Empty(t, v, tok)
	}
	v, _ := repl.Get(docgen.TokenChargedAmount)
	assert.Equal(t, "336,900", v)
}

func TestBuildReplacements_AllFieldsAbsent(t *testing.T) {
	repl, alloc, warnings := docgen.BuildReplacements(domain.ExtractedBillData{})

	assert.Len(t, warnings, 2)
	assert.True(t, alloc.CombinedFee.IsZero())
	v, _ := repl.Get(docgen.TokenChargedAmountKor)
	assert.Equal(t, "영원", v)
	v, _ = repl.Get(docgen.TokenUnitPrice)
	assert.Equal(t, "0", v)
}

func TestBuildReplacements_UnitPriceDisplayRoundingDoesNotFeedFees(t *testing.T) {
	data := sampleData()
	data.DueDateAmount = domain.ParseNumber("1000")
	data.WaterUsageM3 = domain.ParseNumber("3")
	data.Lab1Tons = domain.ParseNumber("300")
	data.Lab2Tons = domain.ParseNumber("0")

	repl, alloc, _ := docgen.BuildReplacements(data)
	v, _ := repl.Get(docgen.TokenUnitPrice)
	assert.Equal(t, "333.33", v)
	// 1000/3*300 = 100000 exactly; the rounded 333.33 would give 99990.
	assert.Equal(t, "100000", alloc.CombinedFee.String())
}

func TestBuildReplacements_AmountsBeyondInt64(t *testing.T) {
	data := sampleData()
	data.DueDateAmount = domain.ParseNumber("100000000000000000000")
	data.WaterUsageM3 = domain.ParseNumber("1")
	data.Lab1Tons = domain.ParseNumber("1")
	data.Lab2Tons = domain.ParseNumber("0")

	repl, alloc, warnings := docgen.BuildReplacements(data)
	assert.Empty(t, warnings)
	assert.Equal(t, "100000000000000000000", alloc.CombinedFee.String())

	m := repl.Map()
	assert.Equal(t, "100,000,000,000,000,000,000", m[docgen.TokenTotalAmount])
	assert.Equal(t, "100,000,000,000,000,000,000", m[docgen.TokenChargedAmount])
	assert.Equal(t, "일해원", m[docgen.TokenChargedAmountKor])
}

func TestBuildReplacements_UnspellableAmountWarns(t *testing.T) {
	data := sampleData()
	data.DueDateAmount = domain.ParseNumber("1" + strings.Repeat("0", 53))
	data.WaterUsageM3 = domain.ParseNumber("1")
	data.Lab1Tons = domain.ParseNumber("1")
	data.Lab2Tons = domain.ParseNumber("0")

	repl, _, warnings := docgen.BuildReplacements(data)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "charged amount")
	v, ok := repl.Get(docgen.TokenChargedAmountKor)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestGenerate_StructuralFailure(t *testing.T) {
	_, err := docgen.NewGenerator().Generate([]byte("not an archive"), sampleData())

	var genErr *docgen.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, odt.ErrStructural)
}

func TestGenerate_LeavesUnknownTokensInPlace(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("content.xml")
	require.NoError(t, err)
	_, _ = w.Write([]byte("<p>[총요금] [미정]</p>"))
	require.NoError(t, zw.Close())

	res, err := docgen.NewGenerator().Generate(buf.Bytes(), sampleData())
	require.NoError(t, err)
	assert.Empty(t, res.Unresolved)

	text, err := odt.PrimaryText(res.Document)
	require.NoError(t, err)
	assert.Equal(t, "<p>6,738,000 [미정]</p>", text)
}
