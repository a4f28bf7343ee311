package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"billdoc/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns defines the generation history header row.
var Columns = []string{
	"생성 ID",
	"템플릿",
	"사용기간",
	"총요금",
	"총사용량",
	"1연구소사용량",
	"2연구소사용량",
	"기준금액",
	"부과액",
	"부과액한글",
	"상태",
	"경고",
	"오류",
	"저장 위치",
	"생성일시",
}

// Writer wraps csv.Writer for exporting generation history as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteGenerations converts a batch of generations to CSV rows and writes them.
func (w *Writer) WriteGenerations(gens []domain.Generation) error {
	for i := range gens {
		if err := w.csv.Write(GenerationRow(&gens[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// GenerationRow converts a generation to a row aligned with Columns.
func GenerationRow(g *domain.Generation) []string {
	return []string{
		g.ID.String(),
		g.TemplateName,
		g.ServicePeriod,
		g.TotalAmount.String(),
		g.TotalUsage.String(),
		g.Lab1Usage.String(),
		g.Lab2Usage.String(),
		g.UnitPrice.String(),
		g.ChargedAmount.String(),
		g.AmountInWords,
		string(g.Status),
		strings.ReplaceAll(g.Warnings, "\n", "; "),
		g.ErrorMessage,
		location(g),
		g.CreatedAt.Format(time.RFC3339),
	}
}

func location(g *domain.Generation) string {
	if g.OutputKey == "" {
		return ""
	}
	return "s3://" + g.OutputBucket + "/" + g.OutputKey
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces characters other than letters, digits, - and _ with _, collapses consecutive
// underscores, and truncates to 100 bytes without splitting a character.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = strings.ToValidUTF8(s[:100], "")
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), ext)
}
