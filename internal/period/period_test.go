package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billdoc/internal/period"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_Tilde(t *testing.T) {
	p, err := period.Parse("2025.06.23 ~ 2025.07.22")
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.June, 23), p.Start)
	assert.Equal(t, date(2025, time.July, 22), p.End)
}

func TestParse_Hyphen(t *testing.T) {
	p, err := period.Parse("2025.07.14-2025.07.29")
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.July, 14), p.Start)
	assert.Equal(t, date(2025, time.July, 29), p.End)
}

func TestParse_IgnoresAllWhitespace(t *testing.T) {
	p, err := period.Parse(" 2025.7.1\t~\n2025. 7. 31 ")
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.July, 1), p.Start)
	assert.Equal(t, date(2025, time.July, 31), p.End)
}

func TestParse_InvertedPeriodPassesThrough(t *testing.T) {
	p, err := period.Parse("2025.08.01 ~ 2025.07.01")
	require.NoError(t, err)
	assert.True(t, p.Start.After(p.End))
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not a date", "not a date"},
		{"empty", ""},
		{"slash separator", "2025/06/23 2025/07/22"},
		{"three dates", "2025.06.23~2025.07.22~2025.08.22"},
		{"hyphenated dates", "2025-06-23 ~ 2025-07-22"},
		{"bad month", "2025.13.01 ~ 2025.12.01"},
		{"bad day", "2025.02.30 ~ 2025.03.01"},
		{"short year", "25.06.23 ~ 25.07.22"},
		{"half missing", "2025.06.23 ~"},
		{"negative date", "-2025.06.23 ~ 2025.07.22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := period.Parse(tt.in)
			assert.ErrorIs(t, err, period.ErrParse)
		})
	}
}

func TestParse_SeparatorErrors(t *testing.T) {
	_, err := period.Parse("20250623 20250722")
	assert.ErrorIs(t, err, period.ErrUnrecognizedSeparator)

	_, err = period.Parse("2025.06.23-2025.07.22-2025.08.22")
	assert.ErrorIs(t, err, period.ErrMalformedPeriod)
}

func TestPeriod_Display(t *testing.T) {
	p, err := period.Parse("2025.06.23~2025.07.22")
	require.NoError(t, err)
	assert.Equal(t, "2025. 6. 23. ~ 2025. 7. 22.", p.Display())
	assert.Equal(t, 6, p.Month())
}

func TestPeriod_NextMonthLastDay(t *testing.T) {
	tests := []struct {
		start time.Time
		want  string
	}{
		{date(2025, time.July, 14), "2025. 8. 31."},
		{date(2025, time.December, 10), "2026. 1. 31."},
		{date(2024, time.January, 31), "2024. 2. 29."},
		{date(2025, time.January, 31), "2025. 2. 28."},
		{date(2025, time.August, 31), "2025. 9. 30."},
	}

	for _, tt := range tests {
		p := period.Period{Start: tt.start, End: tt.start}
		assert.Equal(t, tt.want, p.NextMonthLastDay(), "start=%s", tt.start.Format("2006-01-02"))
	}
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, "2025. 7. 14. ~ 2025. 7. 29.", period.DisplayText("2025.07.14 - 2025.07.29"))
	assert.Equal(t, "7", period.MonthText("2025.07.14 - 2025.07.29"))
	assert.Equal(t, "2025. 8. 31.", period.NextMonthLastDayText("2025.07.14 - 2025.07.29"))

	for _, bad := range []string{"", "not a date", "2025.99.99~2025.99.99"} {
		assert.Empty(t, period.DisplayText(bad))
		assert.Empty(t, period.MonthText(bad))
		assert.Empty(t, period.NextMonthLastDayText(bad))
	}
}
