// Package period parses service-period strings such as "2025.06.23 ~ 2025.07.22"
// and derives the presentation values printed on bill notices.
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// dateLayout accepts four-digit years and one- or two-digit months and days.
const dateLayout = "2006.1.2"

var (
	// ErrParse is wrapped by every parse failure.
	ErrParse = errors.New("period: unparseable service period")

	ErrUnrecognizedSeparator = fmt.Errorf("%w: no '~' or '-' separator", ErrParse)
	ErrMalformedPeriod       = fmt.Errorf("%w: expected exactly two dates", ErrParse)
)

// Period is a calendar date range. Start <= End is not enforced.
type Period struct {
	Start time.Time
	End   time.Time
}

// Parse reads a period of two YYYY.MM.DD dates joined by '~' or '-'.
// All whitespace is ignored.
func Parse(text string) (Period, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	var sep string
	switch {
	case strings.Contains(compact, "~"):
		sep = "~"
	case strings.Contains(compact, "-"):
		sep = "-"
	default:
		return Period{}, ErrUnrecognizedSeparator
	}

	halves := strings.Split(compact, sep)
	if len(halves) != 2 {
		return Period{}, ErrMalformedPeriod
	}

	start, err := parseDate(halves[0])
	if err != nil {
		return Period{}, err
	}
	end, err := parseDate(halves[1])
	if err != nil {
		return Period{}, err
	}
	return Period{Start: start, End: end}, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", ErrParse, s, err)
	}
	return d, nil
}

// Display renders "YYYY. M. D. ~ YYYY. M. D.".
func (p Period) Display() string {
	return formatDate(p.Start) + " ~ " + formatDate(p.End)
}

// Month returns the start date's month, 1-12.
func (p Period) Month() int {
	return int(p.Start.Month())
}

// NextMonthLastDay returns the last day of the month following the start month,
// formatted "YYYY. M. D.".
func (p Period) NextMonthLastDay() string {
	y, m, _ := p.Start.Date()
	// Day 0 of month m+2 is the last day of month m+1; time.Date normalizes the rollover.
	last := time.Date(y, m+2, 0, 0, 0, 0, 0, time.UTC)
	return formatDate(last)
}

func formatDate(t time.Time) string {
	return fmt.Sprintf("%d. %d. %d.", t.Year(), int(t.Month()), t.Day())
}
