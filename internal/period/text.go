package period

import "strconv"

// DisplayText parses text and returns its canonical display, or "" if it cannot be parsed.
func DisplayText(text string) string {
	p, err := Parse(text)
	if err != nil {
		return ""
	}
	return p.Display()
}

// MonthText returns the start month of text as a decimal string, or "".
func MonthText(text string) string {
	p, err := Parse(text)
	if err != nil {
		return ""
	}
	return strconv.Itoa(p.Month())
}

// NextMonthLastDayText returns the next-month last day for text, or "".
func NextMonthLastDayText(text string) string {
	p, err := Parse(text)
	if err != nil {
		return ""
	}
	return p.NextMonthLastDay()
}
