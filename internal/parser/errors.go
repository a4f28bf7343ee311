package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"billdoc/internal/domain"
)

// RateLimitError indicates a parser provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// MalformedOutputError reports model output that is not the expected JSON record.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("parsing LLM JSON output: %v (raw: %s)", e.Err, Truncate(e.Raw, 500))
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

// DecodeBillJSON decodes the model's reply into a bill record, tolerating markdown
// code fences around the JSON object.
func DecodeBillJSON(text string) (domain.ExtractedBillData, error) {
	var data domain.ExtractedBillData

	cleaned := StripCodeFences(text)
	if cleaned == "" {
		return data, &MalformedOutputError{Raw: text, Err: fmt.Errorf("empty output")}
	}
	if !json.Valid([]byte(cleaned)) || !bytes.HasPrefix([]byte(cleaned), []byte("{")) {
		return data, &MalformedOutputError{Raw: text, Err: fmt.Errorf("not a JSON object")}
	}
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return data, &MalformedOutputError{Raw: text, Err: err}
	}
	return data, nil
}

// StripCodeFences removes ```json ... ``` wrappers and surrounding whitespace.
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Truncate shortens s to at most maxLen bytes for log and error messages, backing
// off to a rune boundary so Korean text is never split mid-character.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
