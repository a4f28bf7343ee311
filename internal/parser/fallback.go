package parser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"billdoc/internal/port"
)

// circuit holds the rate-limit backoff of one provider. A zero resetAt means healthy.
type circuit struct {
	mu      sync.RWMutex
	resetAt time.Time
}

func (c *circuit) openUntil(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuit) trip(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackParser asks each extraction provider in turn until one returns a bill
// record. A provider that answered 429 is skipped until its Retry-After passes.
// It implements port.DocumentParser.
type FallbackParser struct {
	parsers  []port.DocumentParser
	circuits []*circuit
	names    []string
}

// NewFallbackParser creates a FallbackParser from an ordered list of parsers and their names.
func NewFallbackParser(parsers []port.DocumentParser, names []string) *FallbackParser {
	circuits := make([]*circuit, len(parsers))
	for i := range circuits {
		circuits[i] = &circuit{}
	}
	return &FallbackParser{
		parsers:  parsers,
		circuits: circuits,
		names:    names,
	}
}

// Parse returns the first successful extraction. When every provider is rate limited
// the result is a *RateLimitError carrying the earliest reset; otherwise the provider
// errors are joined so callers can still match *MalformedOutputError.
func (f *FallbackParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	now := time.Now()
	var errs []error
	var earliestReset time.Time
	allRateLimited := true

	noteReset := func(resetAt time.Time) {
		if earliestReset.IsZero() || resetAt.Before(earliestReset) {
			earliestReset = resetAt
		}
	}

	for i, p := range f.parsers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if resetAt, open := f.circuits[i].openUntil(now); open {
			log.Printf("parser.FallbackParser: skipping %s until %s", f.names[i], resetAt.Format(time.RFC3339))
			noteReset(resetAt)
			continue
		}

		out, err := p.Parse(ctx, input)
		if err == nil {
			if out.ModelUsed == "" {
				out.ModelUsed = f.names[i]
			}
			return out, nil
		}

		log.Printf("parser.FallbackParser: %s failed: %v", f.names[i], err)
		errs = append(errs, fmt.Errorf("%s: %w", f.names[i], err))

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].trip(resetAt)
			noteReset(resetAt)
		} else {
			allRateLimited = false
		}
	}

	if len(errs) == 0 || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", errors.New("all extraction providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all extraction providers failed: %w", errors.Join(errs...))
}
