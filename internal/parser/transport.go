package parser

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"billdoc/internal/domain"
	"billdoc/internal/port"
)

// MaxOutputTokens bounds a provider reply. The bill record has five fields.
const MaxOutputTokens = 2048

const defaultTimeout = 120 * time.Second

// NewHTTPClient returns a client with the provider timeout, two minutes when unset.
func NewHTTPClient(timeoutSecs int) *http.Client {
	timeout := time.Duration(timeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// ModelOrDefault returns model, or fallback when model is empty.
func ModelOrDefault(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}

// CheckContentType rejects scans the providers cannot read.
func CheckContentType(contentType string) error {
	if _, ok := domain.AllowedContentTypes[contentType]; !ok {
		return fmt.Errorf("unsupported content type for parsing: %s", contentType)
	}
	return nil
}

// Base64 encodes a scan for inline transport.
func Base64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DataURI encodes a scan as a data: URI.
func DataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + Base64(data)
}

// PostJSON sends body as JSON and returns the body of a 200 response.
// A 429 becomes a *RateLimitError that honours Retry-After.
func PostJSON(ctx context.Context, client *http.Client, provider, endpoint string, header http.Header, body interface{}) ([]byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("%s API error (status %d): %s", provider, resp.StatusCode, Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, NewRateLimitError(provider, baseErr, ParseRetryAfterHeader(resp.Header.Get("Retry-After")))
		}
		return nil, baseErr
	}
	return respBody, nil
}

// NewOutput decodes the model's reply into a ParseOutput.
func NewOutput(text, model, prompt string) (*port.ParseOutput, error) {
	data, err := DecodeBillJSON(text)
	if err != nil {
		return nil, err
	}
	return &port.ParseOutput{
		Data:       data,
		RawText:    text,
		ModelUsed:  model,
		PromptUsed: prompt,
	}, nil
}
