package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"billdoc/internal/config"
	"billdoc/internal/parser"
	"billdoc/internal/port"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-sonnet-4-20250514"
)

// Parser implements port.DocumentParser using the Anthropic Messages API.
type Parser struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewParser creates a Claude-based bill parser from a provider config.
func NewParser(cfg *config.ParserProviderConfig) *Parser {
	return NewParserWithEndpoint(cfg, apiURL)
}

// NewParserWithEndpoint creates a parser pointing at a custom API endpoint (for testing).
func NewParserWithEndpoint(cfg *config.ParserProviderConfig, endpoint string) *Parser {
	return &Parser{
		apiKey:   cfg.APIKey,
		model:    parser.ModelOrDefault(cfg.DefaultModel, defaultModel),
		endpoint: endpoint,
		client:   parser.NewHTTPClient(cfg.TimeoutSecs),
	}
}

type source struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type block struct {
	Type   string  `json:"type"`
	Source *source `json:"source,omitempty"`
	Text   string  `json:"text,omitempty"`
}

type message struct {
	Role    string  `json:"role"`
	Content []block `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

func (p *Parser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	prompt := parser.BuildWaterBillPrompt()

	scan, err := scanBlock(input)
	if err != nil {
		return nil, fmt.Errorf("building content blocks: %w", err)
	}

	body := request{
		Model:     p.model,
		MaxTokens: parser.MaxOutputTokens,
		Messages: []message{{
			Role:    "user",
			Content: []block{scan, {Type: "text", Text: prompt}},
		}},
	}

	header := http.Header{}
	header.Set("x-api-key", p.apiKey)
	header.Set("anthropic-version", apiVersion)

	respBody, err := parser.PostJSON(ctx, p.client, "claude", p.endpoint, header, body)
	if err != nil {
		return nil, err
	}
	return parseResponse(respBody, p.model, prompt)
}

// scanBlock wraps the scan as a document block (PDF) or an image block.
func scanBlock(input port.ParseInput) (block, error) {
	if err := parser.CheckContentType(input.ContentType); err != nil {
		return block{}, err
	}
	kind := "image"
	if input.ContentType == "application/pdf" {
		kind = "document"
	}
	return block{
		Type: kind,
		Source: &source{
			Type:      "base64",
			MediaType: input.ContentType,
			Data:      parser.Base64(input.FileBytes),
		},
	}, nil
}

// response models the Messages API reply.
type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model, prompt string) (*port.ParseOutput, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}
	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	for _, c := range resp.Content {
		if c.Type == "text" || c.Type == "" {
			return parser.NewOutput(c.Text, model, prompt)
		}
	}
	return nil, fmt.Errorf("empty response from API: no text block")
}
