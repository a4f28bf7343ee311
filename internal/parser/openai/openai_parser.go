package openai

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
	apiURL       = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o"
)

// Parser implements port.DocumentParser using the OpenAI Chat Completions API.
type Parser struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewParser creates an OpenAI-based bill parser from a provider config.
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

type filePart struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type imageURL struct {
	URL string `json:"url"`
}

type contentPart struct {
	Type     string    `json:"type"`
	File     *filePart `json:"file,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
	Text     string    `json:"text,omitempty"`
}

type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type request struct {
	Model               string         `json:"model"`
	MaxCompletionTokens int            `json:"max_completion_tokens"`
	Messages            []message      `json:"messages"`
	ResponseFormat      responseFormat `json:"response_format"`
}

func (p *Parser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	prompt := parser.BuildWaterBillPrompt()

	scan, err := scanPart(input)
	if err != nil {
		return nil, fmt.Errorf("building content blocks: %w", err)
	}

	body := request{
		Model:               p.model,
		MaxCompletionTokens: parser.MaxOutputTokens,
		Messages: []message{{
			Role:    "user",
			Content: []contentPart{scan, {Type: "text", Text: prompt}},
		}},
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+p.apiKey)

	respBody, err := parser.PostJSON(ctx, p.client, "openai", p.endpoint, header, body)
	if err != nil {
		return nil, err
	}
	return parseResponse(respBody, p.model, prompt)
}

// scanPart sends PDFs as a file part and images as an image_url part.
func scanPart(input port.ParseInput) (contentPart, error) {
	if err := parser.CheckContentType(input.ContentType); err != nil {
		return contentPart{}, err
	}
	uri := parser.DataURI(input.ContentType, input.FileBytes)
	if input.ContentType == "application/pdf" {
		return contentPart{Type: "file", File: &filePart{Filename: "bill.pdf", FileData: uri}}, nil
	}
	return contentPart{Type: "image_url", ImageURL: &imageURL{URL: uri}}, nil
}

// response models the Chat Completions reply.
type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model, prompt string) (*port.ParseOutput, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	return parser.NewOutput(resp.Choices[0].Message.Content, model, prompt)
}
