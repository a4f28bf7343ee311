package port

import (
	"context"

	"billdoc/internal/domain"
)

// ParseInput carries a scanned bill for extraction.
type ParseInput struct {
	FileBytes   []byte
	ContentType string
}

// ParseOutput contains the typed record extracted by an LLM provider.
type ParseOutput struct {
	Data       domain.ExtractedBillData
	RawText    string
	ModelUsed  string
	PromptUsed string
}

// DocumentParser abstracts LLM-based bill extraction. Implementations return either a
// decoded record or an error; callers never see unstructured model output.
type DocumentParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
