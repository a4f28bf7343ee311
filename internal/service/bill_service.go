package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"billdoc/internal/config"
	"billdoc/internal/domain"
	"billdoc/internal/metrics"
	"billdoc/internal/parser"
	"billdoc/internal/port"
)

// BillUploadInput is the DTO for a scanned bill submitted for extraction.
type BillUploadInput struct {
	FileName string
	Size     int64
	Body     io.Reader
}

// BillExtraction is the typed record read from a scanned bill.
type BillExtraction struct {
	Data        domain.ExtractedBillData `json:"data"`
	ModelUsed   string                   `json:"model_used"`
	FileName    string                   `json:"file_name"`
	ContentType string                   `json:"content_type"`
}

// BillService defines the bill extraction contract.
type BillService interface {
	Extract(ctx context.Context, input BillUploadInput) (*BillExtraction, error)
}

type billService struct {
	parser  port.DocumentParser
	cfg     *config.S3Config
	metrics *metrics.Metrics
}

// NewBillService creates a new BillService implementation.
func NewBillService(
	docParser port.DocumentParser,
	cfg *config.S3Config,
	m *metrics.Metrics,
) BillService {
	return &billService{
		parser:  docParser,
		cfg:     cfg,
		metrics: m,
	}
}

func (s *billService) Extract(ctx context.Context, input BillUploadInput) (*BillExtraction, error) {
	// Validate file extension
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.FileName), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	// Validate file size, declared and actual
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(input.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Magic-byte content type detection must agree with the extension
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	detected, validContent := domain.AllowedContentTypes[http.DetectContentType(head)]
	if !validContent || detected != fileType {
		return nil, domain.ErrUnsupportedFileType
	}
	contentType := domain.AllowedFileTypes[fileType]

	log.Printf("billService.Extract: extracting %s (%s, %d bytes)", input.FileName, contentType, len(data))

	start := time.Now()
	out, err := s.parser.Parse(ctx, port.ParseInput{
		FileBytes:   data,
		ContentType: contentType,
	})
	if err != nil {
		s.metrics.ExtractionsTotal.WithLabelValues("", extractionStatus(err)).Inc()
		log.Printf("billService.Extract: extraction failed for %s: %v", input.FileName, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	s.metrics.ExtractionsTotal.WithLabelValues(out.ModelUsed, "succeeded").Inc()
	s.metrics.ExtractionDuration.WithLabelValues(out.ModelUsed).Observe(time.Since(start).Seconds())

	return &BillExtraction{
		Data:        out.Data,
		ModelUsed:   out.ModelUsed,
		FileName:    input.FileName,
		ContentType: contentType,
	}, nil
}

func extractionStatus(err error) string {
	var rlErr *parser.RateLimitError
	var malformed *parser.MalformedOutputError
	switch {
	case errors.As(err, &rlErr):
		return "rate_limited"
	case errors.As(err, &malformed):
		return "malformed"
	default:
		return "failed"
	}
}
