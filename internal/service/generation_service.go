package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"billdoc/internal/config"
	"billdoc/internal/csvexport"
	"billdoc/internal/docgen"
	"billdoc/internal/domain"
	"billdoc/internal/metrics"
	"billdoc/internal/odt"
	"billdoc/internal/period"
	"billdoc/internal/port"
	"billdoc/internal/templates"
	"billdoc/internal/xlsxexport"
)

// Export formats.
const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
)

// GenerateInput is the DTO for generating and storing a notice.
type GenerateInput struct {
	Data            domain.ExtractedBillData
	TemplateName    string
	Notify          []string
	ExtractionModel string
	SourceFileName  string
}

// RenderResult is a generated notice that has not been stored.
type RenderResult struct {
	Document     []byte
	FileName     string
	TemplateName string
	Result       *docgen.Result
}

// GenerationResult is a stored notice and its download link.
type GenerationResult struct {
	Generation  *domain.Generation `json:"generation"`
	DownloadURL string             `json:"download_url"`
	Warnings    []string           `json:"warnings"`
	Values      map[string]string  `json:"values"`
}

// GenerationService defines the notice generation contract.
type GenerationService interface {
	Render(ctx context.Context, data domain.ExtractedBillData, templateName string) (*RenderResult, error)
	Generate(ctx context.Context, input GenerateInput) (*GenerationResult, error)
	ExtractAndGenerate(ctx context.Context, upload BillUploadInput, templateName string, notify []string) (*GenerationResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Generation, error)
	GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error)
	List(ctx context.Context, offset, limit int) ([]domain.Generation, int, error)
	Export(ctx context.Context, w io.Writer, format string) error
}

type generationService struct {
	generator *docgen.Generator
	templates port.TemplateSource
	storage   port.ObjectStorage
	repo      port.GenerationRepository
	email     port.EmailSender
	bills     BillService
	tplCfg    *config.TemplateConfig
	outCfg    *config.OutputConfig
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewGenerationService creates a new GenerationService implementation.
func NewGenerationService(
	tplSource port.TemplateSource,
	storage port.ObjectStorage,
	repo port.GenerationRepository,
	emailSender port.EmailSender,
	bills BillService,
	tplCfg *config.TemplateConfig,
	outCfg *config.OutputConfig,
	m *metrics.Metrics,
) GenerationService {
	return &generationService{
		generator: docgen.NewGenerator(),
		templates: tplSource,
		storage:   storage,
		repo:      repo,
		email:     emailSender,
		bills:     bills,
		tplCfg:    tplCfg,
		outCfg:    outCfg,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *generationService) Render(ctx context.Context, data domain.ExtractedBillData, templateName string) (*RenderResult, error) {
	if templateName == "" {
		templateName = s.tplCfg.DefaultName
	}

	tpl, err := s.templates.Load(ctx, templateName)
	if err != nil {
		if errors.Is(err, domain.ErrTemplateInvalid) {
			s.metrics.GenerationsTotal.WithLabelValues(string(domain.GenerationStatusFailed)).Inc()
			log.Printf("generationService.Render: %v", err)
		}
		return nil, err
	}

	start := time.Now()
	res, err := s.generator.Generate(tpl, data)
	s.metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.GenerationsTotal.WithLabelValues(string(domain.GenerationStatusFailed)).Inc()
		log.Printf("generationService.Render: template %s: %v", templateName, err)
		return nil, err
	}
	s.metrics.GenerationsTotal.WithLabelValues(string(domain.GenerationStatusSucceeded)).Inc()
	s.metrics.GenerationWarnings.Add(float64(len(res.Warnings)))
	if len(res.Unresolved) > 0 {
		log.Printf("generationService.Render: template %s has unknown placeholders left: %v", templateName, res.Unresolved)
	}

	return &RenderResult{
		Document:     res.Document,
		FileName:     OutputFileName(templateName, data.Period()),
		TemplateName: templateName,
		Result:       res,
	}, nil
}

func (s *generationService) Generate(ctx context.Context, input GenerateInput) (*GenerationResult, error) {
	gen := s.newGeneration(input)

	rendered, err := s.Render(ctx, input.Data, gen.TemplateName)
	if err != nil {
		if isTemplateFailure(err) {
			gen.Status = domain.GenerationStatusFailed
			gen.ErrorMessage = err.Error()
			if recErr := s.repo.Create(ctx, gen); recErr != nil {
				log.Printf("generationService.Generate: recording failed generation %s: %v", gen.ID, recErr)
			}
		}
		return nil, err
	}
	res := rendered.Result

	gen.UnitPrice = res.Allocation.UnitPrice
	gen.ChargedAmount = res.Allocation.CombinedFee
	gen.AmountInWords, _ = res.Replacements.Get(docgen.TokenChargedAmountKor)
	gen.Warnings = strings.Join(res.Warnings, "\n")
	gen.OutputBucket = s.outCfg.Bucket
	gen.OutputKey = fmt.Sprintf("%s%04d/%02d/%s/%s",
		s.outCfg.Prefix, gen.CreatedAt.Year(), int(gen.CreatedAt.Month()), gen.ID, rendered.FileName)
	gen.OutputSize = int64(len(rendered.Document))

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      gen.OutputBucket,
		Key:         gen.OutputKey,
		Body:        bytes.NewReader(rendered.Document),
		ContentType: odt.MimeType,
		Size:        gen.OutputSize,
		FileName:    rendered.FileName,
	})
	if err != nil {
		log.Printf("generationService.Generate: S3 upload failed for generation %s: %v", gen.ID, err)
		return nil, domain.ErrUploadFailed
	}

	if err := s.repo.Create(ctx, gen); err != nil {
		log.Printf("generationService.Generate: failed to record generation %s: %v", gen.ID, err)
		_ = s.storage.Delete(ctx, gen.OutputBucket, gen.OutputKey)
		return nil, fmt.Errorf("recording generation: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, gen.OutputBucket, gen.OutputKey, s.outCfg.PresignExpiry)
	if err != nil {
		log.Printf("generationService.Generate: presign failed for generation %s: %v", gen.ID, err)
	}

	s.notify(ctx, input.Notify, gen, url)

	log.Printf("generationService.Generate: generation %s stored at s3://%s/%s (%d bytes, %d warnings)",
		gen.ID, gen.OutputBucket, gen.OutputKey, gen.OutputSize, len(res.Warnings))

	return &GenerationResult{
		Generation:  gen,
		DownloadURL: url,
		Warnings:    res.Warnings,
		Values:      res.Replacements.Map(),
	}, nil
}

func (s *generationService) ExtractAndGenerate(ctx context.Context, upload BillUploadInput, templateName string, notify []string) (*GenerationResult, error) {
	// Reject bad template names before spending an extraction call.
	if templateName != "" {
		if err := templates.ValidateName(templateName); err != nil {
			return nil, err
		}
	}

	extraction, err := s.bills.Extract(ctx, upload)
	if err != nil {
		return nil, err
	}

	return s.Generate(ctx, GenerateInput{
		Data:            extraction.Data,
		TemplateName:    templateName,
		Notify:          notify,
		ExtractionModel: extraction.ModelUsed,
		SourceFileName:  extraction.FileName,
	})
}

func (s *generationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Generation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *generationService) GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	gen, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if gen.Status != domain.GenerationStatusSucceeded || gen.OutputKey == "" {
		return "", domain.ErrNotFound
	}
	return s.storage.GetPresignedURL(ctx, gen.OutputBucket, gen.OutputKey, s.outCfg.PresignExpiry)
}

func (s *generationService) List(ctx context.Context, offset, limit int) ([]domain.Generation, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *generationService) Export(ctx context.Context, w io.Writer, format string) error {
	gens, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	switch format {
	case ExportFormatXLSX:
		return xlsxexport.Write(w, gens)
	case ExportFormatCSV:
		if _, err := w.Write(csvexport.BOM); err != nil {
			return err
		}
		cw := csvexport.NewWriter(w)
		if err := cw.WriteHeader(); err != nil {
			return err
		}
		if err := cw.WriteGenerations(gens); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func (s *generationService) newGeneration(input GenerateInput) *domain.Generation {
	name := input.TemplateName
	if name == "" {
		name = s.tplCfg.DefaultName
	}
	return &domain.Generation{
		ID:              uuid.New(),
		TemplateName:    name,
		ServicePeriod:   input.Data.Period(),
		TotalAmount:     input.Data.DueDateAmount.Decimal(),
		TotalUsage:      input.Data.WaterUsageM3.Decimal(),
		Lab1Usage:       input.Data.Lab1Tons.Decimal(),
		Lab2Usage:       input.Data.Lab2Tons.Decimal(),
		Status:          domain.GenerationStatusSucceeded,
		ExtractionModel: input.ExtractionModel,
		SourceFileName:  input.SourceFileName,
		CreatedAt:       s.now(),
	}
}

// isTemplateFailure reports whether err came from an unusable template: one the
// source rejected on load, or one the generator could not substitute into.
// Such generations are recorded as failed.
func isTemplateFailure(err error) bool {
	var genErr *docgen.GenerationError
	return errors.As(err, &genErr) || errors.Is(err, domain.ErrTemplateInvalid)
}

// notify sends a notice to each recipient. Failures are logged and do not fail the generation.
func (s *generationService) notify(ctx context.Context, recipients []string, gen *domain.Generation, url string) {
	if len(recipients) == 0 || s.email == nil {
		return
	}
	notice := port.GenerationNotice{
		ServicePeriod: period.DisplayText(gen.ServicePeriod),
		ChargedAmount: docgen.GroupDecimal(gen.ChargedAmount),
		AmountInWords: gen.AmountInWords,
		DownloadURL:   url,
	}
	for _, to := range recipients {
		if err := s.email.SendGenerationNotice(ctx, to, notice); err != nil {
			log.Printf("generationService.notify: sending to %s for generation %s: %v", to, gen.ID, err)
		}
	}
}

// OutputFileName names a generated notice after its template and billing month.
func OutputFileName(templateName, servicePeriod string) string {
	stem := strings.TrimSuffix(templateName, templates.Extension)
	p, err := period.Parse(servicePeriod)
	if err != nil {
		return stem + templates.Extension
	}
	return fmt.Sprintf("%s_%04d-%02d%s", stem, p.Start.Year(), int(p.Start.Month()), templates.Extension)
}
