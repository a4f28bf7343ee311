package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billdoc/internal/domain"
	"billdoc/internal/port"
)

const generationColumns = `id, template_name, service_period, total_amount, total_usage,
	lab1_usage, lab2_usage, unit_price, charged_amount, amount_in_words, output_bucket,
	output_key, output_size, status, warnings, error_message, extraction_model,
	source_file_name, created_at`

type generationRepo struct {
	db *sqlx.DB
}

// NewGenerationRepo creates a new SQL-backed GenerationRepository.
func NewGenerationRepo(db *sqlx.DB) port.GenerationRepository {
	return &generationRepo{db: db}
}

func (r *generationRepo) Create(ctx context.Context, gen *domain.Generation) error {
	if gen.CreatedAt.IsZero() {
		gen.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO generations (` + generationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := r.db.ExecContext(ctx, query,
		gen.ID, gen.TemplateName, gen.ServicePeriod, gen.TotalAmount, gen.TotalUsage,
		gen.Lab1Usage, gen.Lab2Usage, gen.UnitPrice, gen.ChargedAmount, gen.AmountInWords,
		gen.OutputBucket, gen.OutputKey, gen.OutputSize, gen.Status, gen.Warnings,
		gen.ErrorMessage, gen.ExtractionModel, gen.SourceFileName, gen.CreatedAt)
	if err != nil {
		return fmt.Errorf("generationRepo.Create: %w", err)
	}
	return nil
}

func (r *generationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Generation, error) {
	var gen domain.Generation
	err := r.db.GetContext(ctx, &gen,
		"SELECT "+generationColumns+" FROM generations WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("generationRepo.GetByID: %w", err)
	}
	return &gen, nil
}

func (r *generationRepo) List(ctx context.Context, offset, limit int) ([]domain.Generation, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM generations"); err != nil {
		return nil, 0, fmt.Errorf("generationRepo.List count: %w", err)
	}

	var gens []domain.Generation
	err := r.db.SelectContext(ctx, &gens,
		"SELECT "+generationColumns+" FROM generations ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("generationRepo.List: %w", err)
	}
	return gens, total, nil
}

func (r *generationRepo) ListAll(ctx context.Context) ([]domain.Generation, error) {
	var gens []domain.Generation
	err := r.db.SelectContext(ctx, &gens,
		"SELECT "+generationColumns+" FROM generations ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("generationRepo.ListAll: %w", err)
	}
	return gens, nil
}
