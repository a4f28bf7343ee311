package port

import (
	"context"

	"github.com/google/uuid"

	"billdoc/internal/domain"
)

// GenerationRepository persists generated document records.
type GenerationRepository interface {
	Create(ctx context.Context, gen *domain.Generation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Generation, error)
	List(ctx context.Context, offset, limit int) ([]domain.Generation, int, error)
	ListAll(ctx context.Context) ([]domain.Generation, error)
}
