package port

import (
	"context"

	"github.com/google/uuid"

	"cardparse/internal/domain"
)

// TaskRepository defines the contract for parse task persistence.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.ParseTask) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ParseTask, error)
	// ClaimQueued atomically moves up to limit pending tasks to the
	// processing state and returns them. Concurrent workers never claim
	// the same task.
	ClaimQueued(ctx context.Context, limit int) ([]domain.ParseTask, error)
	Update(ctx context.Context, task *domain.ParseTask) error
}
