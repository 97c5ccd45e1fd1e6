package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cardparse/internal/domain"
	"cardparse/internal/port"
)

type taskRepo struct {
	db *sqlx.DB
}

// NewTaskRepo creates a new PostgreSQL-backed TaskRepository.
func NewTaskRepo(db *sqlx.DB) port.TaskRepository {
	return &taskRepo{db: db}
}

func (r *taskRepo) Create(ctx context.Context, task *domain.ParseTask) error {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	query := `INSERT INTO parse_tasks (
		id, status, file_name, content_type, file_size,
		s3_bucket, s3_key, file_data,
		provider, structured_data, failure_kind, error,
		parse_attempts, created_at, updated_at, started_at, completed_at, processing_ms
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8,
		$9, $10, $11, $12,
		$13, $14, $15, $16, $17, $18
	)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.Status, task.FileName, task.ContentType, task.FileSize,
		task.S3Bucket, task.S3Key, task.FileData,
		task.Provider, task.StructuredData, task.FailureKind, task.Error,
		task.ParseAttempts, task.CreatedAt, task.UpdatedAt, task.StartedAt, task.CompletedAt, task.ProcessingMS)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}
	return nil
}

func (r *taskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ParseTask, error) {
	var task domain.ParseTask
	err := r.db.GetContext(ctx, &task, "SELECT * FROM parse_tasks WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}
	return &task, nil
}

// ClaimQueued flips up to limit pending tasks to processing inside one
// transaction. SKIP LOCKED keeps concurrent workers from claiming the same
// rows.
func (r *taskRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ParseTask, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ClaimQueued begin: %w", err)
	}
	defer tx.Rollback()

	var tasks []domain.ParseTask
	query := `SELECT * FROM parse_tasks
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED`
	if err := tx.SelectContext(ctx, &tasks, query, domain.TaskStatusPending, limit); err != nil {
		return nil, fmt.Errorf("taskRepo.ClaimQueued select: %w", err)
	}
	if len(tasks) == 0 {
		return nil, tx.Commit()
	}

	now := time.Now().UTC()
	ids := make([]uuid.UUID, 0, len(tasks))
	for i := range tasks {
		tasks[i].Status = domain.TaskStatusProcessing
		tasks[i].StartedAt = &now
		tasks[i].UpdatedAt = now
		tasks[i].ParseAttempts++
		ids = append(ids, tasks[i].ID)
	}

	update, args, err := sqlx.In(`UPDATE parse_tasks
		SET status = ?, started_at = ?, updated_at = ?, parse_attempts = parse_attempts + 1
		WHERE id IN (?)`, domain.TaskStatusProcessing, now, now, ids)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ClaimQueued in: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(update), args...); err != nil {
		return nil, fmt.Errorf("taskRepo.ClaimQueued update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("taskRepo.ClaimQueued commit: %w", err)
	}
	return tasks, nil
}

func (r *taskRepo) Update(ctx context.Context, task *domain.ParseTask) error {
	task.UpdatedAt = time.Now().UTC()

	query := `UPDATE parse_tasks SET
		status = $2, provider = $3, structured_data = $4,
		failure_kind = $5, error = $6,
		updated_at = $7, started_at = $8, completed_at = $9, processing_ms = $10
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		task.ID, task.Status, task.Provider, task.StructuredData,
		task.FailureKind, task.Error,
		task.UpdatedAt, task.StartedAt, task.CompletedAt, task.ProcessingMS)
	if err != nil {
		return fmt.Errorf("taskRepo.Update: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("taskRepo.Update rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
