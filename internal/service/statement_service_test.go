package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardparse/internal/domain"
	"cardparse/internal/parsing"
	"cardparse/internal/service"
)

type memRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.ParseTask
}

func newMemRepo() *memRepo {
	return &memRepo{tasks: make(map[uuid.UUID]*domain.ParseTask)}
}

func (r *memRepo) Create(ctx context.Context, task *domain.ParseTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ParseTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (r *memRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ParseTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []domain.ParseTask
	for _, task := range r.tasks {
		if len(claimed) >= limit {
			break
		}
		if task.Status == domain.TaskStatusPending {
			task.Status = domain.TaskStatusProcessing
			task.ParseAttempts++
			claimed = append(claimed, *task)
		}
	}
	return claimed, nil
}

func (r *memRepo) Update(ctx context.Context, task *domain.ParseTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

type stubText struct {
	text string
	err  error
}

func (s stubText) Extract(ctx context.Context, content []byte) (string, error) {
	return s.text, s.err
}

func newService(repo *memRepo, text string, err error) service.StatementService {
	engine := parsing.NewEngine(stubText{text: text, err: err}, 3000, 150)
	return service.NewStatementService(repo, nil, "", engine)
}

const amexText = `AMERICAN EXPRESS
Account Ending 1001
Closing Date 01/15/25
Payment Due Date: Feb 11, 2025
New Balance: $1,234.56
Minimum Payment Due: $35.00
`

func TestCreateTask_InlineStorage(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo, amexText, nil)

	task, err := svc.CreateTask(context.Background(), "statement.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, "statement.pdf", task.FileName)
	assert.Equal(t, int64(4), task.FileSize)

	stored, err := repo.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), stored.FileData)
}

func TestProcessTask_Success(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo, amexText, nil)

	task, err := svc.CreateTask(context.Background(), "statement.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)

	claimed, err := repo.ClaimQueued(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	svc.ProcessTask(context.Background(), &claimed[0], 3)

	stored, err := repo.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusSuccess, stored.Status)
	assert.Equal(t, "Amex", stored.Provider)
	assert.Empty(t, stored.FailureKind)
	require.NotNil(t, stored.CompletedAt)
	require.NotNil(t, stored.ProcessingMS)

	var data domain.StatementData
	require.NoError(t, json.Unmarshal(stored.StructuredData, &data))
	require.NotNil(t, data.TotalBalance)
	assert.InDelta(t, 1234.56, *data.TotalBalance, 0.001)
	require.NotNil(t, data.CardLast4)
	assert.Equal(t, "1001", *data.CardLast4)
}

func TestProcessTask_FailureKinds(t *testing.T) {
	cases := []struct {
		name string
		text string
		want domain.FailureKind
	}{
		{"no_text", "   ", domain.FailureNoExtractableText},
		{"unknown_provider", "Some Credit Union statement", domain.FailureProviderUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemRepo()
			svc := newService(repo, tc.text, nil)

			task, err := svc.CreateTask(context.Background(), "s.pdf", "application/pdf", []byte("%PDF"))
			require.NoError(t, err)

			claimed, err := repo.ClaimQueued(context.Background(), 1)
			require.NoError(t, err)
			require.Len(t, claimed, 1)
			svc.ProcessTask(context.Background(), &claimed[0], 3)

			stored, err := repo.GetByID(context.Background(), task.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.TaskStatusFailed, stored.Status)
			assert.Equal(t, string(tc.want), stored.FailureKind)
			assert.NotEmpty(t, stored.Error)
		})
	}
}

func TestGetTask_NotFound(t *testing.T) {
	svc := newService(newMemRepo(), amexText, nil)

	_, err := svc.GetTask(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
