package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"cardparse/internal/domain"
	"cardparse/internal/parsing"
	"cardparse/internal/port"
)

// StatementService manages parse task lifecycle: creation, processing and
// retrieval.
type StatementService interface {
	CreateTask(ctx context.Context, fileName, contentType string, data []byte) (*domain.ParseTask, error)
	GetTask(ctx context.Context, id uuid.UUID) (*domain.ParseTask, error)
	// ProcessTask runs the parsing pipeline for a claimed task and persists
	// the outcome. Unexpected failures are requeued until maxRetries parse
	// attempts have been made.
	ProcessTask(ctx context.Context, task *domain.ParseTask, maxRetries int)
}

type statementService struct {
	repo    port.TaskRepository
	storage port.ObjectStorage
	bucket  string
	engine  *parsing.Engine
}

// NewStatementService creates a StatementService. storage may be nil, in
// which case uploaded bytes are kept inline in the task record.
func NewStatementService(repo port.TaskRepository, storage port.ObjectStorage, bucket string, engine *parsing.Engine) StatementService {
	return &statementService{
		repo:    repo,
		storage: storage,
		bucket:  bucket,
		engine:  engine,
	}
}

func (s *statementService) CreateTask(ctx context.Context, fileName, contentType string, data []byte) (*domain.ParseTask, error) {
	task := &domain.ParseTask{
		ID:          uuid.New(),
		Status:      domain.TaskStatusPending,
		FileName:    fileName,
		ContentType: contentType,
		FileSize:    int64(len(data)),
	}

	if s.storage != nil {
		key := fmt.Sprintf("statements/%s/%s", task.ID, fileName)
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.bucket,
			Key:         key,
			Body:        bytes.NewReader(data),
			ContentType: contentType,
			Size:        int64(len(data)),
		})
		if err != nil {
			log.Printf("statementService: upload failed for %s: %v", fileName, err)
			return nil, domain.ErrUploadFailed
		}
		task.S3Bucket = s.bucket
		task.S3Key = key
	} else {
		task.FileData = data
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("creating parse task: %w", err)
	}
	log.Printf("statementService: created task %s for %s (%d bytes)", task.ID, fileName, len(data))
	return task, nil
}

func (s *statementService) GetTask(ctx context.Context, id uuid.UUID) (*domain.ParseTask, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *statementService) ProcessTask(ctx context.Context, task *domain.ParseTask, maxRetries int) {
	start := time.Now()

	content, err := s.taskContent(ctx, task)
	if err != nil {
		log.Printf("statementService: task %s content unavailable: %v", task.ID, err)
		s.finishFailed(ctx, task, start, fmt.Errorf("%w: %v", parsing.ErrTextExtraction, err), maxRetries)
		return
	}

	result, err := s.engine.Parse(ctx, content, task.ID.String())
	if err != nil {
		s.finishFailed(ctx, task, start, err, maxRetries)
		return
	}

	structured, err := json.Marshal(result.Data)
	if err != nil {
		s.finishFailed(ctx, task, start, fmt.Errorf("encoding parse result: %w", err), maxRetries)
		return
	}

	now := time.Now().UTC()
	ms := time.Since(start).Milliseconds()
	task.Status = domain.TaskStatusSuccess
	task.Provider = string(result.Provider)
	task.StructuredData = structured
	task.FailureKind = ""
	task.Error = ""
	task.CompletedAt = &now
	task.ProcessingMS = &ms

	if err := s.repo.Update(ctx, task); err != nil {
		log.Printf("statementService: task %s result persist failed: %v", task.ID, err)
		return
	}
	log.Printf("statementService: task %s succeeded (%s, %dms)", task.ID, result.Provider, ms)
}

func (s *statementService) taskContent(ctx context.Context, task *domain.ParseTask) ([]byte, error) {
	if len(task.FileData) > 0 {
		return task.FileData, nil
	}
	if s.storage == nil || task.S3Key == "" {
		return nil, fmt.Errorf("task has no inline data and no storage key")
	}
	return s.storage.Download(ctx, task.S3Bucket, task.S3Key)
}

func (s *statementService) finishFailed(ctx context.Context, task *domain.ParseTask, start time.Time, parseErr error, maxRetries int) {
	kind := parsing.FailureKindOf(parseErr)

	// Only unexpected failures are worth retrying; the deterministic
	// pipeline produces the same outcome for the same document.
	if kind == domain.FailureUnexpected && task.ParseAttempts < maxRetries {
		log.Printf("statementService: task %s failed (attempt %d/%d), requeueing: %v",
			task.ID, task.ParseAttempts, maxRetries, parseErr)
		task.Status = domain.TaskStatusPending
		task.StartedAt = nil
		if err := s.repo.Update(ctx, task); err != nil {
			log.Printf("statementService: task %s requeue failed: %v", task.ID, err)
		}
		return
	}

	now := time.Now().UTC()
	ms := time.Since(start).Milliseconds()
	task.Status = domain.TaskStatusFailed
	task.FailureKind = string(kind)
	task.Error = parseErr.Error()
	task.CompletedAt = &now
	task.ProcessingMS = &ms

	if err := s.repo.Update(ctx, task); err != nil {
		log.Printf("statementService: task %s failure persist failed: %v", task.ID, err)
		return
	}
	log.Printf("statementService: task %s failed: %s: %v", task.ID, kind, parseErr)
}
