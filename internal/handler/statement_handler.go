package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cardparse/internal/domain"
	"cardparse/internal/service"
)

// StatementHandler handles statement upload and task status endpoints.
type StatementHandler struct {
	svc         service.StatementService
	maxFileSize int64
}

// NewStatementHandler creates a new StatementHandler. maxFileSizeMB bounds
// the accepted upload size.
func NewStatementHandler(svc service.StatementService, maxFileSizeMB int64) *StatementHandler {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 5
	}
	return &StatementHandler{svc: svc, maxFileSize: maxFileSizeMB << 20}
}

// Parse handles POST /api/v1/statements/parse. It accepts a multipart PDF
// upload, enqueues a parse task, and returns 202 with the task id.
func (h *StatementHandler) Parse(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "multipart field 'file' is required")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !domain.AllowedContentTypes[contentType] {
		HandleError(c, domain.ErrUnsupportedFileType)
		return
	}
	if fileHeader.Size > h.maxFileSize {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxFileSize+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}
	if int64(len(data)) > h.maxFileSize {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}
	if len(data) == 0 {
		HandleError(c, domain.ErrEmptyFile)
		return
	}

	task, err := h.svc.CreateTask(c.Request.Context(), fileHeader.Filename, contentType, data)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, task)
}

// GetTask handles GET /api/v1/statements/tasks/:id.
func (h *StatementHandler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_TASK_ID", "task id must be a UUID")
		return
	}

	task, err := h.svc.GetTask(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, task)
}
