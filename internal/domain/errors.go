package domain

import "errors"

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile           = errors.New("uploaded file is empty")
	ErrUploadFailed        = errors.New("file upload to storage failed")
)
