package domain

// Provider identifies the credit-card issuer whose statement layout drives
// field extraction. The set is closed; adding an issuer means adding a
// strategy configuration, not a new type.
type Provider string

const (
	ProviderAmex       Provider = "Amex"
	ProviderChase      Provider = "Chase"
	ProviderCiti       Provider = "Citi"
	ProviderCapitalOne Provider = "Capital One"
	ProviderBofA       Provider = "Bank of America"
)

// SupportedProviders lists all providers in display order, used for error
// messages when classification fails.
var SupportedProviders = []Provider{
	ProviderAmex,
	ProviderChase,
	ProviderCiti,
	ProviderCapitalOne,
	ProviderBofA,
}

// TaskStatus represents the lifecycle of a parse task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusSuccess    TaskStatus = "SUCCESS"
	TaskStatusFailed     TaskStatus = "FAILED"
)

// FailureKind classifies a failed parse for the task record.
type FailureKind string

const (
	FailureTextExtraction    FailureKind = "TEXT_EXTRACTION_FAILED"
	FailureNoExtractableText FailureKind = "NO_EXTRACTABLE_TEXT"
	FailureProviderUnknown   FailureKind = "PROVIDER_NOT_IDENTIFIED"
	FailureStrategyMissing   FailureKind = "STRATEGY_MISSING"
	FailureUnexpected        FailureKind = "UNEXPECTED_ERROR"
)

// AllowedContentTypes maps MIME content types accepted for upload.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
}
