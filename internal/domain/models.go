package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Date is a calendar date that marshals as YYYY-MM-DD. Statement dates carry
// no time-of-day component.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month, day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// StatementMetadata carries parse provenance alongside the extracted fields.
type StatementMetadata struct {
	Provider         string             `json:"provider"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
	ExtractionMethod string             `json:"extraction_method"`
	Warnings         []string           `json:"warnings,omitempty"`
}

// StatementData is the normalized output of one parse. Absent fields are nil;
// absence of a single field never fails a parse.
type StatementData struct {
	StatementEndDate *Date              `json:"statement_end_date"`
	PaymentDueDate   *Date              `json:"payment_due_date"`
	TotalBalance     *float64           `json:"total_balance"`
	MinPaymentDue    *float64           `json:"min_payment_due"`
	CardLast4        *string            `json:"card_last_4_digits"`
	Metadata         *StatementMetadata `json:"metadata,omitempty"`
}

// ParseTask is one statement-parsing job and its result. It is the only
// persisted artifact of a parse.
type ParseTask struct {
	ID             uuid.UUID       `db:"id" json:"task_id"`
	Status         TaskStatus      `db:"status" json:"status"`
	FileName       string          `db:"file_name" json:"file_name"`
	ContentType    string          `db:"content_type" json:"-"`
	FileSize       int64           `db:"file_size" json:"-"`
	S3Bucket       string          `db:"s3_bucket" json:"-"`
	S3Key          string          `db:"s3_key" json:"-"`
	FileData       []byte          `db:"file_data" json:"-"`
	Provider       string          `db:"provider" json:"provider_identified,omitempty"`
	StructuredData json.RawMessage `db:"structured_data" json:"data,omitempty"`
	FailureKind    string          `db:"failure_kind" json:"failure_kind,omitempty"`
	Error          string          `db:"error" json:"error,omitempty"`
	ParseAttempts  int             `db:"parse_attempts" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"-"`
	StartedAt      *time.Time      `db:"started_at" json:"started_at,omitempty"`
	CompletedAt    *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	ProcessingMS   *int64          `db:"processing_ms" json:"processing_time_ms,omitempty"`
}
