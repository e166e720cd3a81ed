package core

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an email record does not exist
var ErrNotFound = errors.New("email record not found")

// Normalizer defines the interface for preparing raw email text for classification
type Normalizer interface {
	// Normalize is pure and total: it never fails, and garbage input
	// yields an empty string rather than an error.
	Normalize(raw string) string
}

// TextClassifier defines the interface for the classification model gateway.
type TextClassifier interface {
	// Predict classifies a single normalized text. It returns an error
	// only when the underlying model artifact cannot be loaded; inference
	// failures are reported inside the Prediction.
	Predict(ctx context.Context, text string) (Prediction, error)
}

// ListFilter narrows a record listing
type ListFilter struct {
	Owner string
	// Label matches exactly, case-insensitively
	Label string
	// Sender matches as a case-insensitive substring
	Sender string
}

// BulkWriter is the write scope handed out for one bulk ingestion transaction
type BulkWriter interface {
	Create(ctx context.Context, record *EmailRecord) error
}

// EmailRepository defines the interface for email record persistence
type EmailRepository interface {
	// Create stores a new record, assigning ID and timestamps if unset
	Create(ctx context.Context, record *EmailRecord) error

	// Get retrieves a record by ID
	Get(ctx context.Context, id string) (*EmailRecord, error)

	// List retrieves records matching the filter, newest first
	List(ctx context.Context, filter ListFilter) ([]*EmailRecord, error)

	// UpdateClassification writes cleaned text, label, confidence and
	// model version as one atomic update
	UpdateClassification(ctx context.Context, id string, c Classification) error

	// UpdateLabel replaces the label only, preserving confidence and
	// model version as stale provenance
	UpdateLabel(ctx context.Context, id string, label string) error

	// LabelCounts counts records grouped by label. An empty owner counts
	// the whole store.
	LabelCounts(ctx context.Context, owner string) (map[string]int, error)

	// DailyLabelCounts counts records grouped by creation date and label
	DailyLabelCounts(ctx context.Context, owner string) ([]DayLabelCount, error)

	// Bulk runs fn inside one transactional write scope. An error from fn
	// rolls the whole scope back.
	Bulk(ctx context.Context, fn func(BulkWriter) error) error

	// Close releases the underlying storage
	Close() error
}
