// Package store provides the persistence implementations for email records:
// sqlite for single-node deployments, mysql for shared ones, and an
// in-memory store used by tests.
package store

import (
	"time"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"github.com/google/uuid"
)

// emailRow is the database shape of a core.EmailRecord
type emailRow struct {
	ID           string    `db:"id"`
	Owner        string    `db:"owner"`
	Sender       string    `db:"sender"`
	Recipient    string    `db:"recipient"`
	Subject      string    `db:"subject"`
	RawBody      string    `db:"raw_body"`
	CleanedText  string    `db:"cleaned_text"`
	Label        string    `db:"label"`
	Confidence   *float64  `db:"confidence"`
	ModelVersion string    `db:"model_version"`
	Source       string    `db:"source"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *emailRow) toRecord() *core.EmailRecord {
	return &core.EmailRecord{
		ID:           r.ID,
		Owner:        r.Owner,
		Sender:       r.Sender,
		Recipient:    r.Recipient,
		Subject:      r.Subject,
		RawBody:      r.RawBody,
		CleanedText:  r.CleanedText,
		Label:        r.Label,
		Confidence:   r.Confidence,
		ModelVersion: r.ModelVersion,
		Source:       core.Source(r.Source),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// prepareCreate assigns identifier and timestamps to a record about to be
// inserted, leaving caller-provided values alone so tests and imports can
// pin them
func prepareCreate(record *core.EmailRecord) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
}
