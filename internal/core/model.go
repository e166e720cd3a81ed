package core

import (
	"time"
)

// Canonical label vocabulary. Models trained with other vocabularies are
// mapped onto it by the gateway; unknown labels pass through as custom labels.
const (
	LabelSpam = "Spam"
	LabelHam  = "Ham"

	// LabelError is the sentinel label recorded when inference itself failed.
	LabelError = "error"
)

// Source describes how an email record entered the system
type Source string

const (
	SourceManual   Source = "manual"
	SourceBulk     Source = "bulk"
	SourceExternal Source = "external"
)

// EmailRecord represents a stored email and its classification state
type EmailRecord struct {
	ID        string
	Owner     string
	Sender    string
	Recipient string
	Subject   string

	// RawBody is the immutable input text; CleanedText is derived from it
	// at classification time and never edited independently.
	RawBody     string
	CleanedText string

	// Label, Confidence and ModelVersion are written together when the
	// classifier runs. A manual correction replaces Label only, leaving
	// Confidence/ModelVersion as the last machine opinion.
	Label        string
	Confidence   *float64
	ModelVersion string

	Source    Source
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Prediction represents the outcome of a single model inference.
// A failed inference carries the sentinel LabelError plus the failure
// reason instead of propagating as an error, so one malformed document
// can never abort a batch.
type Prediction struct {
	Label      string
	Confidence *float64
	ModelName  string
	Err        string
}

// Failed reports whether the inference itself failed
func (p Prediction) Failed() bool {
	return p.Err != ""
}

// Classification represents the fields persisted when an email is classified
type Classification struct {
	CleanedText  string
	Label        string
	Confidence   *float64
	ModelVersion string
}

// DayLabelCount is one grouping bucket of the per-day label trend
type DayLabelCount struct {
	Day   string
	Label string
	Count int
}
