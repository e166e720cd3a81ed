package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"go.uber.org/zap"
)

// ErrParse is returned when the upload cannot be read as tabular data at
// all. It is the only whole-batch failure besides a storage failure.
var ErrParse = errors.New("could not parse tabular upload")

// RecordClassifier classifies one raw email body into persistable fields
type RecordClassifier interface {
	Classify(ctx context.Context, rawBody string) (core.Classification, error)
}

// RowError reports one failed row of a bulk upload
type RowError struct {
	Row int    `json:"row"`
	Err string `json:"error"`
}

// Summary is the structured outcome of one bulk ingestion. Created and
// Errors together cover every non-blank row; blank-body rows are skipped
// silently and appear in neither.
type Summary struct {
	Created []string   `json:"ids"`
	Errors  []RowError `json:"errors"`
}

// Ingestor imports many email records from one CSV upload. Rows are
// classified and written independently inside a single store transaction:
// one bad row is recorded and skipped rather than discarding the rest of
// the batch, while a storage or upload-stream failure aborts and rolls
// back everything.
type Ingestor struct {
	classifier RecordClassifier
	repo       core.EmailRepository
	logger     *zap.Logger
}

// NewIngestor creates a new bulk ingestor
func NewIngestor(classifier RecordClassifier, repo core.EmailRepository, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		classifier: classifier,
		repo:       repo,
		logger:     logger,
	}
}

// Ingest parses the upload, maps its columns, then classifies and persists
// each row for the given owner. Row indices in the summary are zero-based
// data rows, the header excluded.
func (ing *Ingestor) Ingest(ctx context.Context, r io.Reader, owner string) (*Summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	columns := MapColumns(header)

	summary := &Summary{Created: []string{}, Errors: []RowError{}}

	err = ing.repo.Bulk(ctx, func(w core.BulkWriter) error {
		for row := 0; ; row++ {
			fields, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				// A malformed row is consumed with its line and stays an
				// isolated row outcome. Anything else is the upload stream
				// itself failing; that would repeat on every subsequent
				// read, so abort the batch and let the transaction roll
				// back.
				var parseErr *csv.ParseError
				if errors.As(err, &parseErr) {
					summary.Errors = append(summary.Errors, RowError{Row: row, Err: err.Error()})
					continue
				}
				return err
			}

			body := columns.Value(fields, FieldBody)
			if strings.TrimSpace(body) == "" {
				continue
			}

			classification, err := ing.classifier.Classify(ctx, body)
			if err != nil {
				summary.Errors = append(summary.Errors, RowError{Row: row, Err: err.Error()})
				continue
			}

			record := &core.EmailRecord{
				Owner:        owner,
				Sender:       columns.Value(fields, FieldSender),
				Recipient:    columns.Value(fields, FieldRecipient),
				Subject:      columns.Value(fields, FieldSubject),
				RawBody:      body,
				CleanedText:  classification.CleanedText,
				Label:        classification.Label,
				Confidence:   classification.Confidence,
				ModelVersion: classification.ModelVersion,
				Source:       core.SourceBulk,
			}

			// A write failure is infrastructure, not a row outcome:
			// abort the batch and let the transaction roll back.
			if err := w.Create(ctx, record); err != nil {
				return err
			}
			summary.Created = append(summary.Created, record.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bulk ingestion aborted: %w", err)
	}

	ing.logger.Info("Bulk ingestion finished",
		zap.String("owner", owner),
		zap.Int("created", len(summary.Created)),
		zap.Int("errors", len(summary.Errors)))

	return summary, nil
}
