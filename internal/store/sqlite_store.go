package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the EmailRepository interface
type SQLiteStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (or creates) the database at path and migrates it to
// the current schema
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA synchronous=normal`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	applied, err := migrate.Exec(db.DB, "sqlite3", sqliteMigrations(), migrate.Up)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info("Connected to SQLite store",
		zap.String("path", path),
		zap.Int("applied_migrations", applied))

	return &SQLiteStore{db: db, logger: logger}, nil
}

const sqliteInsert = `
	INSERT INTO emails (id, owner, sender, recipient, subject, raw_body,
		cleaned_text, label, confidence, model_version, source, created_at, updated_at)
	VALUES (:id, :owner, :sender, :recipient, :subject, :raw_body,
		:cleaned_text, :label, :confidence, :model_version, :source, :created_at, :updated_at)`

// Create stores a new record, assigning identifier and timestamps if unset
func (s *SQLiteStore) Create(ctx context.Context, record *core.EmailRecord) error {
	prepareCreate(record)
	if _, err := s.db.NamedExecContext(ctx, sqliteInsert, recordToRow(record)); err != nil {
		return fmt.Errorf("failed to insert email record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID
func (s *SQLiteStore) Get(ctx context.Context, id string) (*core.EmailRecord, error) {
	row := emailRow{}
	err := s.db.GetContext(ctx, &row, `SELECT * FROM emails WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query email record: %w", err)
	}
	return row.toRecord(), nil
}

// List retrieves records matching the filter, newest first
func (s *SQLiteStore) List(ctx context.Context, filter core.ListFilter) ([]*core.EmailRecord, error) {
	query := `SELECT * FROM emails`
	clauses := []string{}
	args := []interface{}{}

	if filter.Owner != "" {
		clauses = append(clauses, `owner = ?`)
		args = append(args, filter.Owner)
	}
	if filter.Label != "" {
		clauses = append(clauses, `LOWER(label) = LOWER(?)`)
		args = append(args, filter.Label)
	}
	if filter.Sender != "" {
		clauses = append(clauses, `LOWER(sender) LIKE '%' || LOWER(?) || '%'`)
		args = append(args, filter.Sender)
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY created_at DESC`

	rows := []emailRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list email records: %w", err)
	}

	records := make([]*core.EmailRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toRecord())
	}
	return records, nil
}

// UpdateClassification writes the classification triple plus the derived
// cleaned text in one statement
func (s *SQLiteStore) UpdateClassification(ctx context.Context, id string, c core.Classification) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE emails
		SET cleaned_text = ?, label = ?, confidence = ?, model_version = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.CleanedText, c.Label, c.Confidence, c.ModelVersion, id)
	if err != nil {
		return fmt.Errorf("failed to update classification: %w", err)
	}
	return s.requireAffected(result)
}

// UpdateLabel replaces the label only; confidence and model version stay as
// the last machine opinion
func (s *SQLiteStore) UpdateLabel(ctx context.Context, id string, label string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE emails SET label = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		label, id)
	if err != nil {
		return fmt.Errorf("failed to update label: %w", err)
	}
	return s.requireAffected(result)
}

// LabelCounts counts records grouped by label
func (s *SQLiteStore) LabelCounts(ctx context.Context, owner string) (map[string]int, error) {
	query := `SELECT label, COUNT(*) AS count FROM emails`
	args := []interface{}{}
	if owner != "" {
		query += ` WHERE owner = ?`
		args = append(args, owner)
	}
	query += ` GROUP BY label`

	rows := []struct {
		Label string `db:"label"`
		Count int    `db:"count"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count labels: %w", err)
	}

	counts := map[string]int{}
	for _, row := range rows {
		counts[row.Label] = row.Count
	}
	return counts, nil
}

// DailyLabelCounts counts records grouped by creation date and label
func (s *SQLiteStore) DailyLabelCounts(ctx context.Context, owner string) ([]core.DayLabelCount, error) {
	query := `SELECT date(created_at) AS day, label, COUNT(*) AS count FROM emails`
	args := []interface{}{}
	if owner != "" {
		query += ` WHERE owner = ?`
		args = append(args, owner)
	}
	query += ` GROUP BY day, label ORDER BY day, label`

	rows := []struct {
		Day   string `db:"day"`
		Label string `db:"label"`
		Count int    `db:"count"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count labels by day: %w", err)
	}

	counts := make([]core.DayLabelCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, core.DayLabelCount{Day: row.Day, Label: row.Label, Count: row.Count})
	}
	return counts, nil
}

// Bulk runs fn inside one transaction. Only an error returned by fn (or by
// the transaction machinery itself) rolls the scope back; per-row business
// failures are fn's concern and stay out of the transaction outcome.
func (s *SQLiteStore) Bulk(ctx context.Context, fn func(core.BulkWriter) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	return txEnd(tx, fn(&sqliteBulkWriter{tx: tx}))
}

// Close releases the database
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close SQLite database: %w", err)
	}
	s.logger.Info("Disconnected from SQLite store")
	return nil
}

func (s *SQLiteStore) requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

type sqliteBulkWriter struct {
	tx *sqlx.Tx
}

func (w *sqliteBulkWriter) Create(ctx context.Context, record *core.EmailRecord) error {
	prepareCreate(record)
	if _, err := w.tx.NamedExecContext(ctx, sqliteInsert, recordToRow(record)); err != nil {
		return fmt.Errorf("failed to insert email record: %w", err)
	}
	return nil
}

// txEnd commits the transaction when err is nil and rolls back otherwise
func txEnd(tx *sqlx.Tx, err error) error {
	if err == nil {
		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
		return nil
	}
	if rollbackErr := tx.Rollback(); rollbackErr != nil {
		return fmt.Errorf("%s, failed to rollback transaction: %w", err.Error(), rollbackErr)
	}
	return err
}

func recordToRow(record *core.EmailRecord) *emailRow {
	return &emailRow{
		ID:           record.ID,
		Owner:        record.Owner,
		Sender:       record.Sender,
		Recipient:    record.Recipient,
		Subject:      record.Subject,
		RawBody:      record.RawBody,
		CleanedText:  record.CleanedText,
		Label:        record.Label,
		Confidence:   record.Confidence,
		ModelVersion: record.ModelVersion,
		Source:       string(record.Source),
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}
