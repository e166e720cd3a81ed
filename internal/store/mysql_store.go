package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the EmailRepository interface,
// for deployments where several instances share one database
type MySQLStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewMySQLStore connects to the database behind dsn and ensures the schema
// exists. The DSN must carry parseTime=true so timestamps scan into
// time.Time.
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS emails (
			id            VARCHAR(36) PRIMARY KEY,
			owner         VARCHAR(255) NOT NULL,
			sender        VARCHAR(320) NOT NULL DEFAULT '',
			recipient     VARCHAR(320) NOT NULL DEFAULT '',
			subject       VARCHAR(1024) NOT NULL DEFAULT '',
			raw_body      TEXT NOT NULL,
			cleaned_text  TEXT NOT NULL,
			label         VARCHAR(50) NOT NULL DEFAULT '',
			confidence    DOUBLE,
			model_version VARCHAR(100) NOT NULL DEFAULT '',
			source        VARCHAR(20) NOT NULL,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL,
			INDEX idx_emails_owner (owner),
			INDEX idx_emails_label (label),
			INDEX idx_emails_created_at (created_at)
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create emails table: %w", err)
	}

	logger.Info("Connected to MySQL store")

	return &MySQLStore{db: db, logger: logger}, nil
}

const mysqlInsert = `
	INSERT INTO emails (id, owner, sender, recipient, subject, raw_body,
		cleaned_text, label, confidence, model_version, source, created_at, updated_at)
	VALUES (:id, :owner, :sender, :recipient, :subject, :raw_body,
		:cleaned_text, :label, :confidence, :model_version, :source, :created_at, :updated_at)`

// Create stores a new record, assigning identifier and timestamps if unset
func (s *MySQLStore) Create(ctx context.Context, record *core.EmailRecord) error {
	prepareCreate(record)
	if _, err := s.db.NamedExecContext(ctx, mysqlInsert, recordToRow(record)); err != nil {
		return fmt.Errorf("failed to insert email record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID
func (s *MySQLStore) Get(ctx context.Context, id string) (*core.EmailRecord, error) {
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
func (s *MySQLStore) List(ctx context.Context, filter core.ListFilter) ([]*core.EmailRecord, error) {
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
		clauses = append(clauses, `LOWER(sender) LIKE CONCAT('%', LOWER(?), '%')`)
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
func (s *MySQLStore) UpdateClassification(ctx context.Context, id string, c core.Classification) error {
	if err := s.requireExists(ctx, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE emails
		SET cleaned_text = ?, label = ?, confidence = ?, model_version = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.CleanedText, c.Label, c.Confidence, c.ModelVersion, id)
	if err != nil {
		return fmt.Errorf("failed to update classification: %w", err)
	}
	return nil
}

// UpdateLabel replaces the label only; confidence and model version stay as
// the last machine opinion
func (s *MySQLStore) UpdateLabel(ctx context.Context, id string, label string) error {
	if err := s.requireExists(ctx, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE emails SET label = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		label, id)
	if err != nil {
		return fmt.Errorf("failed to update label: %w", err)
	}
	return nil
}

// LabelCounts counts records grouped by label
func (s *MySQLStore) LabelCounts(ctx context.Context, owner string) (map[string]int, error) {
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
func (s *MySQLStore) DailyLabelCounts(ctx context.Context, owner string) ([]core.DayLabelCount, error) {
	query := `SELECT DATE_FORMAT(created_at, '%Y-%m-%d') AS day, label, COUNT(*) AS count FROM emails`
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

// Bulk runs fn inside one transaction
func (s *MySQLStore) Bulk(ctx context.Context, fn func(core.BulkWriter) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	return txEnd(tx, fn(&mysqlBulkWriter{tx: tx}))
}

// Close releases the database
func (s *MySQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close MySQL connection: %w", err)
	}
	s.logger.Info("Disconnected from MySQL store")
	return nil
}

// requireExists stands in for a rows-affected check: MySQL reports zero
// affected rows for updates that leave values unchanged
func (s *MySQLStore) requireExists(ctx context.Context, id string) error {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM emails WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to check email record: %w", err)
	}
	if count == 0 {
		return core.ErrNotFound
	}
	return nil
}

type mysqlBulkWriter struct {
	tx *sqlx.Tx
}

func (w *mysqlBulkWriter) Create(ctx context.Context, record *core.EmailRecord) error {
	prepareCreate(record)
	if _, err := w.tx.NamedExecContext(ctx, mysqlInsert, recordToRow(record)); err != nil {
		return fmt.Errorf("failed to insert email record: %w", err)
	}
	return nil
}
