package store

import (
	migrate "github.com/rubenv/sql-migrate"
)

// sqliteMigrations holds the sqlite schema history. New schema changes are
// appended as new migration entries, never edited in place.
func sqliteMigrations() migrate.MigrationSource {
	return &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "1_create_emails",
				Up: []string{`
					CREATE TABLE emails (
						id            TEXT PRIMARY KEY,
						owner         TEXT NOT NULL,
						sender        TEXT NOT NULL DEFAULT '',
						recipient     TEXT NOT NULL DEFAULT '',
						subject       TEXT NOT NULL DEFAULT '',
						raw_body      TEXT NOT NULL,
						cleaned_text  TEXT NOT NULL DEFAULT '',
						label         TEXT NOT NULL DEFAULT '',
						confidence    REAL,
						model_version TEXT NOT NULL DEFAULT '',
						source        TEXT NOT NULL,
						created_at    TIMESTAMP NOT NULL,
						updated_at    TIMESTAMP NOT NULL
					)`,
				},
				Down: []string{`DROP TABLE emails`},
			},
			{
				Id: "2_create_email_indexes",
				Up: []string{
					`CREATE INDEX idx_emails_owner ON emails(owner)`,
					`CREATE INDEX idx_emails_label ON emails(label)`,
					`CREATE INDEX idx_emails_created_at ON emails(created_at)`,
				},
				Down: []string{
					`DROP INDEX idx_emails_owner`,
					`DROP INDEX idx_emails_label`,
					`DROP INDEX idx_emails_created_at`,
				},
			},
		},
	}
}
