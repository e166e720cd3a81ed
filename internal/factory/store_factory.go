package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/config"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/store"
	"go.uber.org/zap"
)

// StoreFactory creates email repositories based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEmailRepository creates an email repository based on the configuration
func (f *StoreFactory) CreateEmailRepository() (core.EmailRepository, error) {
	storage := f.cfg.GetStorage()

	switch storage.Type {
	case "memory":
		return store.NewMemoryStore(f.logger), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(storage.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(storage.SQLitePath, f.logger)
	case "mysql":
		return store.NewMySQLStore(storage.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storage.Type)
	}
}
