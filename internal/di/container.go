package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/config"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/factory"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/httpapi"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/ingest"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/logging"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/ports"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/report"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}

	// Register email repository
	if err := container.Provide(func(f *factory.StoreFactory) (core.EmailRepository, error) {
		return f.CreateEmailRepository()
	}); err != nil {
		return nil, err
	}

	// Register classification pipeline
	if err := container.Provide(func(f *factory.ClassifierFactory) core.TextClassifier {
		return f.CreateTextClassifier()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.ClassifierFactory) core.Normalizer {
		return f.CreateNormalizer()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewClassifierService); err != nil {
		return nil, err
	}

	// Register bulk ingestor
	if err := container.Provide(func(s *core.ClassifierService) ingest.RecordClassifier {
		return s
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(ingest.NewIngestor); err != nil {
		return nil, err
	}

	// Register reporter
	if err := container.Provide(report.NewReporter); err != nil {
		return nil, err
	}

	// Register API server
	if err := container.Provide(func(
		cfg *config.Config,
		service *core.ClassifierService,
		repo core.EmailRepository,
		ingestor *ingest.Ingestor,
		reporter *report.Reporter,
		logger *zap.Logger,
	) ports.APIServer {
		server := cfg.GetServer()
		return httpapi.NewServer(service, repo, ingestor, reporter, logger,
			server.ListenAddress, server.ShutdownTimeout)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
