package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/config"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/factory"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/ingest"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/logging"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/report"
	"go.uber.org/zap"
)

var (
	// Model flags
	modelPath = flag.String("model", "./ml_models/spam_model.gob", "Path to the serialized model artifact")

	// Storage flags (bulk mode only)
	storageType = flag.String("storage", "memory", "Storage backend for bulk import (memory, sqlite, mysql)")
	sqlitePath  = flag.String("sqlite-path", "./data/emails.db", "SQLite database path")
	mysqlDSN    = flag.String("mysql-dsn", "", "MySQL DSN")

	// Input flags
	inputFile = flag.String("file", "", "Input file with the raw email body (use stdin if not specified)")
	bulkFile  = flag.String("bulk", "", "CSV file to bulk import instead of classifying a single body")
	owner     = flag.String("owner", "cli", "Owner recorded on bulk-imported emails")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog   = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := createConfigFromFlags()

	classifierFactory := factory.NewClassifierFactory(cfg, logger)
	service := core.NewClassifierService(
		classifierFactory.CreateNormalizer(),
		classifierFactory.CreateTextClassifier(),
		logger,
	)

	ctx := context.Background()
	if *bulkFile != "" {
		runBulk(ctx, cfg, service, logger)
		return
	}
	runSingle(ctx, service, logger)
}

// runSingle classifies one raw email body read from a file or stdin
func runSingle(ctx context.Context, service *core.ClassifierService, logger *zap.Logger) {
	var reader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		reader = file
		logger.Info("Reading email body from file", zap.String("file", *inputFile))
	} else {
		reader = os.Stdin
		logger.Info("Reading email body from stdin")
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		logger.Fatal("Failed to read email body", zap.Error(err))
	}

	startTime := time.Now()
	classification, err := service.Classify(ctx, string(body))
	if err != nil {
		logger.Fatal("Classification failed", zap.Error(err))
	}

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Label: %s\n", classification.Label)
	fmt.Printf("Confidence: %s\n", report.FormatConfidence(classification.Confidence))
	fmt.Printf("Model: %s\n", classification.ModelVersion)
	fmt.Printf("Cleaned text length: %d bytes\n", len(classification.CleanedText))
	fmt.Printf("Processing time: %v\n", time.Since(startTime))
}

// runBulk imports a CSV into the configured store and prints the summary
func runBulk(ctx context.Context, cfg *config.Config, service *core.ClassifierService, logger *zap.Logger) {
	repo, err := factory.NewStoreFactory(cfg, logger).CreateEmailRepository()
	if err != nil {
		logger.Fatal("Failed to create email store", zap.Error(err))
	}
	defer repo.Close()

	file, err := os.Open(*bulkFile)
	if err != nil {
		logger.Fatal("Failed to open bulk file", zap.Error(err), zap.String("file", *bulkFile))
	}
	defer file.Close()

	ingestor := ingest.NewIngestor(service, repo, logger)
	summary, err := ingestor.Ingest(ctx, file, *owner)
	if err != nil {
		logger.Fatal("Bulk import failed", zap.Error(err))
	}

	fmt.Printf("\n=== Bulk Import Summary ===\n")
	fmt.Printf("Created: %d\n", len(summary.Created))
	fmt.Printf("Errors: %d\n", len(summary.Errors))
	for _, rowErr := range summary.Errors {
		fmt.Printf("  row %d: %s\n", rowErr.Row, rowErr.Err)
	}
}

// createConfigFromFlags builds a configuration from the command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()
	v.Set("model.path", *modelPath)
	v.Set("storage.type", *storageType)
	v.Set("storage.sqlite_path", *sqlitePath)
	if *mysqlDSN != "" {
		v.Set("storage.mysql_dsn", *mysqlDSN)
	}
	return config.NewFromViper(v)
}
