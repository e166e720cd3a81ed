package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ClassifierService is the record classifier: it combines normalization and
// model inference into the set of fields persisted with an email. Every
// ingestion path (interactive submission, bulk row, external channel) goes
// through this one unit, so classification behaves identically regardless
// of how a record entered the system.
type ClassifierService struct {
	normalizer Normalizer
	classifier TextClassifier
	logger     *zap.Logger
}

// NewClassifierService creates a new record classifier service
func NewClassifierService(normalizer Normalizer, classifier TextClassifier, logger *zap.Logger) *ClassifierService {
	return &ClassifierService{
		normalizer: normalizer,
		classifier: classifier,
		logger:     logger,
	}
}

// Classify normalizes the raw body and runs model inference on the cleaned
// text. It fails only when the model artifact is unavailable; a failed
// inference still yields a Classification carrying the sentinel error label.
func (s *ClassifierService) Classify(ctx context.Context, rawBody string) (Classification, error) {
	cleaned := s.normalizer.Normalize(rawBody)

	prediction, err := s.classifier.Predict(ctx, cleaned)
	if err != nil {
		return Classification{}, fmt.Errorf("failed to classify text: %w", err)
	}

	if prediction.Failed() {
		s.logger.Warn("Inference failed, recording error label",
			zap.String("reason", prediction.Err))
	}

	return Classification{
		CleanedText:  cleaned,
		Label:        prediction.Label,
		Confidence:   prediction.Confidence,
		ModelVersion: prediction.ModelName,
	}, nil
}
