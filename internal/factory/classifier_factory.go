package factory

import (
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/config"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/model"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/textnorm"
	"go.uber.org/zap"
)

// ClassifierFactory creates the classification pipeline pieces from
// configuration
type ClassifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextClassifier creates the model gateway. The artifact itself is
// loaded lazily on the first prediction.
func (f *ClassifierFactory) CreateTextClassifier() core.TextClassifier {
	return model.NewGateway(f.cfg.GetModel().Path, f.logger)
}

// CreateNormalizer creates the text normalizer
func (f *ClassifierFactory) CreateNormalizer() core.Normalizer {
	return textnorm.New(f.logger)
}
