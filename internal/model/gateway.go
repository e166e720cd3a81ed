package model

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"go.uber.org/zap"
)

var (
	// ErrModelNotFound is returned when no artifact exists at the configured path
	ErrModelNotFound = errors.New("model artifact not found")
	// ErrModelLoad is returned when the artifact exists but cannot be deserialized
	ErrModelLoad = errors.New("could not load model artifact")
)

// TextModel is the minimum operation surface a loadable artifact provides
type TextModel interface {
	// Predict classifies a batch of texts, one raw label per input
	Predict(texts []string) ([]string, error)
}

// ProbabilityEstimator is optionally implemented by models that can score
// class probabilities. Models without it are supported; their predictions
// simply carry no confidence.
type ProbabilityEstimator interface {
	PredictProba(texts []string) ([][]float64, error)
}

// Gateway wraps the on-disk classification model. The artifact is loaded
// lazily on first use, exactly once per process even under concurrent first
// calls, and the handle is read-only for the rest of the process lifetime.
type Gateway struct {
	path   string
	logger *zap.Logger

	// loadFn is swapped out in tests
	loadFn func(path string) (TextModel, error)

	once      sync.Once
	model     TextModel
	modelName string
	loadErr   error
}

// NewGateway creates a gateway for the artifact at path. No I/O happens
// until the first Predict call.
func NewGateway(path string, logger *zap.Logger) *Gateway {
	return &Gateway{
		path:   path,
		logger: logger,
		loadFn: loadArtifact,
	}
}

// Predict classifies one text. A load failure is the only hard error;
// inference failures come back as a Prediction carrying the sentinel error
// label so that one malformed document never aborts its batch.
func (g *Gateway) Predict(ctx context.Context, text string) (core.Prediction, error) {
	if err := g.ensureLoaded(); err != nil {
		return core.Prediction{}, err
	}

	labels, err := safePredict(g.model, []string{text})
	if err == nil && len(labels) != 1 {
		err = fmt.Errorf("model returned %d labels for 1 input", len(labels))
	}
	if err != nil {
		g.logger.Error("Inference failed", zap.Error(err))
		return core.Prediction{
			Label:     core.LabelError,
			ModelName: g.modelName,
			Err:       err.Error(),
		}, nil
	}

	return core.Prediction{
		Label:      NormalizeLabel(labels[0]),
		Confidence: g.confidence(text),
		ModelName:  g.modelName,
	}, nil
}

// ensureLoaded performs the one-time artifact load. The outcome, success or
// failure, is sticky for the process lifetime.
func (g *Gateway) ensureLoaded() error {
	g.once.Do(func() {
		model, err := g.loadFn(g.path)
		if err != nil {
			g.loadErr = err
			g.logger.Error("Failed to load classification model",
				zap.String("path", g.path),
				zap.Error(err))
			return
		}
		g.model = model
		g.modelName = typeName(model)
		g.logger.Info("Loaded classification model",
			zap.String("path", g.path),
			zap.String("model", g.modelName))
	})
	return g.loadErr
}

// confidence asks the model for class probabilities when it supports them,
// taking the maximum as the confidence of the winning label. Every failure
// on this path degrades to an absent confidence instead of an error.
func (g *Gateway) confidence(text string) *float64 {
	estimator, ok := g.model.(ProbabilityEstimator)
	if !ok {
		return nil
	}

	probas, err := safePredictProba(estimator, []string{text})
	if err != nil || len(probas) != 1 || len(probas[0]) == 0 {
		if err != nil {
			g.logger.Debug("Probability estimation failed", zap.Error(err))
		}
		return nil
	}

	best := probas[0][0]
	for _, p := range probas[0][1:] {
		if p > best {
			best = p
		}
	}
	return &best
}

// NormalizeLabel maps a raw model output onto the canonical vocabulary.
// Numeric and boolean style outputs resolve to Spam/Ham; anything else
// passes through unchanged as a custom label, which lets the gateway serve
// differently-trained models without touching its call sites.
func NormalizeLabel(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "spam", "true", "yes":
		return core.LabelSpam
	case "0", "ham", "notspam", "no", "false":
		return core.LabelHam
	default:
		return raw
	}
}

// safePredict shields the caller from panicking model implementations
func safePredict(m TextModel, texts []string) (labels []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked during predict: %v", r)
		}
	}()
	return m.Predict(texts)
}

func safePredictProba(e ProbabilityEstimator, texts []string) (probas [][]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked during predict proba: %v", r)
		}
	}()
	return e.PredictProba(texts)
}

// loadArtifact deserializes the model file: primary gob format first, then
// the legacy JSON rule format before giving up
func loadArtifact(path string) (TextModel, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	nb := &NaiveBayes{}
	gobErr := gob.NewDecoder(bytes.NewReader(data)).Decode(nb)
	if gobErr == nil {
		gobErr = nb.Validate()
		if gobErr == nil {
			return nb, nil
		}
	}

	rm := &RuleModel{}
	jsonErr := json.Unmarshal(data, rm)
	if jsonErr == nil {
		jsonErr = rm.Validate()
		if jsonErr == nil {
			return rm, nil
		}
	}

	return nil, fmt.Errorf("%w: gob: %v; legacy json: %v", ErrModelLoad, gobErr, jsonErr)
}

func typeName(m TextModel) string {
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
