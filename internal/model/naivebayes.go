package model

import (
	"errors"
	"math"
	"strings"
)

// NaiveBayes is a multinomial naive Bayes text classifier over whitespace
// tokens. It is the primary on-disk artifact format (gob encoded) and is
// produced by an offline training pipeline; this package only loads and
// evaluates it.
type NaiveBayes struct {
	// Classes holds the raw label vocabulary the model was trained with.
	Classes []string
	// ClassLogPrior holds log P(class), indexed like Classes.
	ClassLogPrior []float64
	// TokenLogLikelihood holds log P(token|class) per class.
	TokenLogLikelihood []map[string]float64
	// UnknownLogLikelihood is the smoothed log probability applied to
	// tokens unseen during training, per class.
	UnknownLogLikelihood []float64
}

// Validate checks the internal consistency of a deserialized model
func (m *NaiveBayes) Validate() error {
	if len(m.Classes) == 0 {
		return errors.New("model has no classes")
	}
	if len(m.ClassLogPrior) != len(m.Classes) ||
		len(m.TokenLogLikelihood) != len(m.Classes) ||
		len(m.UnknownLogLikelihood) != len(m.Classes) {
		return errors.New("model per-class tables are inconsistent")
	}
	return nil
}

// Predict returns the most probable class for each input text
func (m *NaiveBayes) Predict(texts []string) ([]string, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	labels := make([]string, len(texts))
	for i, text := range texts {
		scores := m.logJoint(text)
		best := 0
		for c := 1; c < len(scores); c++ {
			if scores[c] > scores[best] {
				best = c
			}
		}
		labels[i] = m.Classes[best]
	}
	return labels, nil
}

// PredictProba returns the per-class probability distribution for each input
// text, in Classes order
func (m *NaiveBayes) PredictProba(texts []string) ([][]float64, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	probas := make([][]float64, len(texts))
	for i, text := range texts {
		probas[i] = softmax(m.logJoint(text))
	}
	return probas, nil
}

// logJoint computes log P(class) + sum log P(token|class) per class
func (m *NaiveBayes) logJoint(text string) []float64 {
	scores := make([]float64, len(m.Classes))
	copy(scores, m.ClassLogPrior)

	for _, token := range strings.Fields(text) {
		for c := range m.Classes {
			if ll, ok := m.TokenLogLikelihood[c][token]; ok {
				scores[c] += ll
			} else {
				scores[c] += m.UnknownLogLikelihood[c]
			}
		}
	}
	return scores
}

// softmax converts log scores to a normalized probability distribution,
// shifting by the maximum for numerical stability
func softmax(logScores []float64) []float64 {
	maxScore := logScores[0]
	for _, s := range logScores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	probas := make([]float64, len(logScores))
	var sum float64
	for i, s := range logScores {
		probas[i] = math.Exp(s - maxScore)
		sum += probas[i]
	}
	for i := range probas {
		probas[i] /= sum
	}
	return probas
}
