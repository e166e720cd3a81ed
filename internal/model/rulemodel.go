package model

import (
	"errors"
	"strings"
)

// RuleModel is the legacy artifact format: a JSON list of keyword rules
// evaluated in order, falling back to a default label. Rule models predict
// labels only; they do not implement ProbabilityEstimator, so records
// classified through one carry no confidence.
type RuleModel struct {
	Rules   []LabelRule `json:"rules"`
	Default string      `json:"default"`
}

// LabelRule maps a set of keywords to a label. The first rule with any
// keyword contained in the input wins.
type LabelRule struct {
	Keywords []string `json:"keywords"`
	Label    string   `json:"label"`
}

// Validate checks that a deserialized rule model is usable
func (m *RuleModel) Validate() error {
	if len(m.Rules) == 0 && m.Default == "" {
		return errors.New("rule model has neither rules nor a default label")
	}
	for _, rule := range m.Rules {
		if rule.Label == "" {
			return errors.New("rule model contains a rule without a label")
		}
	}
	return nil
}

// Predict returns the label of the first matching rule for each input text,
// or the default label when no rule matches
func (m *RuleModel) Predict(texts []string) ([]string, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	labels := make([]string, len(texts))
	for i, text := range texts {
		labels[i] = m.predictOne(text)
	}
	return labels, nil
}

func (m *RuleModel) predictOne(text string) string {
	for _, rule := range m.Rules {
		for _, keyword := range rule.Keywords {
			if keyword != "" && strings.Contains(text, keyword) {
				return rule.Label
			}
		}
	}
	return m.Default
}
