package report

import (
	"context"
	"strings"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"go.uber.org/zap"
)

// DayBuckets holds the spam/ham tallies of a single calendar date
type DayBuckets struct {
	Spam int `json:"spam"`
	Ham  int `json:"ham"`
}

// Reporter computes aggregate views over persisted classification results
type Reporter struct {
	repo   core.EmailRepository
	logger *zap.Logger
}

// NewReporter creates a new reporter
func NewReporter(repo core.EmailRepository, logger *zap.Logger) *Reporter {
	return &Reporter{
		repo:   repo,
		logger: logger,
	}
}

// LabelDistribution counts records grouped by their current label. An empty
// owner covers the whole store.
func (r *Reporter) LabelDistribution(ctx context.Context, owner string) (map[string]int, error) {
	return r.repo.LabelCounts(ctx, owner)
}

// Trend tallies spam/ham counts per calendar date of record creation, keyed
// YYYY-MM-DD. Dates without records are absent; callers treat absence as
// zero. Only the two canonical labels feed the buckets; records carrying a
// custom label show up in LabelDistribution but increment neither counter
// here.
func (r *Reporter) Trend(ctx context.Context, owner string) (map[string]DayBuckets, error) {
	counts, err := r.repo.DailyLabelCounts(ctx, owner)
	if err != nil {
		return nil, err
	}

	trend := map[string]DayBuckets{}
	for _, c := range counts {
		buckets := trend[c.Day]
		switch {
		case strings.EqualFold(c.Label, core.LabelSpam):
			buckets.Spam += c.Count
		case strings.EqualFold(c.Label, core.LabelHam):
			buckets.Ham += c.Count
		default:
			// The date still gets its (possibly zero) buckets.
			r.logger.Debug("Label outside trend buckets",
				zap.String("label", c.Label),
				zap.Int("count", c.Count))
		}
		trend[c.Day] = buckets
	}
	return trend, nil
}
