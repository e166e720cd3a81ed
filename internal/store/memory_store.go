package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the EmailRepository
// interface. It backs tests and throwaway deployments; its Bulk scope is
// not transactional since there is no infrastructure that can fail
// mid-batch.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*core.EmailRecord
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*core.EmailRecord),
		logger:  logger,
	}
}

// Create stores a new record, assigning identifier and timestamps if unset
func (s *MemoryStore) Create(ctx context.Context, record *core.EmailRecord) error {
	prepareCreate(record)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = cloneRecord(record)
	return nil
}

// Get retrieves a record by ID
func (s *MemoryStore) Get(ctx context.Context, id string) (*core.EmailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneRecord(record), nil
}

// List retrieves records matching the filter, newest first
func (s *MemoryStore) List(ctx context.Context, filter core.ListFilter) ([]*core.EmailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := []*core.EmailRecord{}
	for _, record := range s.records {
		if filter.Owner != "" && record.Owner != filter.Owner {
			continue
		}
		if filter.Label != "" && !strings.EqualFold(record.Label, filter.Label) {
			continue
		}
		if filter.Sender != "" &&
			!strings.Contains(strings.ToLower(record.Sender), strings.ToLower(filter.Sender)) {
			continue
		}
		matches = append(matches, cloneRecord(record))
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// UpdateClassification writes the classification triple plus the derived
// cleaned text
func (s *MemoryStore) UpdateClassification(ctx context.Context, id string, c core.Classification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return core.ErrNotFound
	}
	record.CleanedText = c.CleanedText
	record.Label = c.Label
	record.Confidence = cloneConfidence(c.Confidence)
	record.ModelVersion = c.ModelVersion
	return nil
}

// UpdateLabel replaces the label only
func (s *MemoryStore) UpdateLabel(ctx context.Context, id string, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return core.ErrNotFound
	}
	record.Label = label
	return nil
}

// LabelCounts counts records grouped by label
func (s *MemoryStore) LabelCounts(ctx context.Context, owner string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[string]int{}
	for _, record := range s.records {
		if owner != "" && record.Owner != owner {
			continue
		}
		counts[record.Label]++
	}
	return counts, nil
}

// DailyLabelCounts counts records grouped by creation date and label
func (s *MemoryStore) DailyLabelCounts(ctx context.Context, owner string) ([]core.DayLabelCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type bucket struct {
		day   string
		label string
	}
	grouped := map[bucket]int{}
	for _, record := range s.records {
		if owner != "" && record.Owner != owner {
			continue
		}
		grouped[bucket{record.CreatedAt.Format("2006-01-02"), record.Label}]++
	}

	counts := make([]core.DayLabelCount, 0, len(grouped))
	for b, count := range grouped {
		counts = append(counts, core.DayLabelCount{Day: b.day, Label: b.label, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Day == counts[j].Day {
			return counts[i].Label < counts[j].Label
		}
		return counts[i].Day < counts[j].Day
	})
	return counts, nil
}

// Bulk runs fn with a writer into the shared map
func (s *MemoryStore) Bulk(ctx context.Context, fn func(core.BulkWriter) error) error {
	return fn(&memoryBulkWriter{store: s})
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}

type memoryBulkWriter struct {
	store *MemoryStore
}

func (w *memoryBulkWriter) Create(ctx context.Context, record *core.EmailRecord) error {
	return w.store.Create(ctx, record)
}

func cloneRecord(record *core.EmailRecord) *core.EmailRecord {
	clone := *record
	clone.Confidence = cloneConfidence(record.Confidence)
	return &clone
}

func cloneConfidence(c *float64) *float64 {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
