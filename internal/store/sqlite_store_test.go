package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "emails.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(owner, sender, label string, createdAt time.Time) *core.EmailRecord {
	confidence := 0.9
	return &core.EmailRecord{
		Owner:        owner,
		Sender:       sender,
		Recipient:    "inbox@example.com",
		Subject:      "hello",
		RawBody:      "<p>Hello there</p>",
		CleanedText:  "hello there",
		Label:        label,
		Confidence:   &confidence,
		ModelVersion: "NaiveBayes",
		Source:       core.SourceManual,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func TestSQLiteCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := testRecord("alice", "friend@example.com", core.LabelHam, time.Time{})
	require.NoError(t, store.Create(ctx, record))
	require.NotEmpty(t, record.ID)
	require.False(t, record.CreatedAt.IsZero())

	got, err := store.Get(ctx, record.ID)
	require.NoError(t, err)

	assert.Equal(t, record.Owner, got.Owner)
	assert.Equal(t, record.Sender, got.Sender)
	assert.Equal(t, record.RawBody, got.RawBody)
	assert.Equal(t, record.CleanedText, got.CleanedText)
	assert.Equal(t, record.Label, got.Label)
	require.NotNil(t, got.Confidence)
	assert.InDelta(t, 0.9, *got.Confidence, 1e-9)
	assert.Equal(t, record.ModelVersion, got.ModelVersion)
	assert.Equal(t, core.SourceManual, got.Source)
}

func TestSQLiteGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteListFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.Create(ctx, testRecord("alice", "Promo@Deals.example.com", core.LabelSpam, base)))
	require.NoError(t, store.Create(ctx, testRecord("alice", "friend@example.com", core.LabelHam, base.Add(time.Hour))))
	require.NoError(t, store.Create(ctx, testRecord("bob", "deals@shop.example.com", core.LabelSpam, base.Add(2*time.Hour))))

	t.Run("by owner newest first", func(t *testing.T) {
		records, err := store.List(ctx, core.ListFilter{Owner: "alice"})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "friend@example.com", records[0].Sender)
		assert.Equal(t, "Promo@Deals.example.com", records[1].Sender)
	})

	t.Run("label is case-insensitive", func(t *testing.T) {
		records, err := store.List(ctx, core.ListFilter{Label: "sPaM"})
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("sender substring is case-insensitive", func(t *testing.T) {
		records, err := store.List(ctx, core.ListFilter{Sender: "deals"})
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("filters combine", func(t *testing.T) {
		records, err := store.List(ctx, core.ListFilter{Owner: "alice", Label: core.LabelSpam, Sender: "deals"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Promo@Deals.example.com", records[0].Sender)
	})

	t.Run("no match is an empty slice", func(t *testing.T) {
		records, err := store.List(ctx, core.ListFilter{Owner: "nobody"})
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestSQLiteUpdateClassification(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := testRecord("alice", "friend@example.com", core.LabelHam, time.Time{})
	require.NoError(t, store.Create(ctx, record))

	confidence := 0.42
	require.NoError(t, store.UpdateClassification(ctx, record.ID, core.Classification{
		CleanedText:  "free money now",
		Label:        core.LabelSpam,
		Confidence:   &confidence,
		ModelVersion: "RuleModel",
	}))

	got, err := store.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "free money now", got.CleanedText)
	assert.Equal(t, core.LabelSpam, got.Label)
	require.NotNil(t, got.Confidence)
	assert.InDelta(t, 0.42, *got.Confidence, 1e-9)
	assert.Equal(t, "RuleModel", got.ModelVersion)

	err = store.UpdateClassification(ctx, "no-such-id", core.Classification{Label: core.LabelSpam})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteUpdateLabelKeepsProvenance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := testRecord("alice", "friend@example.com", core.LabelSpam, time.Time{})
	require.NoError(t, store.Create(ctx, record))

	require.NoError(t, store.UpdateLabel(ctx, record.ID, core.LabelHam))

	got, err := store.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, core.LabelHam, got.Label)
	require.NotNil(t, got.Confidence)
	assert.InDelta(t, 0.9, *got.Confidence, 1e-9)
	assert.Equal(t, "NaiveBayes", got.ModelVersion)

	assert.ErrorIs(t, store.UpdateLabel(ctx, "no-such-id", core.LabelHam), core.ErrNotFound)
}

func TestSQLiteLabelCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.Create(ctx, testRecord("alice", "a@example.com", core.LabelSpam, base)))
	require.NoError(t, store.Create(ctx, testRecord("alice", "b@example.com", core.LabelSpam, base)))
	require.NoError(t, store.Create(ctx, testRecord("alice", "c@example.com", core.LabelHam, base)))
	require.NoError(t, store.Create(ctx, testRecord("bob", "d@example.com", core.LabelHam, base)))

	counts, err := store.LabelCounts(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Spam": 2, "Ham": 1}, counts)

	counts, err = store.LabelCounts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Spam": 2, "Ham": 2}, counts)
}

func TestSQLiteDailyLabelCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	day1 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.Create(ctx, testRecord("alice", "a@example.com", core.LabelSpam, day1)))
	require.NoError(t, store.Create(ctx, testRecord("alice", "b@example.com", core.LabelSpam, day1.Add(3*time.Hour))))
	require.NoError(t, store.Create(ctx, testRecord("alice", "c@example.com", core.LabelHam, day1)))
	require.NoError(t, store.Create(ctx, testRecord("alice", "d@example.com", core.LabelHam, day2)))

	counts, err := store.DailyLabelCounts(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []core.DayLabelCount{
		{Day: "2024-03-01", Label: "Ham", Count: 1},
		{Day: "2024-03-01", Label: "Spam", Count: 2},
		{Day: "2024-03-02", Label: "Ham", Count: 1},
	}, counts)
}

func TestSQLiteBulkCommit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Bulk(ctx, func(w core.BulkWriter) error {
		for _, sender := range []string{"a@example.com", "b@example.com", "c@example.com"} {
			if err := w.Create(ctx, testRecord("alice", sender, core.LabelSpam, time.Time{})); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	records, err := store.List(ctx, core.ListFilter{Owner: "alice"})
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestSQLiteBulkRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Bulk(ctx, func(w core.BulkWriter) error {
		if err := w.Create(ctx, testRecord("alice", "a@example.com", core.LabelSpam, time.Time{})); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	records, err := store.List(ctx, core.ListFilter{Owner: "alice"})
	require.NoError(t, err)
	assert.Empty(t, records)
}
