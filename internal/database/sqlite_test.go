package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func record(channel models.Channel) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		ID:                uuid.New().String(),
		Channel:           channel,
		InputDigest:       "deadbeef",
		TotalComments:     5,
		ValidRequirements: 3,
		ProcessingTimeMs:  1234.5,
		MockResults:       channel == models.ChannelCSV,
		ArtifactName:      "requisitos_reviews.pdf",
		SourceType:        models.SourceKind(channel),
		CreatedAt:         time.Now().UTC(),
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := record(models.ChannelCSV)
	require.NoError(t, store.SaveAnalysis(ctx, rec))

	got, err := store.GetAnalysis(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, rec.ID, got.ID)
	require.Equal(t, rec.Channel, got.Channel)
	require.Equal(t, rec.ProcessingTimeMs, got.ProcessingTimeMs)
	require.True(t, got.MockResults)
}

func TestGetAnalysis_NotFound(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetAnalysis(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestListAnalyses_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := record(models.ChannelSingle)
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := record(models.ChannelPlayStore)

	require.NoError(t, store.SaveAnalysis(ctx, older))
	require.NoError(t, store.SaveAnalysis(ctx, newer))

	records, err := store.ListAnalyses(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, newer.ID, records[0].ID)

	page, err := store.ListAnalyses(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, older.ID, page[0].ID)
}

func TestPreferences_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	value, err := store.GetPreference(ctx, "theme")
	require.NoError(t, err)
	require.Empty(t, value)

	require.NoError(t, store.SetPreference(ctx, "theme", "dark"))
	value, err = store.GetPreference(ctx, "theme")
	require.NoError(t, err)
	require.Equal(t, "dark", value)

	// Upsert overwrites
	require.NoError(t, store.SetPreference(ctx, "theme", "light"))
	value, err = store.GetPreference(ctx, "theme")
	require.NoError(t, err)
	require.Equal(t, "light", value)
}
