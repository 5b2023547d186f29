package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftsync/venuepulse/internal/ingest"
)

func testOrders(t *testing.T) []ingest.OrderRecord {
	t.Helper()
	seated, err := time.Parse("2006-01-02 15:04:05", "2026-03-01 18:30:00")
	require.NoError(t, err)
	return []ingest.OrderRecord{
		{
			OrderUUID:       "o-1",
			VenueID:         "v-1",
			Concept:         "Cafe",
			OrderType:       "dine_in",
			DurationMinutes: 47.5,
			SeatedAt:        seated,
			BusinessDate:    "2026-03-01",
		},
		{
			OrderUUID:       "o-2",
			VenueID:         "v-2",
			Concept:         "Steakhouse",
			OrderType:       "take_out",
			DurationMinutes: 12,
			SeatedAt:        seated.Add(time.Hour),
			BusinessDate:    "2026-03-01",
		},
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleansed_data.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())

	orders := testOrders(t)
	require.NoError(t, db.ReplaceCleansedOrders(orders))

	got, err := db.ReadCleansedOrders()
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "o-1", got[0].OrderUUID)
	assert.Equal(t, "Cafe", got[0].Concept)
	assert.Equal(t, "dine_in", got[0].OrderType)
	assert.InDelta(t, 47.5, got[0].DurationMinutes, 1e-9)
	assert.Equal(t, 18, got[0].SeatedAt.Hour())
	assert.Equal(t, "2026-03-01", got[0].BusinessDate)
	assert.Equal(t, "o-2", got[1].OrderUUID)
}

func TestReplaceCleansedOrdersOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleansed_data.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.ReplaceCleansedOrders(testOrders(t)))
	// A second load replaces the previous dataset instead of appending.
	require.NoError(t, db.ReplaceCleansedOrders(testOrders(t)[:1]))

	got, err := db.ReadCleansedOrders()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "o-1", got[0].OrderUUID)
}

func TestOpenSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cleansed_data.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.ReadCleansedOrders()
	require.NoError(t, err)
	assert.Empty(t, got)
}
