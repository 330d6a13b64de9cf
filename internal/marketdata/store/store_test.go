package store

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestUpsertMetadataIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	s, err := New(db)
	require.NoError(t, err)

	require.NoError(t, s.UpsertMetadata("AAPL", "yahoo", "1m"))
	require.NoError(t, s.UpsertMetadata("AAPL", "alpaca", "5m"))

	var meta SymbolMetadata
	require.NoError(t, db.First(&meta, "symbol = ?", "AAPL").Error)
	require.Equal(t, "alpaca", meta.LastVendor)
	require.Equal(t, "5m", meta.LastInterval)
}

func TestUpsertSnapshotsPersistsRows(t *testing.T) {
	db := openTestDB(t)
	s, err := New(db)
	require.NoError(t, err)

	rows := []PriceSnapshot{
		{Symbol: "AAPL", Timestamp: time.Unix(0, 0), Close: 100},
		{Symbol: "AAPL", Timestamp: time.Unix(60, 0), Close: 101},
	}
	require.NoError(t, s.UpsertSnapshots(rows))

	var count int64
	db.Model(&PriceSnapshot{}).Where("symbol = ?", "AAPL").Count(&count)
	require.Equal(t, int64(2), count)
}
