package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndGetRecord(t *testing.T) {
	store := newTestStore(t)

	record := &Record{
		Key:       "data/report.csv",
		LocalPath: "/src/report.csv",
		Size:      2048,
		Status:    StatusSucceeded,
	}
	require.NoError(t, store.SaveRecord(record))

	got, err := store.GetRecord("data/report.csv")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "data/report.csv", got.Key)
	assert.Equal(t, "/src/report.csv", got.LocalPath)
	assert.Equal(t, int64(2048), got.Size)
	assert.Equal(t, StatusSucceeded, got.Status)
	assert.Empty(t, got.Detail)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestGetRecordMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetRecord("absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveRecordUpserts(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveRecord(&Record{
		Key: "k", LocalPath: "/a", Size: 1, Status: StatusFailed, Detail: "put returned status 500",
	}))
	require.NoError(t, store.SaveRecord(&Record{
		Key: "k", LocalPath: "/a", Size: 1, Status: StatusSucceeded,
	}))

	got, err := store.GetRecord("k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, StatusSucceeded, got.Status)

	failed, err := store.ListFailed()
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestListFailed(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveRecord(&Record{Key: "ok", LocalPath: "/a", Size: 1, Status: StatusSucceeded}))
	require.NoError(t, store.SaveRecord(&Record{Key: "bad1", LocalPath: "/b", Size: 2, Status: StatusFailed, Detail: "timeout"}))
	require.NoError(t, store.SaveRecord(&Record{Key: "bad2", LocalPath: "/c", Size: 3, Status: StatusFailed, Detail: "denied"}))

	failed, err := store.ListFailed()
	require.NoError(t, err)
	require.Len(t, failed, 2)

	keys := map[string]string{}
	for _, record := range failed {
		keys[record.Key] = record.Detail
	}
	assert.Equal(t, map[string]string{"bad1": "timeout", "bad2": "denied"}, keys)
}

func TestSaveAfterClose(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())

	err := store.SaveRecord(&Record{Key: "k", LocalPath: "/a", Size: 1, Status: StatusSucceeded})
	assert.Error(t, err)
}
