package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnboard/internal/database"
	"turnboard/internal/dayerr"
	"turnboard/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()

	db, err := database.NewDB(filepath.Join(dir, "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st, err := New(filepath.Join(dir, "days"), db, zerolog.New(io.Discard))
	require.NoError(t, err)
	return st
}

func TestStore_SaveAndLoad(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	day := models.NewDay("2026-08-30", []string{"open register"}, nil)
	_, err := day.ClockIn("alice", "Alice")
	require.NoError(t, err)

	require.NoError(t, st.Save(ctx, day, true))
	assert.True(t, st.Exists("2026-08-30"))

	loaded, err := st.Load(ctx, "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", loaded.Date)
	assert.Equal(t, models.StatusOpen, loaded.Status)
	assert.Len(t, loaded.Rows, 1)
	assert.Equal(t, "alice", loaded.Rows[0].TechAlias)
	assert.Equal(t, "open register", loaded.NewDayChecklist[0].Text)
}

func TestStore_LoadErrors(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	t.Run("MissingDay", func(t *testing.T) {
		_, err := st.Load(ctx, "2026-01-01")
		assert.ErrorIs(t, err, dayerr.ErrNotFound)
	})

	t.Run("BadDate", func(t *testing.T) {
		_, err := st.Load(ctx, "not-a-date")
		assert.ErrorIs(t, err, dayerr.ErrInvalidInput)
	})

	t.Run("CorruptFile", func(t *testing.T) {
		path := filepath.Join(st.dataDir, "2026-01-02.json")
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

		_, err := st.Load(ctx, "2026-01-02")
		assert.ErrorIs(t, err, dayerr.ErrDecode)
	})
}

func TestStore_Delete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	t.Run("MissingReturnsFalse", func(t *testing.T) {
		deleted, err := st.Delete(ctx, "2026-01-01", true)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("SecureDeleteRemovesFile", func(t *testing.T) {
		day := models.NewDay("2026-08-30", nil, nil)
		require.NoError(t, st.Save(ctx, day, true))

		deleted, err := st.Delete(ctx, "2026-08-30", true)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.False(t, st.Exists("2026-08-30"))

		_, err = st.Load(ctx, "2026-08-30")
		assert.ErrorIs(t, err, dayerr.ErrNotFound)
	})

	t.Run("DeletedDayLeavesListing", func(t *testing.T) {
		day := models.NewDay("2026-08-29", nil, nil)
		require.NoError(t, st.Save(ctx, day, true))

		_, err := st.Delete(ctx, "2026-08-29", false)
		require.NoError(t, err)

		metas, err := st.ListMetadata(ctx)
		require.NoError(t, err)
		for _, m := range metas {
			assert.NotEqual(t, "2026-08-29", m.Date)
		}
	})
}

func TestStore_ListDates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2026-08-28", "2026-08-30", "2026-08-29"} {
		require.NoError(t, st.Save(ctx, models.NewDay(date, nil, nil), false))
	}
	// files that do not look like day files are skipped
	require.NoError(t, os.WriteFile(filepath.Join(st.dataDir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(st.dataDir, "junk.json"), []byte("{}"), 0o644))

	dates, err := st.ListDates()
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-30", "2026-08-29", "2026-08-28"}, dates)
}

func TestStore_ListMetadata(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	open := models.NewDay("2026-08-29", nil, nil)
	require.NoError(t, st.Save(ctx, open, true))

	closed := models.NewDay("2026-08-30", nil, nil)
	require.NoError(t, closed.End())
	require.NoError(t, st.Save(ctx, closed, true))

	metas, err := st.ListMetadata(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 2)

	// newest first
	assert.Equal(t, "2026-08-30", metas[0].Date)
	assert.Equal(t, models.StatusEnded, metas[0].Status)
	assert.Nil(t, metas[0].ClosedAt)
	assert.Equal(t, "2026-08-29", metas[1].Date)
	assert.Equal(t, models.StatusOpen, metas[1].Status)
}
