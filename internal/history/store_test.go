package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordFillsIDAndTime(t *testing.T) {
	s := openStore(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	e, err := s.Record(context.Background(), Entry{Format: "csv", Mode: "none", Input: "a", Output: "a"})
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.True(t, fixed.Equal(e.CreatedAt))
}

func TestRecentNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, in := range []string{"first", "second", "third"} {
		_, err := s.Record(ctx, Entry{
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Format:    "latex",
			Mode:      "decimal",
			Param:     i,
			Input:     in,
			Output:    "out-" + in,
		})
		require.NoError(t, err)
	}

	got, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "third", got[0].Input)
	assert.Equal(t, "out-third", got[0].Output)
	assert.Equal(t, 2, got[0].Param)
	assert.Equal(t, "decimal", got[0].Mode)
	assert.True(t, base.Add(2*time.Minute).Equal(got[0].CreatedAt))
	assert.Equal(t, "second", got[1].Input)

	none, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClear(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Record(ctx, Entry{Format: "csv", Mode: "none"})
		require.NoError(t, err)
	}

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(ctx, Entry{Format: "csv", Mode: "none", Input: "kept"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].Input)
}
