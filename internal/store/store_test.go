package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(":memory:")
	require.NoError(t, err, "Open(:memory:) failed")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := openTestStore(t)

	value, found, err := s.Get(LastFolderKey)
	require.NoError(t, err)
	assert.False(t, found, "missing key should not be found")
	assert.Empty(t, value)
}

func TestSetThenGet(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set(LastFolderKey, "/media/photos"))

	value, found, err := s.Get(LastFolderKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "/media/photos", value)
}

func TestSetOverwrites(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set(SlideshowIntervalSecondsKey, "5"))
	require.NoError(t, s.Set(SlideshowIntervalSecondsKey, "10"))

	value, found, err := s.Get(SlideshowIntervalSecondsKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "10", value)
}

func TestAllReturnsEveryPair(t *testing.T) {
	s := openTestStore(t)

	pairs := map[string]string{
		LastFolderKey:        "/media",
		LastSelectedFileKey:  "/media/beach.jpg",
		LastSelectedTrackKey: "/media/track.mp3",
	}
	for key, value := range pairs {
		require.NoError(t, s.Set(key, value))
	}

	all, err := s.All()
	require.NoError(t, err)
	assert.Equal(t, pairs, all)
}

func TestAllOnEmptyStore(t *testing.T) {
	s := openTestStore(t)

	all, err := s.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOpenCreatesFileAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, path, s.Path())
	assert.NoError(t, s.Set(LastFolderKey, "/x"))
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(LastMusicFolderKey, "/music"))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, found, err := reopened.Get(LastMusicFolderKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "/music", value)
}
