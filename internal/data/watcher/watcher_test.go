package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lookup.log")
	require.NoError(t, os.WriteFile(path, []byte("00:00:01.000: error: context canceled\n"), 0644))

	fw, err := NewFileWatcher(path)
	require.NoError(t, err)
	defer fw.Close()

	// unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("00:00:02.000: error: context canceled\n"), 0644))

	select {
	case ev := <-fw.Events():
		assert.Equal(t, path, ev.Path)
		assert.NotEmpty(t, ev.Operation)
	case <-time.After(5 * time.Second):
		t.Fatal("no event received for the watched file")
	}
}

func TestFileWatcherMissingDirectory(t *testing.T) {
	_, err := NewFileWatcher(filepath.Join(t.TempDir(), "missing", "lookup.log"))
	assert.Error(t, err)
}

func TestFileWatcherCloseEndsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookup.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	fw, err := NewFileWatcher(path)
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	select {
	case _, ok := <-fw.Events():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel not closed")
	}
}

func TestFileWatcherCloseWithUnreadEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookup.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	// no room for events, so the first one blocks until read or closed
	fw, err := newFileWatcher(path, 0)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("00:00:01.000: error: context canceled\n"), 0644))
	}
	time.Sleep(200 * time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- fw.Close() }()

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked on an unread event")
	}

	_, ok := <-fw.Events()
	assert.False(t, ok)
	assert.NoError(t, fw.Close())
}
