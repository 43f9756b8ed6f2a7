package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherEmitsEventForNewJSONLFile(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFileWatcher([]string{dir})
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"line":1}`+"\n"), 0644))

	select {
	case ev := <-w.Events():
		assert.Equal(t, path, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("expected a file event")
	}
}

func TestWatcherEmitsEventForAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"line":1}`+"\n"), 0644))

	w, err := NewFileWatcher([]string{dir})
	require.NoError(t, err)
	defer w.Close()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"line":2}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case ev := <-w.Events():
		assert.Equal(t, path, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("expected a file event")
	}
}

func TestWatcherIgnoresOtherFileTypes(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFileWatcher([]string{dir})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))
	jsonl := filepath.Join(dir, "session.jsonl")
	require.NoError(t, os.WriteFile(jsonl, []byte(`{"line":1}`+"\n"), 0644))

	// The text file is filtered, so the first event seen is the jsonl one.
	select {
	case ev := <-w.Events():
		assert.Equal(t, jsonl, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("expected a file event")
	}
}

func TestWatcherAttachesNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFileWatcher([]string{dir})
	require.NoError(t, err)
	defer w.Close()

	sub := filepath.Join(dir, "project")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the watcher a moment to pick up the directory event.
	time.Sleep(time.Second)

	path := filepath.Join(sub, "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"line":1}`+"\n"), 0644))

	select {
	case ev := <-w.Events():
		assert.Equal(t, path, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("expected a file event from the new subdirectory")
	}
}

func TestWatcherToleratesMissingRoot(t *testing.T) {
	w, err := NewFileWatcher([]string{"/path/that/does/not/exist"})
	require.NoError(t, err)
	require.NoError(t, w.Close())
}
