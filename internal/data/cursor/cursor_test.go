package cursor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestCache(t *testing.T, dir string) *Cache {
	t.Helper()
	cache, err := NewCache(dir, false, true)
	require.NoError(t, err)
	return cache
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	path := writeLog(t, dir, "usage.jsonl", `{"line":1}`+"\n")

	cache := newTestCache(t, cacheDir)
	pending := cache.Changed([]string{path})
	require.Len(t, pending, 1)
	assert.Equal(t, ReasonNewFile, pending[0].Reason)
	assert.Equal(t, int64(0), pending[0].Offset)

	cache.Update(pending[0], 123)
	require.NoError(t, cache.Save())

	reloaded := newTestCache(t, cacheDir)
	reloaded.Load()

	cur, ok := reloaded.Cursor(path)
	require.True(t, ok)
	assert.Equal(t, int64(123), cur.LastPosition)
	assert.Equal(t, pending[0].Info.Size, cur.Size)
	assert.NotEmpty(t, cur.Fingerprint)
	assert.NotZero(t, cur.Inode)

	assert.Empty(t, reloaded.Changed([]string{path}))
	assert.Equal(t, 0, reloaded.Discards())
}

func TestCacheDocumentFormat(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	path := writeLog(t, dir, "usage.jsonl", `{"line":1}`+"\n")

	cache := newTestCache(t, cacheDir)
	pending := cache.Changed([]string{path})
	require.Len(t, pending, 1)
	cache.Update(pending[0], 42)
	require.NoError(t, cache.Save())

	data, err := os.ReadFile(filepath.Join(cacheDir, "file_states.json"))
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))

	var meta Metadata
	require.Contains(t, doc, "_metadata")
	require.NoError(t, json.Unmarshal(doc["_metadata"], &meta))
	assert.Equal(t, "1.0", meta.CacheVersion)
	assert.True(t, meta.ToolUsageEnabled)
	assert.NotEmpty(t, meta.CreatedAt)
	assert.NotEmpty(t, meta.LastUpdated)

	require.Contains(t, doc, path)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(doc[path], &entry))
	assert.Equal(t, float64(42), entry["last_position"])
	assert.Contains(t, entry, "mtime")
	assert.Contains(t, entry, "size")
}

func TestChangedDetectsGrowth(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "usage.jsonl", `{"line":1}`+"\n")

	cache := newTestCache(t, filepath.Join(dir, "cache"))
	pending := cache.Changed([]string{path})
	require.Len(t, pending, 1)
	cache.Update(pending[0], pending[0].Info.Size)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"line":2}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	grown := cache.Changed([]string{path})
	require.Len(t, grown, 1)
	assert.Equal(t, ReasonGrew, grown[0].Reason)
	assert.Equal(t, pending[0].Info.Size, grown[0].Offset)
}

func TestChangedResetsOnTruncation(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "usage.jsonl", strings.Repeat(`{"line":1}`+"\n", 10))

	cache := newTestCache(t, filepath.Join(dir, "cache"))
	pending := cache.Changed([]string{path})
	require.Len(t, pending, 1)
	cache.Update(pending[0], pending[0].Info.Size)

	require.NoError(t, os.Truncate(path, 5))

	truncated := cache.Changed([]string{path})
	require.Len(t, truncated, 1)
	assert.Equal(t, ReasonTruncated, truncated[0].Reason)
	assert.Equal(t, int64(0), truncated[0].Offset)
}

func TestChangedDetectsReplacement(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "usage.jsonl", `{"line":1}`+"\n")
	other := writeLog(t, dir, "other.jsonl", `{"line":2}`+"\n")

	cache := newTestCache(t, filepath.Join(dir, "cache"))
	pending := cache.Changed([]string{path})
	require.Len(t, pending, 1)
	cache.Update(pending[0], pending[0].Info.Size)

	// Swap a different file onto the same path; the inode changes.
	require.NoError(t, os.Rename(other, path))

	replaced := cache.Changed([]string{path})
	require.Len(t, replaced, 1)
	assert.Equal(t, ReasonReplaced, replaced[0].Reason)
	assert.Equal(t, int64(0), replaced[0].Offset)
}

func TestChangedDetectsInPlaceRewrite(t *testing.T) {
	dir := t.TempDir()
	content := strings.Repeat("a", 127) + "\n"
	path := writeLog(t, dir, "usage.jsonl", content)

	cache := newTestCache(t, filepath.Join(dir, "cache"))
	pending := cache.Changed([]string{path})
	require.Len(t, pending, 1)
	cache.Update(pending[0], pending[0].Info.Size)

	// Same size, different head bytes, visibly newer mtime.
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("b", 127)+"\n"), 0o644))
	stamp := time.Unix(pending[0].Info.ModTime+5, 0)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	rewritten := cache.Changed([]string{path})
	require.Len(t, rewritten, 1)
	assert.Equal(t, ReasonRewritten, rewritten[0].Reason)
	assert.Equal(t, int64(0), rewritten[0].Offset)
}

func TestChangedKeepsOffsetWhenOnlyTouched(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "usage.jsonl", `{"line":1}`+"\n")

	cache := newTestCache(t, filepath.Join(dir, "cache"))
	pending := cache.Changed([]string{path})
	require.Len(t, pending, 1)
	cache.Update(pending[0], 7)

	stamp := time.Unix(pending[0].Info.ModTime+5, 0)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	touched := cache.Changed([]string{path})
	require.Len(t, touched, 1)
	assert.Equal(t, ReasonTouched, touched[0].Reason)
	assert.Equal(t, int64(7), touched[0].Offset)
}

func TestChangedSkipsMissingFiles(t *testing.T) {
	cache := newTestCache(t, filepath.Join(t.TempDir(), "cache"))
	assert.Empty(t, cache.Changed([]string{"/nonexistent/usage.jsonl"}))
}

func TestLoadDiscardsCorruptCache(t *testing.T) {
	cacheDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "file_states.json"), []byte("not json{{{"), 0o644))

	cache := newTestCache(t, cacheDir)
	cache.Load()

	assert.Equal(t, 1, cache.Discards())
}

func TestLoadDiscardsVersionMismatch(t *testing.T) {
	cacheDir := t.TempDir()
	doc := `{
  "_metadata": {"cache_version": "0.9", "tool_usage_enabled": true, "created_at": "2025-01-09T12:00:00Z", "last_updated": "2025-01-09T12:00:00Z"},
  "/tmp/usage.jsonl": {"mtime": 1736433045.0, "size": 100, "last_position": 50}
}`
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "file_states.json"), []byte(doc), 0o644))

	cache := newTestCache(t, cacheDir)
	cache.Load()

	assert.Equal(t, 1, cache.Discards())
	_, ok := cache.Cursor("/tmp/usage.jsonl")
	assert.False(t, ok)
}

func TestLoadDiscardsToolTrackingMismatch(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	path := writeLog(t, dir, "usage.jsonl", `{"line":1}`+"\n")

	withTools := newTestCache(t, cacheDir)
	pending := withTools.Changed([]string{path})
	require.Len(t, pending, 1)
	withTools.Update(pending[0], 10)
	require.NoError(t, withTools.Save())

	withoutTools, err := NewCache(cacheDir, false, false)
	require.NoError(t, err)
	withoutTools.Load()

	assert.Equal(t, 1, withoutTools.Discards())
	_, ok := withoutTools.Cursor(path)
	assert.False(t, ok)
}

func TestDisabledCacheSkipsPersistence(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	path := writeLog(t, dir, "usage.jsonl", `{"line":1}`+"\n")

	seeded := newTestCache(t, cacheDir)
	pending := seeded.Changed([]string{path})
	require.Len(t, pending, 1)
	seeded.Update(pending[0], 10)
	require.NoError(t, seeded.Save())

	disabled, err := NewCache(cacheDir, true, true)
	require.NoError(t, err)
	disabled.Load()

	// Nothing loads, every file starts from zero.
	_, ok := disabled.Cursor(path)
	assert.False(t, ok)
	fresh := disabled.Changed([]string{path})
	require.Len(t, fresh, 1)
	assert.Equal(t, ReasonNewFile, fresh[0].Reason)

	// Positions still track in memory within the run, without persisting.
	disabled.Update(fresh[0], 99)
	cur, ok := disabled.Cursor(path)
	require.True(t, ok)
	assert.Equal(t, int64(99), cur.LastPosition)

	// Save is a no-op: the seeded document keeps its old position.
	require.NoError(t, disabled.Save())
	saved, err := os.ReadFile(filepath.Join(cacheDir, "file_states.json"))
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(saved, &doc))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(doc[path], &entry))
	assert.Equal(t, float64(10), entry["last_position"])
}

func TestClearRemovesCacheFile(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	path := writeLog(t, dir, "usage.jsonl", `{"line":1}`+"\n")

	cache := newTestCache(t, cacheDir)
	pending := cache.Changed([]string{path})
	require.Len(t, pending, 1)
	cache.Update(pending[0], 10)
	require.NoError(t, cache.Save())

	require.NoError(t, cache.Clear())

	_, err := os.Stat(filepath.Join(cacheDir, "file_states.json"))
	assert.True(t, os.IsNotExist(err))
	_, ok := cache.Cursor(path)
	assert.False(t, ok)
}

func TestInvalidateForcesFullReread(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	path := writeLog(t, dir, "usage.jsonl", `{"line":1}`+"\n")

	cache := newTestCache(t, cacheDir)
	pending := cache.Changed([]string{path})
	require.Len(t, pending, 1)
	cache.Update(pending[0], pending[0].Info.Size)
	require.NoError(t, cache.Save())
	require.Empty(t, cache.Changed([]string{path}))

	cache.Invalidate()

	pending = cache.Changed([]string{path})
	require.Len(t, pending, 1)
	assert.Equal(t, ReasonNewFile, pending[0].Reason)
	assert.Equal(t, int64(0), pending[0].Offset)
	assert.FileExists(t, filepath.Join(cacheDir, "file_states.json"),
		"the on-disk document is left for Save to rewrite")
}
