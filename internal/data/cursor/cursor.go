// Package cursor persists per-file read positions between runs so each
// polling cycle only decodes lines appended since the last one. The cache
// is a single JSON document, file_states.json, mapping absolute paths to
// their cursors plus a _metadata header. A corrupt or incompatible cache
// is discarded wholesale; re-reading from zero is safe because the dedup
// ledger collapses replayed events.
package cursor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-claude-usage/internal/util"
)

const (
	cacheFileName = "file_states.json"
	cacheVersion  = "1.0"
	metadataKey   = "_metadata"
)

// FileCursor records how far one log file has been read. Mtime and Size
// are the stat values captured when the cursor was last updated; Inode
// and Fingerprint detect the file being replaced behind the same path.
type FileCursor struct {
	Mtime         float64 `json:"mtime"`
	Size          int64   `json:"size"`
	LastPosition  int64   `json:"last_position"`
	LastProcessed string  `json:"last_processed,omitempty"`
	Inode         uint64  `json:"inode,omitempty"`
	Fingerprint   string  `json:"fingerprint,omitempty"`
}

// Metadata is the _metadata header of the cache document. A version or
// tool-tracking mismatch invalidates every cursor at once.
type Metadata struct {
	CacheVersion     string `json:"cache_version"`
	ToolUsageEnabled bool   `json:"tool_usage_enabled"`
	CreatedAt        string `json:"created_at"`
	LastUpdated      string `json:"last_updated"`
}

// ReadReason says why a file was selected for reading.
type ReadReason int

const (
	ReasonNone ReadReason = iota
	ReasonNewFile
	ReasonGrew
	ReasonTruncated
	ReasonReplaced
	ReasonRewritten
	ReasonTouched
)

// PendingFile is one file due for reading, with the offset to resume at
// and the stat captured when the decision was made. The same stat is
// recorded by Update so data appended during the read is re-examined
// next cycle instead of being skipped.
type PendingFile struct {
	Path   string
	Offset int64
	Reason ReadReason
	Info   *util.FileInfo
}

// Cache holds the in-memory cursor table. With persistence disabled the
// table still tracks positions within a run; it just starts empty and is
// never written out.
type Cache struct {
	cacheDir   string
	disabled   bool
	trackTools bool

	mu       sync.RWMutex
	states   map[string]*FileCursor
	meta     Metadata
	discards int
}

// NewCache prepares a cursor cache rooted at cacheDir. The directory is
// created eagerly unless persistence is disabled.
func NewCache(cacheDir string, disabled, trackTools bool) (*Cache, error) {
	if !disabled {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	return &Cache{
		cacheDir:   cacheDir,
		disabled:   disabled,
		trackTools: trackTools,
		states:     make(map[string]*FileCursor),
		meta: Metadata{
			CacheVersion:     cacheVersion,
			ToolUsageEnabled: trackTools,
			CreatedAt:        now,
			LastUpdated:      now,
		},
	}, nil
}

func (c *Cache) cacheFile() string {
	return filepath.Join(c.cacheDir, cacheFileName)
}

// Load reads file_states.json into memory. Any problem with the document
// as a whole discards it and starts empty; individual entries that fail
// to decode are skipped.
func (c *Cache) Load() {
	if c.disabled {
		return
	}

	data, err := os.ReadFile(c.cacheFile())
	if err != nil {
		if !os.IsNotExist(err) {
			util.LogWarn(fmt.Sprintf("Discarding unreadable cursor cache %s: %v", c.cacheFile(), err))
			c.discard()
		}
		return
	}

	var doc map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &doc); err != nil {
		util.LogWarn(fmt.Sprintf("Discarding corrupt cursor cache %s: %v", c.cacheFile(), err))
		c.discard()
		return
	}

	rawMeta, ok := doc[metadataKey]
	if !ok {
		util.LogWarn(fmt.Sprintf("Discarding cursor cache %s: missing metadata header", c.cacheFile()))
		c.discard()
		return
	}
	var meta Metadata
	if err := sonic.Unmarshal(rawMeta, &meta); err != nil {
		util.LogWarn(fmt.Sprintf("Discarding cursor cache %s: bad metadata header: %v", c.cacheFile(), err))
		c.discard()
		return
	}
	if meta.CacheVersion != cacheVersion {
		util.LogWarn(fmt.Sprintf("Discarding cursor cache %s: version %q, want %q",
			c.cacheFile(), meta.CacheVersion, cacheVersion))
		c.discard()
		return
	}
	if meta.ToolUsageEnabled != c.trackTools {
		util.LogWarn(fmt.Sprintf("Discarding cursor cache %s: tool tracking changed (cached: %v, current: %v)",
			c.cacheFile(), meta.ToolUsageEnabled, c.trackTools))
		c.discard()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if meta.CreatedAt != "" {
		c.meta.CreatedAt = meta.CreatedAt
	}
	loaded := 0
	for path, raw := range doc {
		if path == metadataKey {
			continue
		}
		var cur FileCursor
		if err := sonic.Unmarshal(raw, &cur); err != nil {
			util.LogDebug(fmt.Sprintf("Skip bad cursor entry for %s: %v", path, err))
			continue
		}
		c.states[path] = &cur
		loaded++
	}
	util.LogDebug(fmt.Sprintf("Loaded %d cursors from %s", loaded, c.cacheFile()))
}

func (c *Cache) discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = make(map[string]*FileCursor)
	c.discards++
}

// Save writes the cursor table back to file_states.json. A no-op with
// persistence disabled.
func (c *Cache) Save() error {
	if c.disabled {
		return nil
	}

	c.mu.RLock()
	doc := make(map[string]json.RawMessage, len(c.states)+1)
	meta := c.meta
	meta.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	rawMeta, err := sonic.Marshal(meta)
	if err != nil {
		c.mu.RUnlock()
		return err
	}
	doc[metadataKey] = rawMeta
	for path, cur := range c.states {
		raw, err := sonic.Marshal(cur)
		if err != nil {
			c.mu.RUnlock()
			return err
		}
		doc[path] = raw
	}
	c.mu.RUnlock()

	data, err := sonic.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.cacheFile(), data, 0644)
}

// Clear drops every cursor and removes the cache file.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.states = make(map[string]*FileCursor)
	c.mu.Unlock()

	if c.disabled {
		return nil
	}
	if err := os.Remove(c.cacheFile()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Invalidate drops every in-memory cursor without touching the cache file,
// so the next Changed pass selects each file from offset zero. Safe because
// the dedup ledger absorbs the replayed lines.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = make(map[string]*FileCursor)
}

// Cursor returns a copy of the stored cursor for path.
func (c *Cache) Cursor(path string) (FileCursor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cur, ok := c.states[path]
	if !ok {
		return FileCursor{}, false
	}
	return *cur, true
}

// Discards reports how many times the cache was thrown away wholesale.
func (c *Cache) Discards() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.discards
}

// Changed stats each path and returns the subset due for reading, with
// resume offsets. Paths that disappear between scan and stat are dropped
// silently.
func (c *Cache) Changed(paths []string) []PendingFile {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var pending []PendingFile
	for _, path := range paths {
		info, err := util.GetFileInfo(path)
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skipping %s: stat failed: %v", path, err))
			continue
		}
		offset, reason := c.evaluate(path, info)
		if reason == ReasonNone {
			continue
		}
		pending = append(pending, PendingFile{Path: path, Offset: offset, Reason: reason, Info: info})
	}
	return pending
}

// evaluate decides whether a file needs reading and from where. Checks
// run identity-first: a changed inode or a shrunken or rewritten file
// restarts from zero, growth resumes at the stored position.
func (c *Cache) evaluate(path string, info *util.FileInfo) (int64, ReadReason) {
	cur, ok := c.states[path]
	if !ok {
		return 0, ReasonNewFile
	}

	if cur.Inode != 0 && info.Inode != cur.Inode {
		util.LogDebug(fmt.Sprintf("Cursor invalidated for %s: inode changed (cached: %d, current: %d)",
			path, cur.Inode, info.Inode))
		return 0, ReasonReplaced
	}
	if info.Size < cur.Size {
		util.LogDebug(fmt.Sprintf("Cursor reset for %s: truncated (cached: %d, current: %d)",
			path, cur.Size, info.Size))
		return 0, ReasonTruncated
	}
	if info.Size > cur.Size {
		return cur.LastPosition, ReasonGrew
	}
	if float64(info.ModTime) != cur.Mtime {
		if cur.Fingerprint != "" {
			fingerprint, err := util.CalculateFileFingerprint(path)
			if err == nil && fingerprint != cur.Fingerprint {
				util.LogDebug(fmt.Sprintf("Cursor invalidated for %s: fingerprint mismatch (cached: %s, current: %s)",
					path, cur.Fingerprint, fingerprint))
				return 0, ReasonRewritten
			}
		}
		return cur.LastPosition, ReasonTouched
	}
	return 0, ReasonNone
}

// Update records where reading stopped for a pending file. The stat from
// decision time is stored, not a fresh one, so anything appended during
// the read shows up as growth next cycle.
func (c *Cache) Update(p PendingFile, position int64) {
	cur := &FileCursor{
		Mtime:         float64(p.Info.ModTime),
		Size:          p.Info.Size,
		LastPosition:  position,
		LastProcessed: time.Now().UTC().Format(time.RFC3339),
		Inode:         p.Info.Inode,
	}
	if fingerprint, err := util.CalculateFileFingerprint(p.Path); err == nil {
		cur.Fingerprint = fingerprint
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[p.Path] = cur
}
