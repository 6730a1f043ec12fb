// Package cache implements C3: a persistent key/value store with
// per-entry TTL and optional source-file mtime tracking, grounded on the
// teacher's write-temp-then-rename index durability pattern (formerly in
// kdl_config.go) and the original core/cache.py's key-hash-to-filename
// scheme. Keys are hashed with github.com/cespare/xxhash/v2 instead of
// Python's hashlib.md5; entries are length-prefixed JSON instead of
// pickle, since orc has no cross-process unpickling counterpart to
// guard against.
package cache

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	orcerrors "github.com/standardbeagle/orc/internal/errors"
)

// indexEntry is the metadata orc keeps in memory and in index.json for
// each cache key; the value itself lives in a separate data file.
type indexEntry struct {
	DataFile      string    `json:"data_file"`
	StoredAt      time.Time `json:"stored_at"`
	TTL           int64     `json:"ttl_seconds"` // 0 means no expiry
	SourcePath    string    `json:"source_path,omitempty"`
	SourceModTime int64     `json:"source_mod_time,omitempty"` // unix nanos, 0 if untracked
	Bytes         int64     `json:"bytes"`
}

// Cache is a single project's on-disk cache, rooted at dir (normally
// Config.CacheDir).
type Cache struct {
	dir string

	mu    sync.Mutex
	index map[string]indexEntry
}

// Open loads dir/index.json if present; a missing or corrupt index is
// treated as empty and rebuilt on the next Set, per spec.md §4.3's
// recoverability invariant.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, orcerrors.NewCacheError(dir, err)
	}
	c := &Cache{dir: dir, index: make(map[string]indexEntry)}

	data, err := os.ReadFile(filepath.Join(dir, "index.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, nil // corrupt/unreadable index -> treated as empty
	}
	var idx map[string]indexEntry
	if err := json.Unmarshal(data, &idx); err != nil {
		return c, nil // corrupt index -> empty, will be rebuilt
	}
	c.index = idx
	return c, nil
}

func keyToFilename(key string) string {
	h := xxhash.Sum64String(key)
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, h)
	return hexEncode(buf) + ".dat"
}

func hexEncode(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hextable[v>>4]
		out[i*2+1] = hextable[v&0x0f]
	}
	return string(out)
}

// Get looks up key and, if present, fresh, and readable, unmarshals its
// value into v. The bool return is false for any kind of miss: absent,
// expired, stale relative to source_path's mtime, or unreadable on disk
// (in which case the stale index row is also removed).
func (c *Cache) Get(key string, v interface{}) (bool, error) {
	c.mu.Lock()
	entry, ok := c.index[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}

	if entry.TTL > 0 && time.Since(entry.StoredAt) > time.Duration(entry.TTL)*time.Second {
		c.Invalidate(key)
		return false, nil
	}
	if entry.SourcePath != "" {
		info, err := os.Stat(entry.SourcePath)
		if err != nil {
			c.Invalidate(key)
			return false, nil
		}
		if info.ModTime().UnixNano() > entry.SourceModTime {
			c.Invalidate(key)
			return false, nil
		}
	}

	payload, err := readLengthPrefixed(filepath.Join(c.dir, entry.DataFile))
	if err != nil {
		c.Invalidate(key)
		return false, nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		c.Invalidate(key)
		return false, nil
	}
	return true, nil
}

// Set serializes value as JSON, writes it length-prefixed to a data
// file named from the hash of key, and atomically updates the index.
// ttl<=0 means the entry never expires by TTL; sourcePath=="" means the
// entry is not tied to any file's mtime.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration, sourcePath string) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return orcerrors.NewCacheError(key, err)
	}

	dataFile := keyToFilename(key)
	if err := writeLengthPrefixed(filepath.Join(c.dir, dataFile), payload); err != nil {
		return orcerrors.NewCacheError(key, err)
	}

	var sourceModTime int64
	if sourcePath != "" {
		if info, err := os.Stat(sourcePath); err == nil {
			sourceModTime = info.ModTime().UnixNano()
		}
	}

	entry := indexEntry{
		DataFile:      dataFile,
		StoredAt:      time.Now(),
		TTL:           int64(ttl / time.Second),
		SourcePath:    sourcePath,
		SourceModTime: sourceModTime,
		Bytes:         int64(len(payload)),
	}

	c.mu.Lock()
	c.index[key] = entry
	snapshot := make(map[string]indexEntry, len(c.index))
	for k, v := range c.index {
		snapshot[k] = v
	}
	c.mu.Unlock()

	return c.writeIndex(snapshot)
}

// IsFresh reports whether key exists, is unexpired, and is not stale
// relative to sourcePath's current mtime, without deserializing the
// value.
func (c *Cache) IsFresh(key, sourcePath string) bool {
	c.mu.Lock()
	entry, ok := c.index[key]
	c.mu.Unlock()
	if !ok {
		return false
	}
	if entry.TTL > 0 && time.Since(entry.StoredAt) > time.Duration(entry.TTL)*time.Second {
		return false
	}
	if sourcePath != "" {
		info, err := os.Stat(sourcePath)
		if err != nil {
			return false
		}
		if info.ModTime().UnixNano() > entry.SourceModTime {
			return false
		}
	}
	return true
}

// Invalidate removes one entry (key != "") or the entire cache
// (key == "").
func (c *Cache) Invalidate(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if key == "" {
		for _, entry := range c.index {
			os.Remove(filepath.Join(c.dir, entry.DataFile))
		}
		c.index = make(map[string]indexEntry)
		return c.writeIndexLocked(c.index)
	}

	if entry, ok := c.index[key]; ok {
		os.Remove(filepath.Join(c.dir, entry.DataFile))
		delete(c.index, key)
	}
	snapshot := make(map[string]indexEntry, len(c.index))
	for k, v := range c.index {
		snapshot[k] = v
	}
	return c.writeIndexLocked(snapshot)
}

// Stats reports the number of live entries and their total byte size.
func (c *Cache) Stats() (entries int, bytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.index {
		entries++
		bytes += e.Bytes
	}
	return entries, bytes
}

func (c *Cache) writeIndex(snapshot map[string]indexEntry) error {
	return writeIndexFile(c.dir, snapshot)
}

func (c *Cache) writeIndexLocked(snapshot map[string]indexEntry) error {
	return writeIndexFile(c.dir, snapshot)
}

func writeIndexFile(dir string, snapshot map[string]indexEntry) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	final := filepath.Join(dir, "index.json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, final)
}

// writeLengthPrefixed writes an 8-byte big-endian length header followed
// by payload, via write-temp-then-rename for atomicity.
func writeLengthPrefixed(path string, payload []byte) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	header := make([]byte, 8)
	binary.BigEndian.PutUint64(header, uint64(len(payload)))
	if _, err := f.Write(header); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func readLengthPrefixed(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, 8)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint64(header)
	payload := make([]byte, n)
	if _, err := io.ReadFull(f, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
