package bytecode

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"

	"jargon/internal/isa"
)

// Cache is a sha256-keyed disk cache of compiled listings under
// XDG_CACHE_HOME/jargon, mirroring internal/driver/dcache.go's DiskCache:
// `jargon build`/`jargon run` key a cached .jgb by the hash of the source
// bytes that produced it, so an unchanged source file skips recompilation.
type Cache struct {
	dir string
}

// OpenCache opens the standard-location cache, creating it if absent.
func OpenCache() (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "jargon")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// KeyOf hashes source content into a cache key.
func KeyOf(source []byte) [32]byte { return sha256.Sum256(source) }

func (c *Cache) pathFor(key [32]byte) string {
	return filepath.Join(c.dir, hex.EncodeToString(key[:])+".jgb")
}

// Get returns the cached listing for key, or ok=false if nothing is
// cached — a cache miss is never an error.
func (c *Cache) Get(key [32]byte) (code []isa.Instr, ok bool, err error) {
	if c == nil {
		return nil, false, nil
	}
	code, err = Load(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return code, true, nil
}

// Put stores code under key, replacing any previous entry.
func (c *Cache) Put(key [32]byte, code []isa.Instr) error {
	if c == nil {
		return nil
	}
	return Save(c.pathFor(key), code)
}
