// Package bytecode serializes a compiled isa.Instr listing to and from the
// .jgb binary format, using github.com/vmihailenco/msgpack/v5 the way
// internal/driver/dcache.go encodes its DiskPayload.
package bytecode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"jargon/internal/isa"
)

// schemaVersion guards against decoding a .jgb file written by an
// incompatible build — bump it whenever Listing's shape changes.
const schemaVersion uint16 = 1

// Listing is the on-disk representation of a compiled program: the flat
// instruction stream a loader.Load call will resolve (or has already
// resolved — Load is idempotent on an already-resolved Location).
type Listing struct {
	Schema uint16
	Code   []isa.Instr
}

// Encode wraps code and writes it to w.
func Encode(w io.Writer, code []isa.Instr) error {
	enc := msgpack.NewEncoder(w)
	return enc.Encode(&Listing{Schema: schemaVersion, Code: code})
}

// Decode reads a Listing from r and validates its schema.
func Decode(r io.Reader) ([]isa.Instr, error) {
	var l Listing
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("bytecode: decode failed: %w", err)
	}
	if l.Schema != schemaVersion {
		return nil, fmt.Errorf("bytecode: schema %d unsupported (want %d)", l.Schema, schemaVersion)
	}
	return l.Code, nil
}

// Save writes code to path as a .jgb file, replacing any existing file
// atomically the way DiskCache.Put replaces a cache entry.
func Save(path string, code []isa.Instr) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "jgb-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := Encode(tmp, code); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// Load reads a .jgb file from path.
func Load(path string) ([]isa.Instr, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
