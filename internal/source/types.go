// Package source manages source files and byte-offset positions shared by
// the lexer, parser and diagnostics.
package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata recorded while loading a source file.
	FileFlags uint8
)

const (
	// FileVirtual marks a file that was added from memory (stdin, a test, a REPL line).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File holds the content and metadata for a single loaded source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a human-readable 1-based line/column position.
type LineCol struct {
	Line uint32
	Col  uint32
}
