// Package driver wires the front end (token/lexer/parser), the
// free-variables analyzer, the compiler, and the loader into the pipeline
// cmd/jargon drives: source text in, a resolved isa.Instr listing (or a
// vm.VM ready to run) out. Grounded on internal/driver/tokenize.go and
// internal/driver/parse.go's shape (a Result struct pairing a payload with
// its diag.Bag and FileSet) without that package's module-graph machinery,
// which has no equivalent in a single-file Slang program.
package driver

import (
	"fmt"
	"os"

	"jargon/internal/ast"
	"jargon/internal/bytecode"
	"jargon/internal/compiler"
	"jargon/internal/diag"
	"jargon/internal/isa"
	"jargon/internal/lexer"
	"jargon/internal/loader"
	"jargon/internal/parser"
	"jargon/internal/source"
	"jargon/internal/token"
)

// TokenizeResult is what `jargon tokenize` renders.
type TokenizeResult struct {
	Tokens  []token.Token
	FileSet *source.FileSet
	Bag     *diag.Bag
}

// Tokenize lexes path in full, stopping only at EOF — the lexer never
// fails, so Bag is always empty; it's carried anyway so callers have one
// consistent Result shape across Tokenize/Parse.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	file := fs.Get(id)
	lx := lexer.New(file)

	var toks []token.Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return &TokenizeResult{Tokens: toks, FileSet: fs, Bag: diag.NewBag(maxDiagnostics)}, nil
}

// ParseResult is what `jargon parse` renders.
type ParseResult struct {
	Expr    ast.Expr
	FileSet *source.FileSet
	Bag     *diag.Bag
}

// Parse lexes and parses path, collecting syntax errors into a Bag instead
// of failing outright — a nil Expr with a non-empty Bag means parsing
// failed and the caller should print diagnostics instead of continuing.
func Parse(path string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	file := fs.Get(id)
	bag := diag.NewBag(maxDiagnostics)
	rep := diag.BagReporter{Bag: bag}
	expr := parser.Parse(file, rep)
	return &ParseResult{Expr: expr, FileSet: fs, Bag: bag}, nil
}

// BuildResult is what `jargon build`/`jargon run` compile a source file
// into: an unresolved listing plus everything needed to explain a failure.
type BuildResult struct {
	Code    []isa.Instr // nil if parsing or compilation failed
	FileSet *source.FileSet
	Bag     *diag.Bag
	CompErr error // a *compiler.Error, set only when parsing succeeded but compilation didn't
}

// Build runs the whole front end: lex, parse, compile. A parse failure is
// reported through Bag (Code stays nil, CompErr stays nil); a compile
// failure — an unbound identifier or other malformed-AST condition the
// parser can't produce — is reported through CompErr instead, since it is
// not a diagnosable source-level mistake.
func Build(path string, maxDiagnostics int) (*BuildResult, error) {
	parsed, err := Parse(path, maxDiagnostics)
	if err != nil {
		return nil, err
	}
	res := &BuildResult{FileSet: parsed.FileSet, Bag: parsed.Bag}
	if parsed.Expr == nil {
		return res, nil
	}
	code, err := compiler.Compile(parsed.Expr)
	if err != nil {
		res.CompErr = err
		return res, nil
	}
	res.Code = code
	return res, nil
}

// LoadProgram resolves a compiled listing's labels into a runnable
// loader.Program.
func LoadProgram(code []isa.Instr) (*loader.Program, error) {
	return loader.Load(code)
}

// BuildCached behaves like Build, but consults cache first: an unchanged
// source file (by content hash) skips the front end entirely and returns
// the cached listing, with FileSet/Bag populated by reading path just far
// enough to report its identity. A nil cache disables caching.
func BuildCached(cache *bytecode.Cache, path string, maxDiagnostics int) (*BuildResult, bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("driver: %w", err)
	}
	key := bytecode.KeyOf(src)
	if code, ok, err := cache.Get(key); err == nil && ok {
		fs := source.NewFileSet()
		id, err := fs.Load(path)
		if err != nil {
			return nil, false, fmt.Errorf("driver: %w", err)
		}
		_ = fs.Get(id)
		return &BuildResult{Code: code, FileSet: fs, Bag: diag.NewBag(maxDiagnostics)}, true, nil
	}
	res, err := Build(path, maxDiagnostics)
	if err != nil {
		return nil, false, err
	}
	if res.Code != nil {
		_ = cache.Put(key, res.Code)
	}
	return res, false, nil
}
