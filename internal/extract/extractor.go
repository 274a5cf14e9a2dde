// Package extract turns one source file into a bundle of structural facts:
// declared symbols, import relations, call relations, and inheritance
// relations. Extraction never fails a run; a file that cannot be parsed
// contributes an empty bundle and a parse-error count.
package extract

import (
	"cortex/internal/types"
)

// Extractor produces the fact bundle for one file. Implementations must be
// pure functions of (path, content) and deterministic for identical input.
type Extractor interface {
	// Languages returns the language tags this extractor handles.
	Languages() []string

	// Extract parses content and returns the facts found in it.
	Extract(path string, content []byte) (types.FactSet, error)
}

// Registry dispatches files to extractors by language tag. Unrecognized
// tags route to the fallback extractor.
type Registry struct {
	byLang   map[string]Extractor
	fallback Extractor
}

// NewRegistry returns a registry with all built-in extractors registered:
// a grammar-aware Python extractor, the curly-brace family extractor for
// JavaScript/TypeScript, the SQL extractor, and the generic fallback.
func NewRegistry() *Registry {
	r := &Registry{
		byLang:   make(map[string]Extractor),
		fallback: &genericExtractor{},
	}
	r.Register(NewPythonExtractor())
	r.Register(&curlyExtractor{})
	r.Register(&sqlExtractor{})
	return r
}

// Register adds an extractor for each of its language tags, replacing any
// previous registration for the same tag.
func (r *Registry) Register(e Extractor) {
	for _, lang := range e.Languages() {
		r.byLang[lang] = e
	}
}

// ExtractFile runs the extractor selected by the file's language tag. A
// parse failure (error or panic) is absorbed into an empty bundle so that
// one broken file never aborts a run.
func (r *Registry) ExtractFile(f types.SourceFile) (out types.FactSet) {
	e, ok := r.byLang[f.Language]
	if !ok {
		e = r.fallback
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = types.FactSet{ParseErrors: 1}
		}
	}()

	facts, err := e.Extract(f.Path, []byte(f.Content))
	if err != nil {
		return types.FactSet{ParseErrors: 1}
	}
	facts.FileCount = 1
	return facts
}

func lineAt(content []byte, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	line := 1
	for _, b := range content[:offset] {
		if b == '\n' {
			line++
		}
	}
	return line
}
