package extract

import (
	"regexp"

	"cortex/internal/types"
)

// Curly-brace family (JavaScript/TypeScript) extractor. Regex heuristics
// only: classes with an optional single base, named functions and
// function-valued const bindings, ES imports and CommonJS requires. Call
// edges are out of scope for this family.
var (
	reCurlyClass   = regexp.MustCompile(`class\s+([A-Z]\w*)(?:\s+extends\s+([A-Z]\w*))?`)
	reCurlyFunc    = regexp.MustCompile(`(?:function\s+(\w+)|const\s+(\w+)\s*=\s*(?:async\s*)?\()`)
	reCurlyImport  = regexp.MustCompile(`import\s+(?:{[^}]*}|\w+|[^from]*)\s+from\s+["']([^"']+)["']`)
	reCurlyRequire = regexp.MustCompile(`require\(["']([^"']+)["']\)`)
)

type curlyExtractor struct{}

func (e *curlyExtractor) Languages() []string {
	return []string{"javascript", "typescript"}
}

func (e *curlyExtractor) Extract(path string, content []byte) (types.FactSet, error) {
	var facts types.FactSet

	for _, m := range reCurlyClass.FindAllSubmatchIndex(content, -1) {
		name := string(content[m[2]:m[3]])
		var bases []string
		if m[4] >= 0 {
			bases = []string{string(content[m[4]:m[5]])}
		}
		facts.Symbols = append(facts.Symbols, types.Symbol{
			Name:  name,
			Kind:  types.SymbolClass,
			File:  path,
			Line:  lineAt(content, m[0]),
			Bases: bases,
		})
		if len(bases) == 1 {
			facts.Inheritance = append(facts.Inheritance, types.InheritanceEdge{
				FromClass: name,
				ToClass:   bases[0],
				Type:      "inherits",
				File:      path,
			})
		}
	}

	for _, m := range reCurlyFunc.FindAllSubmatchIndex(content, -1) {
		name := ""
		if m[2] >= 0 {
			name = string(content[m[2]:m[3]])
		} else if m[4] >= 0 {
			name = string(content[m[4]:m[5]])
		}
		if name == "" {
			continue
		}
		facts.Symbols = append(facts.Symbols, types.Symbol{
			Name: name,
			Kind: types.SymbolFunction,
			File: path,
			Line: lineAt(content, m[0]),
		})
	}

	for _, m := range reCurlyImport.FindAllSubmatchIndex(content, -1) {
		facts.Imports = append(facts.Imports, types.ImportEdge{
			From:   path,
			Module: string(content[m[2]:m[3]]),
			Symbol: "*",
		})
	}
	for _, m := range reCurlyRequire.FindAllSubmatchIndex(content, -1) {
		facts.Imports = append(facts.Imports, types.ImportEdge{
			From:   path,
			Module: string(content[m[2]:m[3]]),
			Symbol: "*",
		})
	}

	return facts, nil
}
