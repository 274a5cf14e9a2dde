package extract

import (
	"regexp"
	"strings"

	"cortex/internal/types"
)

// Generic fallback for languages without a dedicated extractor. Low
// precision and recall on purpose: common keyword prefixes for functions,
// a capitalized-name convention for classes, and a handful of import
// keyword spellings.
var (
	reGenFunc   = regexp.MustCompile(`(?:public|private|protected|static|async|func|def|fn)\s+([a-zA-Z_]\w*)\s*\(`)
	reGenClass  = regexp.MustCompile(`(?:class|struct|interface|trait)\s+([A-Z][a-zA-Z0-9_]*)`)
	reGenImport = regexp.MustCompile(`(?:import|use|require|include|#include)\s+(?:["<]([^">]+)[">]|([a-zA-Z_][\w.:]*))`)
)

type genericExtractor struct{}

func (e *genericExtractor) Languages() []string {
	return nil
}

func (e *genericExtractor) Extract(path string, content []byte) (types.FactSet, error) {
	var facts types.FactSet

	for _, m := range reGenFunc.FindAllSubmatchIndex(content, -1) {
		name := string(content[m[2]:m[3]])
		if strings.HasPrefix(name, "_") {
			continue
		}
		facts.Symbols = append(facts.Symbols, types.Symbol{
			Name: name,
			Kind: types.SymbolFunction,
			File: path,
			Line: lineAt(content, m[0]),
		})
	}

	for _, m := range reGenClass.FindAllSubmatchIndex(content, -1) {
		facts.Symbols = append(facts.Symbols, types.Symbol{
			Name:  string(content[m[2]:m[3]]),
			Kind:  types.SymbolClass,
			File:  path,
			Line:  lineAt(content, m[0]),
			Bases: []string{},
		})
	}

	for _, m := range reGenImport.FindAllSubmatch(content, -1) {
		module := string(m[1])
		if module == "" {
			module = string(m[2])
		}
		if module == "" {
			continue
		}
		facts.Imports = append(facts.Imports, types.ImportEdge{
			From:   path,
			Module: module,
			Symbol: "*",
		})
	}

	return facts, nil
}
