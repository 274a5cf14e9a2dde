package extract

import (
	"regexp"

	"cortex/internal/types"
)

// SQL extractor: CREATE statements become symbols, and every table named in
// a FROM or JOIN clause becomes an import dependency on that table.
var (
	reSQLTable = regexp.MustCompile(`(?i)CREATE\s+(?:OR\s+REPLACE\s+)?TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?([a-zA-Z_][\w.]*)`)
	reSQLView  = regexp.MustCompile(`(?i)CREATE\s+(?:OR\s+REPLACE\s+)?VIEW\s+([a-zA-Z_][\w.]*)`)
	reSQLProc  = regexp.MustCompile(`(?i)CREATE\s+(?:OR\s+REPLACE\s+)?(?:PROCEDURE|FUNCTION)\s+([a-zA-Z_][\w.]*)`)
	reSQLFrom  = regexp.MustCompile(`(?i)(?:FROM|JOIN)\s+([a-zA-Z_][\w.]*)`)
)

type sqlExtractor struct{}

func (e *sqlExtractor) Languages() []string {
	return []string{"sql"}
}

func (e *sqlExtractor) Extract(path string, content []byte) (types.FactSet, error) {
	var facts types.FactSet

	appendSymbols := func(re *regexp.Regexp, kind types.SymbolKind) {
		for _, m := range re.FindAllSubmatchIndex(content, -1) {
			facts.Symbols = append(facts.Symbols, types.Symbol{
				Name: string(content[m[2]:m[3]]),
				Kind: kind,
				File: path,
				Line: lineAt(content, m[0]),
			})
		}
	}
	appendSymbols(reSQLTable, types.SymbolTable)
	appendSymbols(reSQLView, types.SymbolView)
	appendSymbols(reSQLProc, types.SymbolProcedure)

	// Referenced tables, deduplicated in first-appearance order.
	seen := make(map[string]bool)
	for _, m := range reSQLFrom.FindAllSubmatch(content, -1) {
		table := string(m[1])
		if seen[table] {
			continue
		}
		seen[table] = true
		facts.Imports = append(facts.Imports, types.ImportEdge{
			From:   path,
			Module: table,
			Symbol: table,
		})
	}

	return facts, nil
}
