package types

// Source input -------------------------------------------------------------------

// SourceFile is one file of a repository snapshot, supplied by the
// acquisition layer. Paths are repo-relative with forward slashes.
type SourceFile struct {
	Path     string `json:"path"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

// Extracted facts ----------------------------------------------------------------

type SymbolKind string

const (
	SymbolClass     SymbolKind = "class"
	SymbolFunction  SymbolKind = "function"
	SymbolMethod    SymbolKind = "method"
	SymbolTable     SymbolKind = "table"
	SymbolView      SymbolKind = "view"
	SymbolProcedure SymbolKind = "procedure"
)

type Symbol struct {
	Name  string     `json:"name"`
	Kind  SymbolKind `json:"type"`
	File  string     `json:"file"`
	Line  int        `json:"line"`
	Class string     `json:"class,omitempty"`
	Bases []string   `json:"bases,omitempty"`
}

// ImportEdge records that a file references a module string. Symbol is the
// imported name, or "*" for wildcard/module-level imports.
type ImportEdge struct {
	From   string `json:"from"`
	Module string `json:"module"`
	Symbol string `json:"symbol"`
}

// CallEdge is an unresolved, name-based record of one call site.
type CallEdge struct {
	FromFunction string `json:"from_function"`
	FromClass    string `json:"from_class,omitempty"`
	ToFunction   string `json:"to_function"`
	File         string `json:"file"`
	Line         int    `json:"line"`
}

type InheritanceEdge struct {
	FromClass string `json:"from_class"`
	ToClass   string `json:"to_class"`
	Type      string `json:"type"`
	File      string `json:"file"`
}

// FactSet is the fact bundle for one file, or the concatenation of many.
type FactSet struct {
	Symbols     []Symbol          `json:"symbols"`
	Imports     []ImportEdge      `json:"imports"`
	Calls       []CallEdge        `json:"function_calls"`
	Inheritance []InheritanceEdge `json:"class_relationships"`
	ParseErrors int               `json:"parse_errors"`
	FileCount   int               `json:"files_analyzed"`
}

// Append merges another fact set into f, keeping input order.
func (f *FactSet) Append(other FactSet) {
	f.Symbols = append(f.Symbols, other.Symbols...)
	f.Imports = append(f.Imports, other.Imports...)
	f.Calls = append(f.Calls, other.Calls...)
	f.Inheritance = append(f.Inheritance, other.Inheritance...)
	f.ParseErrors += other.ParseErrors
	f.FileCount += other.FileCount
}
