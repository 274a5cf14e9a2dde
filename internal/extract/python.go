package extract

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"cortex/internal/types"
)

// PythonExtractor is the one grammar-aware extractor: it parses Python with
// a real grammar and records classes with their base names, methods with
// their owning class, top-level functions, imports, and call sites.
type PythonExtractor struct{}

func NewPythonExtractor() *PythonExtractor {
	return &PythonExtractor{}
}

func (p *PythonExtractor) Languages() []string {
	return []string{"python"}
}

func (p *PythonExtractor) Extract(path string, content []byte) (types.FactSet, error) {
	// The C parser is stateful and not safe for concurrent use; Extract runs
	// from the worker pool, so each call gets its own parser.
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return types.FactSet{}, err
	}
	defer tree.Close()

	w := &pyWalker{path: path, content: content}
	w.walk(tree.RootNode(), "", false)
	return w.facts, nil
}

// pyWalker carries traversal state. currentClass is the most recently
// entered class and is never reset, matching the call-attribution behavior
// of the reference analyzer.
type pyWalker struct {
	path         string
	content      []byte
	currentClass string
	facts        types.FactSet
}

// walk visits node and its children. className is the owning class when the
// traversal is inside a class body; inClassBody marks direct children of
// that body, which are the only defs recorded as methods.
func (w *pyWalker) walk(node *sitter.Node, className string, inClassBody bool) {
	switch node.Type() {
	case "class_definition":
		w.visitClass(node)
		return
	case "function_definition":
		w.visitFunction(node, className, inClassBody)
		return
	case "import_statement":
		w.visitImport(node)
	case "import_from_statement":
		w.visitImportFrom(node)
	case "decorated_definition":
		// Decorators wrap the definition node; keep the class-body context.
		for i := 0; i < int(node.ChildCount()); i++ {
			w.walk(node.Child(i), className, inClassBody)
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i), className, false)
	}
}

func (w *pyWalker) visitClass(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(w.content)

	var bases []string
	if sup := node.ChildByFieldName("superclasses"); sup != nil {
		for i := 0; i < int(sup.NamedChildCount()); i++ {
			arg := sup.NamedChild(i)
			switch arg.Type() {
			case "identifier", "attribute":
				bases = append(bases, arg.Content(w.content))
			}
		}
	}

	w.facts.Symbols = append(w.facts.Symbols, types.Symbol{
		Name:  name,
		Kind:  types.SymbolClass,
		File:  w.path,
		Line:  int(node.StartPoint().Row) + 1,
		Bases: bases,
	})
	for _, base := range bases {
		w.facts.Inheritance = append(w.facts.Inheritance, types.InheritanceEdge{
			FromClass: name,
			ToClass:   base,
			Type:      "inherits",
			File:      w.path,
		})
	}

	w.currentClass = name
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			w.walk(body.Child(i), name, true)
		}
	}
}

func (w *pyWalker) visitFunction(node *sitter.Node, className string, inClassBody bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(w.content)

	switch {
	case inClassBody && className != "":
		w.facts.Symbols = append(w.facts.Symbols, types.Symbol{
			Name:  name,
			Kind:  types.SymbolMethod,
			File:  w.path,
			Line:  int(node.StartPoint().Row) + 1,
			Class: className,
		})
	case className == "":
		w.facts.Symbols = append(w.facts.Symbols, types.Symbol{
			Name: name,
			Kind: types.SymbolFunction,
			File: w.path,
			Line: int(node.StartPoint().Row) + 1,
		})
	}

	// Collect every call in this def's subtree, attributed to this def.
	// Calls inside nested defs are therefore recorded once for each
	// enclosing def as well as once for the nested def itself.
	// TODO: decide whether call attribution should scope to the innermost
	// def only; the current behavior matches the reference analyzer.
	w.collectCalls(node, name)

	// Visit nested defs and classes so their own facts are recorded.
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			w.walk(body.Child(i), className, false)
		}
	}
}

func (w *pyWalker) collectCalls(node *sitter.Node, caller string) {
	if node.Type() == "call" {
		if callee := w.calleeName(node); callee != "" {
			w.facts.Calls = append(w.facts.Calls, types.CallEdge{
				FromFunction: caller,
				FromClass:    w.currentClass,
				ToFunction:   callee,
				File:         w.path,
				Line:         int(node.StartPoint().Row) + 1,
			})
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		w.collectCalls(node.Child(i), caller)
	}
}

// calleeName returns the called name: the identifier for a bare call, or
// only the trailing attribute for a qualified call (receiver discarded).
func (w *pyWalker) calleeName(callNode *sitter.Node) string {
	fn := callNode.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return fn.Content(w.content)
	case "attribute":
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			return attr.Content(w.content)
		}
	}
	return ""
}

func (w *pyWalker) visitImport(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "dotted_name":
			module := strings.TrimSpace(child.Content(w.content))
			if module != "" {
				w.facts.Imports = append(w.facts.Imports, types.ImportEdge{
					From:   w.path,
					Module: module,
					Symbol: module,
				})
			}
		case "aliased_import":
			module, alias := "", ""
			if n := child.ChildByFieldName("name"); n != nil {
				module = strings.TrimSpace(n.Content(w.content))
			}
			if a := child.ChildByFieldName("alias"); a != nil {
				alias = strings.TrimSpace(a.Content(w.content))
			}
			if module != "" {
				if alias == "" {
					alias = module
				}
				w.facts.Imports = append(w.facts.Imports, types.ImportEdge{
					From:   w.path,
					Module: module,
					Symbol: alias,
				})
			}
		}
	}
}

func (w *pyWalker) visitImportFrom(node *sitter.Node) {
	module := ""
	if m := node.ChildByFieldName("module_name"); m != nil {
		module = strings.TrimSpace(m.Content(w.content))
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.FieldNameForChild(i) != "name" {
			continue
		}
		child := node.Child(i)
		imported := ""
		switch child.Type() {
		case "aliased_import":
			if n := child.ChildByFieldName("name"); n != nil {
				imported = strings.TrimSpace(n.Content(w.content))
			}
		case "dotted_name", "identifier":
			imported = strings.TrimSpace(child.Content(w.content))
		}
		if imported != "" {
			w.facts.Imports = append(w.facts.Imports, types.ImportEdge{
				From:   w.path,
				Module: module,
				Symbol: imported,
			})
		}
	}
}
