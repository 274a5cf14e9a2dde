package extract

import (
	"testing"

	"cortex/internal/types"
)

func extractPy(t *testing.T, src string) types.FactSet {
	t.Helper()
	facts, err := NewPythonExtractor().Extract("pkg/app.py", []byte(src))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	return facts
}

func TestPython_ClassWithBase(t *testing.T) {
	facts := extractPy(t, "class B(A):\n    pass\n")

	var classes []types.Symbol
	for _, s := range facts.Symbols {
		if s.Kind == types.SymbolClass {
			classes = append(classes, s)
		}
	}
	if len(classes) != 1 {
		t.Fatalf("classes=%d want 1", len(classes))
	}
	c := classes[0]
	if c.Name != "B" || len(c.Bases) != 1 || c.Bases[0] != "A" || c.Line != 1 {
		t.Fatalf("unexpected class symbol: %+v", c)
	}

	if len(facts.Inheritance) != 1 {
		t.Fatalf("inheritance=%d want 1", len(facts.Inheritance))
	}
	rel := facts.Inheritance[0]
	if rel.FromClass != "B" || rel.ToClass != "A" || rel.Type != "inherits" {
		t.Fatalf("unexpected inheritance edge: %+v", rel)
	}
}

func TestPython_MethodsAndFunctions(t *testing.T) {
	src := `class Service:
    def handle(self):
        pass

def main():
    pass
`
	facts := extractPy(t, src)

	kinds := map[string]types.SymbolKind{}
	classes := map[string]string{}
	for _, s := range facts.Symbols {
		kinds[s.Name] = s.Kind
		classes[s.Name] = s.Class
	}
	if kinds["Service"] != types.SymbolClass {
		t.Fatalf("Service kind=%s want class", kinds["Service"])
	}
	if kinds["handle"] != types.SymbolMethod || classes["handle"] != "Service" {
		t.Fatalf("handle kind=%s class=%q want method/Service", kinds["handle"], classes["handle"])
	}
	if kinds["main"] != types.SymbolFunction {
		t.Fatalf("main kind=%s want function", kinds["main"])
	}
}

func TestPython_Calls(t *testing.T) {
	src := `def run():
    setup()
    client.fetch()
`
	facts := extractPy(t, src)
	if len(facts.Calls) != 2 {
		t.Fatalf("calls=%d want 2: %+v", len(facts.Calls), facts.Calls)
	}
	if facts.Calls[0].FromFunction != "run" || facts.Calls[0].ToFunction != "setup" {
		t.Fatalf("first call: %+v", facts.Calls[0])
	}
	// Qualified call keeps only the trailing attribute.
	if facts.Calls[1].ToFunction != "fetch" {
		t.Fatalf("second call: %+v", facts.Calls[1])
	}
}

func TestPython_MethodCallCarriesClass(t *testing.T) {
	src := `class Worker:
    def start(self):
        self.step()
`
	facts := extractPy(t, src)
	if len(facts.Calls) != 1 {
		t.Fatalf("calls=%d want 1", len(facts.Calls))
	}
	call := facts.Calls[0]
	if call.FromFunction != "start" || call.FromClass != "Worker" || call.ToFunction != "step" {
		t.Fatalf("unexpected call: %+v", call)
	}
}

func TestPython_NestedDefAttributedToBoth(t *testing.T) {
	src := `def outer():
    def inner():
        leaf()
`
	facts := extractPy(t, src)

	// The call in inner is recorded under both outer and inner; the
	// enclosing-def attribution is kept deliberately.
	var callers []string
	for _, c := range facts.Calls {
		if c.ToFunction == "leaf" {
			callers = append(callers, c.FromFunction)
		}
	}
	if len(callers) != 2 || callers[0] != "outer" || callers[1] != "inner" {
		t.Fatalf("callers=%v want [outer inner]", callers)
	}
}

func TestPython_Imports(t *testing.T) {
	src := `import os
import numpy as np
from utils.helpers import load, save
`
	facts := extractPy(t, src)

	type imp struct{ module, symbol string }
	var got []imp
	for _, i := range facts.Imports {
		got = append(got, imp{i.Module, i.Symbol})
	}
	want := []imp{
		{"os", "os"},
		{"numpy", "np"},
		{"utils.helpers", "load"},
		{"utils.helpers", "save"},
	}
	if len(got) != len(want) {
		t.Fatalf("imports=%v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("import %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestPython_DecoratedMethod(t *testing.T) {
	src := `class API:
    @staticmethod
    def ping():
        pass
`
	facts := extractPy(t, src)
	for _, s := range facts.Symbols {
		if s.Name == "ping" {
			if s.Kind != types.SymbolMethod || s.Class != "API" {
				t.Fatalf("ping symbol: %+v", s)
			}
			return
		}
	}
	t.Fatalf("ping not found in %+v", facts.Symbols)
}

func TestPython_GarbageInputDoesNotFail(t *testing.T) {
	facts, err := NewPythonExtractor().Extract("x.py", []byte("def def def ((("))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	_ = facts // tree-sitter recovers; any partial facts are acceptable
}

func TestPython_Deterministic(t *testing.T) {
	src := `class A:
    def m(self):
        go()

def f():
    m()
`
	a := extractPy(t, src)
	b := extractPy(t, src)
	if len(a.Symbols) != len(b.Symbols) || len(a.Calls) != len(b.Calls) || len(a.Imports) != len(b.Imports) {
		t.Fatalf("extraction not deterministic: %+v vs %+v", a, b)
	}
	for i := range a.Calls {
		if a.Calls[i] != b.Calls[i] {
			t.Fatalf("call %d differs: %+v vs %+v", i, a.Calls[i], b.Calls[i])
		}
	}
}
