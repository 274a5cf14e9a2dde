package graph

import (
	"reflect"
	"testing"

	"cortex/internal/types"
)

func symbolIn(file string) types.Symbol {
	return types.Symbol{Name: "x", Kind: types.SymbolFunction, File: file, Line: 1}
}

func TestBuild_EmptyInput(t *testing.T) {
	g := Build(types.FactSet{})
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Fatalf("nodes=%d edges=%d want empty graph", len(g.Nodes), len(g.Edges))
	}
	if g.Metrics.Density != 0 || g.Metrics.AvgDegree != 0 {
		t.Fatalf("metrics=%+v want zeroed", g.Metrics)
	}
}

func TestBuild_ResolvesImportsAndMergesWeights(t *testing.T) {
	facts := types.FactSet{
		Symbols: []types.Symbol{
			symbolIn("app/main.py"),
			symbolIn("app/util.py"),
		},
		Imports: []types.ImportEdge{
			{From: "app/main.py", Module: "util", Symbol: "load"},
			{From: "app/main.py", Module: "util", Symbol: "save"},
			{From: "app/main.py", Module: "no_such_module", Symbol: "*"},
		},
	}
	g := Build(facts)

	if len(g.Edges) != 1 {
		t.Fatalf("edges=%+v want one merged edge", g.Edges)
	}
	e := g.Edges[0]
	if e.Source != "app/main.py" || e.Target != "app/util.py" {
		t.Fatalf("edge endpoints: %+v", e)
	}
	if e.Weight != 2 {
		t.Fatalf("weight=%d want 2", e.Weight)
	}
	if e.Relationship != types.RelIntraFolder {
		t.Fatalf("relationship=%q want %q", e.Relationship, types.RelIntraFolder)
	}
}

func TestBuild_SelfEdgesDropped(t *testing.T) {
	facts := types.FactSet{
		Symbols: []types.Symbol{symbolIn("pkg/self.py")},
		Imports: []types.ImportEdge{{From: "pkg/self.py", Module: "self", Symbol: "*"}},
	}
	g := Build(facts)
	if len(g.Edges) != 0 {
		t.Fatalf("edges=%+v want self-import dropped", g.Edges)
	}
}

func TestBuild_InterFolderClassification(t *testing.T) {
	facts := types.FactSet{
		Symbols: []types.Symbol{
			symbolIn("api/handler.py"),
			symbolIn("core/service.py"),
		},
		Imports: []types.ImportEdge{
			{From: "api/handler.py", Module: "service", Symbol: "*"},
		},
	}
	g := Build(facts)
	if len(g.Edges) != 1 || g.Edges[0].Relationship != types.RelInterFolder {
		t.Fatalf("edges=%+v want one inter_folder edge", g.Edges)
	}
	if g.Metrics.InterFolderEdges != 1 || g.Metrics.IntraFolderEdges != 0 {
		t.Fatalf("metrics=%+v", g.Metrics)
	}
	if len(g.FolderRelations) != 1 || g.FolderRelations[0].FromTo != "api -> core" {
		t.Fatalf("relations=%+v", g.FolderRelations)
	}
}

func TestBuild_MetricsFormulas(t *testing.T) {
	// Three nodes, two edges: a->b, a->c.
	facts := types.FactSet{
		Symbols: []types.Symbol{
			symbolIn("a.py"), symbolIn("b.py"), symbolIn("c.py"),
		},
		Imports: []types.ImportEdge{
			{From: "a.py", Module: "b", Symbol: "*"},
			{From: "a.py", Module: "c", Symbol: "*"},
		},
	}
	g := Build(facts)
	m := g.Metrics
	if m.TotalNodes != 3 || m.TotalEdges != 2 {
		t.Fatalf("counts: %+v", m)
	}
	if got, want := m.AvgDegree, 2.0*2/3; got != want {
		t.Fatalf("avg degree=%v want %v", got, want)
	}
	if got, want := m.Density, 2.0/(3*2); got != want {
		t.Fatalf("density=%v want %v", got, want)
	}
}

func TestBuild_DegreeCentrality(t *testing.T) {
	facts := types.FactSet{
		Symbols: []types.Symbol{
			symbolIn("a.py"), symbolIn("b.py"), symbolIn("c.py"),
		},
		Imports: []types.ImportEdge{
			{From: "a.py", Module: "b", Symbol: "*"},
			{From: "c.py", Module: "b", Symbol: "*"},
		},
	}
	g := Build(facts)

	byID := map[string]types.GraphNode{}
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	b := byID["b.py"]
	if b.InDegree != 2 || b.OutDegree != 0 {
		t.Fatalf("b degrees: %+v", b)
	}
	if b.Centrality != 1.0 {
		t.Fatalf("b centrality=%v want 1 (degree 2 over n-1=2)", b.Centrality)
	}
	if a := byID["a.py"]; a.Centrality != 0.5 {
		t.Fatalf("a centrality=%v want 0.5", a.Centrality)
	}
}

func TestBuild_SingleNodeCentralityIsOne(t *testing.T) {
	g := Build(types.FactSet{Symbols: []types.Symbol{symbolIn("only.py")}})
	if len(g.Nodes) != 1 || g.Nodes[0].Centrality != 1 {
		t.Fatalf("nodes=%+v want single node with centrality 1", g.Nodes)
	}
}

func TestBuild_ClustersCoverAllNodes(t *testing.T) {
	facts := types.FactSet{
		Symbols: []types.Symbol{
			symbolIn("auth/login.py"), symbolIn("auth/token.py"),
			symbolIn("billing/invoice.py"), symbolIn("billing/charge.py"),
		},
		Imports: []types.ImportEdge{
			{From: "auth/login.py", Module: "token", Symbol: "*"},
			{From: "billing/invoice.py", Module: "charge", Symbol: "*"},
		},
	}
	g := Build(facts)

	seen := map[string]int{}
	for _, c := range g.Clusters {
		for _, m := range c.Modules {
			seen[m]++
		}
	}
	if len(seen) != 4 {
		t.Fatalf("clusters cover %d nodes want 4: %+v", len(seen), g.Clusters)
	}
	for m, n := range seen {
		if n != 1 {
			t.Fatalf("node %s appears in %d clusters", m, n)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	facts := types.FactSet{
		Symbols: []types.Symbol{
			symbolIn("a/x.py"), symbolIn("a/y.py"), symbolIn("b/z.py"),
		},
		Imports: []types.ImportEdge{
			{From: "a/x.py", Module: "y", Symbol: "*"},
			{From: "b/z.py", Module: "x", Symbol: "*"},
		},
	}
	first := Build(facts)
	second := Build(facts)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("graph build not deterministic:\n%+v\nvs\n%+v", first, second)
	}
}

func TestFolderStructure_DepthOrder(t *testing.T) {
	facts := types.FactSet{
		Symbols: []types.Symbol{
			symbolIn("deep/nested/mod.py"),
			symbolIn("top.py"),
			symbolIn("pkg/mod.py"),
		},
	}
	g := Build(facts)

	if len(g.FolderStructure) != 3 {
		t.Fatalf("folders=%+v want 3", g.FolderStructure)
	}
	if g.FolderStructure[0].Path != types.RootFolder || g.FolderStructure[0].Depth != 0 {
		t.Fatalf("first folder: %+v want root at depth 0", g.FolderStructure[0])
	}
	if g.FolderStructure[2].Path != "deep/nested" || g.FolderStructure[2].Depth != 2 {
		t.Fatalf("last folder: %+v want deep/nested at depth 2", g.FolderStructure[2])
	}
}
