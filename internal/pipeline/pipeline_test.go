package pipeline

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"cortex/internal/types"
)

func demoFiles() []types.SourceFile {
	return []types.SourceFile{
		{Path: "api/routes.py", Language: "python", Content: "import store\n\ndef serve():\n    load()\n"},
		{Path: "api/store.py", Language: "python", Content: "def load():\n    pass\n"},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	res, err := NewRunner().Run(context.Background(), "demo", "main", demoFiles())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Facts.FileCount != 2 {
		t.Fatalf("file count=%d want 2", res.Facts.FileCount)
	}
	if len(res.Graph.Nodes) != 2 {
		t.Fatalf("nodes=%+v want 2", res.Graph.Nodes)
	}
	if len(res.Graph.Edges) != 1 {
		t.Fatalf("edges=%+v want routes->store", res.Graph.Edges)
	}
	if res.Summary == nil || res.Validation == nil {
		t.Fatal("summary and validation must always be present")
	}
	if res.Mermaid == "" || res.Markdown == "" {
		t.Fatal("rendered outputs missing")
	}
	if len(res.Messages) == 0 {
		t.Fatalf("messages=%v want stage messages", res.Messages)
	}
}

func TestRun_MergeOrderIsInputOrder(t *testing.T) {
	files := []types.SourceFile{
		{Path: "b.py", Language: "python", Content: "def beta():\n    pass\n"},
		{Path: "a.py", Language: "python", Content: "def alpha():\n    pass\n"},
	}
	res, err := NewRunner().Run(context.Background(), "demo", "", files)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Facts.Symbols) != 2 {
		t.Fatalf("symbols=%+v want 2", res.Facts.Symbols)
	}
	// b.py came first in the input, so its symbols come first in the merge.
	if res.Facts.Symbols[0].Name != "beta" || res.Facts.Symbols[1].Name != "alpha" {
		t.Fatalf("symbols=%+v want input order [beta alpha]", res.Facts.Symbols)
	}
}

func TestRun_DeterministicAcrossRuns(t *testing.T) {
	files := demoFiles()
	first, err := NewRunner(WithMaxWorkers(4)).Run(context.Background(), "demo", "", files)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := NewRunner(WithMaxWorkers(1)).Run(context.Background(), "demo", "", files)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !reflect.DeepEqual(first.Facts, second.Facts) {
		t.Fatalf("facts differ across worker counts")
	}
	if !reflect.DeepEqual(first.Graph, second.Graph) {
		t.Fatalf("graphs differ across worker counts")
	}
	if first.Mermaid != second.Mermaid {
		t.Fatalf("diagrams differ across worker counts")
	}
}

func TestRun_ParseErrorsAreAbsorbed(t *testing.T) {
	files := []types.SourceFile{
		{Path: "ok.py", Language: "python", Content: "def fine():\n    pass\n"},
		{Path: "junk.xyz", Language: "unknown", Content: "%%%%"},
	}
	res, err := NewRunner().Run(context.Background(), "demo", "", files)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Facts.FileCount != 2 {
		t.Fatalf("file count=%d want 2 (fallback handles unknown languages)", res.Facts.FileCount)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner().Run(ctx, "demo", "", demoFiles())
	if err == nil {
		t.Fatal("want error from cancelled context")
	}
}

func TestRun_ProgressCallbacks(t *testing.T) {
	var stages []string
	runner := NewRunner(WithProgress(func(stage, _ string) {
		stages = append(stages, stage)
	}))
	if _, err := runner.Run(context.Background(), "demo", "", demoFiles()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "static_analyzer graph_builder pattern_mapper llm_orchestrator validator output_renderer"
	if got := strings.Join(stages, " "); got != want {
		t.Fatalf("stages=%q want %q", got, want)
	}
}
