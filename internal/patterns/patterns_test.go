package patterns

import (
	"math"
	"strings"
	"testing"

	"cortex/internal/types"
)

func nodesFor(ids ...string) []types.GraphNode {
	nodes := make([]types.GraphNode, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, types.GraphNode{ID: id, Type: "module"})
	}
	return nodes
}

func TestDetect_Layered(t *testing.T) {
	g := types.DependencyGraph{Nodes: nodesFor(
		"src/api/users.py",
		"src/api/orders.py",
		"src/core/db.py",
		"readme.md",
	)}
	report := Detect(g)

	var layered *types.PatternRecord
	for i := range report.Patterns {
		if report.Patterns[i].Type == "Layered Architecture" {
			layered = &report.Patterns[i]
		}
	}
	if layered == nil {
		t.Fatalf("no layered pattern in %+v", report.Patterns)
	}
	if got, want := layered.Confidence, 0.6+2*0.1; math.Abs(got-want) > 1e-9 {
		t.Fatalf("confidence=%v want %v", got, want)
	}
	if len(layered.Layers) != 2 {
		t.Fatalf("layers=%+v want 2", layered.Layers)
	}
	if layered.Layers[0].Name != "Api" || len(layered.Layers[0].Modules) != 2 {
		t.Fatalf("first layer: %+v", layered.Layers[0])
	}
	if !strings.Contains(layered.Evidence[0], "2 distinct layers") {
		t.Fatalf("evidence: %v", layered.Evidence)
	}
}

func TestDetect_LayeredConfidenceCapped(t *testing.T) {
	ids := []string{
		"x/a/f.py", "x/b/f.py", "x/c/f.py", "x/d/f.py", "x/e/f.py",
	}
	report := Detect(types.DependencyGraph{Nodes: nodesFor(ids...)})
	for _, p := range report.Patterns {
		if p.Type == "Layered Architecture" {
			if p.Confidence != 0.9 {
				t.Fatalf("confidence=%v want cap 0.9", p.Confidence)
			}
			return
		}
	}
	t.Fatal("layered pattern not detected")
}

func TestDetect_SingleLayerIsNotLayered(t *testing.T) {
	report := Detect(types.DependencyGraph{Nodes: nodesFor(
		"src/api/a.py", "src/api/b.py",
	)})
	for _, p := range report.Patterns {
		if p.Type == "Layered Architecture" {
			t.Fatalf("unexpected layered pattern: %+v", p)
		}
	}
}

func TestDetect_MVC(t *testing.T) {
	g := types.DependencyGraph{Nodes: nodesFor(
		"app/user_controller.py",
		"app/user_model.py",
		"app/order_model.py",
	)}
	report := Detect(g)

	var mvc *types.PatternRecord
	for i := range report.Patterns {
		if report.Patterns[i].Type == "MVC Pattern" {
			mvc = &report.Patterns[i]
		}
	}
	if mvc == nil {
		t.Fatalf("no MVC pattern in %+v", report.Patterns)
	}
	if got, want := mvc.Confidence, 0.5+2*0.15; math.Abs(got-want) > 1e-9 {
		t.Fatalf("confidence=%v want %v", got, want)
	}
	if len(mvc.Components["model"]) != 2 || len(mvc.Components["controller"]) != 1 {
		t.Fatalf("components: %+v", mvc.Components)
	}
	// Evidence follows the fixed keyword order, controller before model.
	if !strings.HasPrefix(mvc.Evidence[0], "Found controller") {
		t.Fatalf("evidence order: %v", mvc.Evidence)
	}
}

func TestDetect_Microservices(t *testing.T) {
	clusters := []types.Cluster{
		{ID: "cluster_0", Modules: []string{"a"}},
		{ID: "cluster_1", Modules: []string{"b"}},
		{ID: "cluster_2", Modules: []string{"c"}},
	}
	report := Detect(types.DependencyGraph{Clusters: clusters})

	var ms *types.PatternRecord
	for i := range report.Patterns {
		if report.Patterns[i].Type == "Microservices Pattern" {
			ms = &report.Patterns[i]
		}
	}
	if ms == nil {
		t.Fatalf("no microservices pattern in %+v", report.Patterns)
	}
	if got, want := ms.Confidence, 0.5+3*0.1; math.Abs(got-want) > 1e-9 {
		t.Fatalf("confidence=%v want %v", got, want)
	}
	if len(ms.Services) != 3 {
		t.Fatalf("services: %+v", ms.Services)
	}
}

func TestDetect_TwoClustersAreNotMicroservices(t *testing.T) {
	report := Detect(types.DependencyGraph{Clusters: []types.Cluster{
		{ID: "cluster_0"}, {ID: "cluster_1"},
	}})
	for _, p := range report.Patterns {
		if p.Type == "Microservices Pattern" {
			t.Fatalf("unexpected pattern: %+v", p)
		}
	}
}

func TestDetect_ReportMetadata(t *testing.T) {
	g := types.DependencyGraph{
		Nodes: nodesFor("app/a_controller.py", "app/a_model.py"),
		Clusters: []types.Cluster{
			{ID: "cluster_0"}, {ID: "cluster_1"}, {ID: "cluster_2"},
		},
	}
	report := Detect(g)
	if report.TotalPatterns != len(report.Patterns) {
		t.Fatalf("total=%d patterns=%d", report.TotalPatterns, len(report.Patterns))
	}
	want := 0.0
	for _, p := range report.Patterns {
		if p.Confidence > want {
			want = p.Confidence
		}
	}
	if report.HighestConfidence != want {
		t.Fatalf("highest=%v want %v", report.HighestConfidence, want)
	}
	if len(report.Clusters) != 3 {
		t.Fatalf("clusters not carried through: %+v", report.Clusters)
	}
}

func TestDetect_EmptyGraph(t *testing.T) {
	report := Detect(types.DependencyGraph{})
	if report.TotalPatterns != 0 || report.HighestConfidence != 0 {
		t.Fatalf("report=%+v want empty", report)
	}
}
