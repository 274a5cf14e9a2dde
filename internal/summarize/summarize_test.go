package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"cortex/internal/types"
)

type fakeClient struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, _ any) (json.RawMessage, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return json.RawMessage(f.responses[i]), nil
	}
	return nil, errors.New("no response scripted")
}

const validSummary = `{
  "project_overview": {"purpose": "Demo", "architecture_style": "Layered", "tech_stack": ["Python"], "entry_points": ["main.py"]},
  "subsystems": [{"name": "api", "purpose": "HTTP layer", "technology": "Python", "key_files": [], "modules": ["api/a.py"], "responsibility": "Serves requests", "dependencies": [], "provides_to": []}],
  "data_flow": "Request in, response out",
  "overall_architecture": "A small layered service with an API folder on top of a core library.",
  "recommendations": ["Add tests"]
}`

func demoGraph() types.DependencyGraph {
	return types.DependencyGraph{
		Nodes: []types.GraphNode{{ID: "api/a.py"}},
		FolderStructure: []types.FolderInfo{
			{Path: "api", Files: []string{"api/a.py"}, FileCount: 1, Depth: 1},
		},
	}
}

func TestRun_ValidFirstAttempt(t *testing.T) {
	cli := &fakeClient{responses: []string{validSummary}}
	summary, result, err := New(cli).Run(context.Background(), demoGraph(), types.PatternReport{}, 3)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Valid {
		t.Fatalf("result=%+v want valid", result)
	}
	if cli.calls != 1 {
		t.Fatalf("calls=%d want 1", cli.calls)
	}
	if summary.ProjectOverview.Purpose != "Demo" {
		t.Fatalf("summary: %+v", summary.ProjectOverview)
	}
}

func TestRun_RetriesWithCorrection(t *testing.T) {
	// First response is missing recommendations, second is complete.
	incomplete := strings.Replace(validSummary, `"recommendations": ["Add tests"]`, `"recommendations": []`, 1)
	cli := &fakeClient{responses: []string{incomplete, validSummary}}

	_, result, err := New(cli).Run(context.Background(), demoGraph(), types.PatternReport{}, 3)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if cli.calls != 2 {
		t.Fatalf("calls=%d want 2", cli.calls)
	}
	if !result.Valid {
		t.Fatalf("result=%+v want valid after retry", result)
	}
	if !strings.Contains(cli.prompts[1], "failed validation") {
		t.Fatalf("second prompt carries no correction: %q", cli.prompts[1])
	}
}

func TestRun_FallbackAfterMaxIterations(t *testing.T) {
	boom := errors.New("api down")
	cli := &fakeClient{errs: []error{boom, boom, boom}}

	summary, result, err := New(cli).Run(context.Background(), demoGraph(), types.PatternReport{}, 0)
	if err == nil {
		t.Fatal("want error from exhausted retries")
	}
	if cli.calls != 3 {
		t.Fatalf("calls=%d want 3", cli.calls)
	}
	if summary == nil || len(summary.Subsystems) != 1 || summary.Subsystems[0].Name != "api" {
		t.Fatalf("fallback summary: %+v", summary)
	}
	if result.Iteration != 3 {
		t.Fatalf("iteration=%d want 3", result.Iteration)
	}
}

func TestRun_NilClientUsesFallback(t *testing.T) {
	summary, result, err := New(nil).Run(context.Background(), demoGraph(), types.PatternReport{}, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary == nil || !strings.Contains(summary.OverallArchitecture, "LLM analysis unavailable") {
		t.Fatalf("summary: %+v", summary)
	}
	_ = result
}

func TestGenerate_StripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validSummary + "\n```"
	cli := &fakeClient{responses: []string{fenced}}
	summary, _, err := New(cli).Run(context.Background(), demoGraph(), types.PatternReport{}, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.ProjectOverview.Purpose != "Demo" {
		t.Fatalf("summary: %+v", summary.ProjectOverview)
	}
}

func TestValidate_Checks(t *testing.T) {
	graph := types.DependencyGraph{Nodes: []types.GraphNode{{ID: "a.py"}, {ID: "b.py"}}}
	summary := &types.ArchitectureSummary{
		Subsystems: []types.Subsystem{
			{Name: "core", Modules: []string{"a.py"}, Responsibility: "core logic"},
		},
		OverallArchitecture: strings.Repeat("x", 60),
		Recommendations:     []string{"split packages"},
	}
	result := Validate(summary, graph, 1)
	if !result.Valid {
		t.Fatalf("result=%+v want valid (missing module is only a warning)", result)
	}
	if result.ChecksPassed["referential_integrity"] {
		t.Fatal("b.py is uncovered; integrity check should fail")
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "b.py") {
		t.Fatalf("warnings: %v", result.Warnings)
	}
}

func TestValidate_MissingFieldsAreErrors(t *testing.T) {
	result := Validate(&types.ArchitectureSummary{}, types.DependencyGraph{}, 0)
	if result.Valid {
		t.Fatalf("result=%+v want invalid", result)
	}
	if len(result.Errors) != 3 {
		t.Fatalf("errors=%v want subsystems, overall_architecture, recommendations", result.Errors)
	}
}
