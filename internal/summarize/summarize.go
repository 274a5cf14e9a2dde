// Package summarize turns the structural analysis into a narrative
// architecture summary via an LLM, validates the result, and regenerates
// on fixable failures. When no usable summary can be produced it falls back
// to a deterministic one built from the folder structure.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cortex/internal/types"
)

const defaultMaxIterations = 3

// Summarizer drives the generate-validate loop.
type Summarizer struct {
	cli           Client
	maxIterations int
}

func New(cli Client) *Summarizer {
	return &Summarizer{cli: cli, maxIterations: defaultMaxIterations}
}

// Run produces a summary and its validation result. A nil client or a
// persistent generation failure yields the fallback summary; the fallback
// is validated like any other so callers see a consistent shape.
func (s *Summarizer) Run(ctx context.Context, graph types.DependencyGraph, report types.PatternReport, totalSymbols int) (*types.ArchitectureSummary, types.ValidationResult, error) {
	if s == nil || s.cli == nil {
		summary := Fallback(graph, "summarizer not configured")
		return summary, Validate(summary, graph, 0), nil
	}

	var lastErr error
	correction := ""
	for iteration := 0; iteration < s.maxIterations; iteration++ {
		summary, err := s.generate(ctx, graph, report, totalSymbols, correction)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		result := Validate(summary, graph, iteration)
		if result.Valid {
			return summary, result, nil
		}
		// Schema errors are fixable by the model; retry with the error list.
		correction = strings.Join(result.Errors, "\n")
		lastErr = fmt.Errorf("summarize: validation failed: %s", correction)
	}

	reason := "generation failed"
	if lastErr != nil {
		reason = lastErr.Error()
	}
	summary := Fallback(graph, reason)
	return summary, Validate(summary, graph, s.maxIterations), lastErr
}

func (s *Summarizer) generate(ctx context.Context, graph types.DependencyGraph, report types.PatternReport, totalSymbols int, correction string) (*types.ArchitectureSummary, error) {
	prompt := buildPrompt(graph, report, totalSymbols, correction)
	raw, err := s.cli.GenerateJSON(ctx, prompt, nil)
	if err != nil {
		return nil, err
	}

	var summary types.ArchitectureSummary
	if err := json.Unmarshal(stripFences(raw), &summary); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return &summary, nil
}

// stripFences removes a markdown code fence if the model wrapped its JSON
// in one despite the instructions.
func stripFences(raw json.RawMessage) []byte {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		if i := strings.Index(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}
	return []byte(text)
}

// Fallback builds a summary directly from the folder structure so the
// pipeline always has something to render.
func Fallback(graph types.DependencyGraph, reason string) *types.ArchitectureSummary {
	var subsystems []types.Subsystem
	for i, folder := range graph.FolderStructure {
		if i >= 10 {
			break
		}
		name := folder.Path
		if j := strings.LastIndex(name, "/"); j >= 0 {
			name = name[j+1:]
		}
		if name == "" || name == types.RootFolder {
			name = "root"
		}
		modules := folder.Files
		if len(modules) > 20 {
			modules = modules[:20]
		}
		subsystems = append(subsystems, types.Subsystem{
			Name:           name,
			Purpose:        fmt.Sprintf("Contains %d files", folder.FileCount),
			Technology:     "Various",
			KeyFiles:       []types.KeyFile{},
			Modules:        modules,
			Responsibility: fmt.Sprintf("Manages functionality in %s/", folder.Path),
			Dependencies:   []types.SubsystemLink{},
			ProvidesTo:     []types.SubsystemLink{},
		})
	}
	if len(subsystems) == 0 {
		subsystems = []types.Subsystem{{
			Name:           "Codebase",
			Purpose:        "Main codebase",
			Technology:     "Various",
			KeyFiles:       []types.KeyFile{},
			Modules:        []string{},
			Responsibility: "Application code",
			Dependencies:   []types.SubsystemLink{},
			ProvidesTo:     []types.SubsystemLink{},
		}}
	}

	return &types.ArchitectureSummary{
		ProjectOverview: types.ProjectOverview{
			Purpose:           "Analyzing codebase structure",
			ArchitectureStyle: "Unknown (LLM analysis unavailable)",
			TechStack:         []string{},
			EntryPoints:       []string{},
		},
		Subsystems: subsystems,
		DataFlow:   "Unable to analyze data flow (LLM unavailable)",
		OverallArchitecture: fmt.Sprintf(
			"Codebase with %d folders and %d files. LLM analysis unavailable: %s",
			len(graph.FolderStructure), len(graph.Nodes), reason),
		Recommendations: []string{"Retry analysis", "Check API key", "Review error logs"},
	}
}
