// Package pipeline runs the analysis stages in order: fact extraction,
// graph construction, pattern detection, summary generation, and rendering.
// Extraction fans out across a bounded worker pool; everything downstream
// of the barrier is sequential and deterministic.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"cortex/internal/extract"
	"cortex/internal/graph"
	"cortex/internal/patterns"
	"cortex/internal/render"
	"cortex/internal/summarize"
	"cortex/internal/types"
)

// Progress receives one callback per completed stage.
type Progress func(stage, message string)

type Runner struct {
	registry   *extract.Registry
	summarizer *summarize.Summarizer
	maxWorkers int
	progress   Progress
}

type Option func(*Runner)

func WithSummarizer(s *summarize.Summarizer) Option {
	return func(r *Runner) { r.summarizer = s }
}

func WithProgress(p Progress) Option {
	return func(r *Runner) { r.progress = p }
}

func WithMaxWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxWorkers = n
		}
	}
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		registry:   extract.NewRegistry(),
		maxWorkers: defaultWorkers(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (r *Runner) report(stage, message string, res *types.AnalysisResult) {
	res.Messages = append(res.Messages, message)
	if r.progress != nil {
		r.progress(stage, message)
	}
}

// Run analyzes the given files end to end. Per-file extraction failures are
// absorbed as parse-error counts; the only hard failure is context
// cancellation.
func (r *Runner) Run(ctx context.Context, repoPath, gitRef string, files []types.SourceFile) (*types.AnalysisResult, error) {
	res := &types.AnalysisResult{
		RepoPath: repoPath,
		GitRef:   gitRef,
		Messages: []string{},
		Errors:   []string{},
	}

	facts, err := r.extractAll(ctx, files)
	if err != nil {
		return nil, err
	}
	res.Facts = facts
	r.report("static_analyzer",
		fmt.Sprintf("Static Analyzer: extracted %d symbols from %d files (%d parse errors)",
			len(facts.Symbols), facts.FileCount, facts.ParseErrors), res)

	res.Graph = graph.Build(facts)
	r.report("graph_builder",
		fmt.Sprintf("Graph Builder: %d nodes, %d edges, %d clusters",
			res.Graph.Metrics.TotalNodes, res.Graph.Metrics.TotalEdges, len(res.Graph.Clusters)), res)

	res.Patterns = patterns.Detect(res.Graph)
	r.report("pattern_mapper",
		fmt.Sprintf("Pattern Mapper: detected %d patterns", res.Patterns.TotalPatterns), res)

	summary, validation, sumErr := r.summarizer.Run(ctx, res.Graph, res.Patterns, len(facts.Symbols))
	res.Summary = summary
	res.Validation = &validation
	if sumErr != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("summarizer degraded to fallback: %v", sumErr))
		r.report("llm_orchestrator", "LLM Orchestrator: used fallback summary", res)
	} else {
		r.report("llm_orchestrator",
			fmt.Sprintf("LLM Orchestrator: generated summary with %d subsystems", len(summary.Subsystems)), res)
	}
	r.report("validator",
		fmt.Sprintf("Validator: %d errors, %d warnings", len(validation.Errors), len(validation.Warnings)), res)

	res.Mermaid = render.Mermaid(res)
	res.Markdown = render.Markdown(res)
	r.report("output_renderer", "Output Renderer: generated Mermaid diagram and Markdown documentation", res)

	return res, nil
}

// extractAll fans file extraction out over the worker pool and merges the
// per-file bundles back in input order so repeated runs agree.
func (r *Runner) extractAll(ctx context.Context, files []types.SourceFile) (types.FactSet, error) {
	slots := make([]types.FactSet, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxWorkers)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slots[i] = r.registry.ExtractFile(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.FactSet{}, err
	}

	var merged types.FactSet
	for i := range slots {
		merged.Append(slots[i])
	}
	return merged, nil
}
