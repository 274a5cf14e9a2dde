package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cortex/internal/types"
)

// Markdown renders the full analysis report. Sections with no data are
// omitted so small repositories get small reports.
func Markdown(res *types.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Architecture Analysis: %s\n\n", res.RepoPath)
	fmt.Fprintf(&b, "**Repository:** `%s`\n", res.RepoPath)
	fmt.Fprintf(&b, "**Git Ref:** `%s`\n", gitRefOrHead(res.GitRef))
	fmt.Fprintf(&b, "**Analysis Date:** %s\n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(&b, "**Validation Status:** %s\n\n---\n", validationStatus(res.Validation))

	if res.Summary != nil {
		writeOverview(&b, res.Summary.ProjectOverview)
	}

	writeStatistics(&b, res)
	writeDiagram(&b, res.Mermaid)

	if res.Summary != nil && res.Summary.DataFlow != "" {
		fmt.Fprintf(&b, "\n## Data Flow\n\n%s\n", res.Summary.DataFlow)
	}

	writeFolders(&b, res.Graph)
	writePatterns(&b, res.Patterns)

	if res.Summary != nil {
		writeSubsystems(&b, res.Summary.Subsystems)
		if res.Summary.OverallArchitecture != "" {
			fmt.Fprintf(&b, "\n## Overall Architecture\n\n%s\n", res.Summary.OverallArchitecture)
		}
		if len(res.Summary.Recommendations) > 0 {
			b.WriteString("\n## Recommendations\n\n")
			for _, r := range res.Summary.Recommendations {
				fmt.Fprintf(&b, "- %s\n", r)
			}
		}
	}

	return b.String()
}

func gitRefOrHead(ref string) string {
	if ref == "" {
		return "HEAD"
	}
	return ref
}

func validationStatus(v *types.ValidationResult) string {
	if v != nil && v.Valid {
		return "Passed"
	}
	return "Failed"
}

func writeOverview(b *strings.Builder, o types.ProjectOverview) {
	b.WriteString("## Project Overview\n\n")
	fmt.Fprintf(b, "**Purpose:** %s\n\n", valueOrNA(o.Purpose))
	fmt.Fprintf(b, "**Architecture Style:** %s\n", valueOrNA(o.ArchitectureStyle))
	if len(o.TechStack) > 0 {
		fmt.Fprintf(b, "\n**Tech Stack:** %s\n", strings.Join(o.TechStack, ", "))
	}
	if len(o.EntryPoints) > 0 {
		b.WriteString("\n**Entry Points:**\n")
		for _, e := range o.EntryPoints {
			fmt.Fprintf(b, "- `%s`\n", e)
		}
	}
	b.WriteString("\n---\n")
}

func writeStatistics(b *strings.Builder, res *types.AnalysisResult) {
	b.WriteString("\n## Codebase Statistics\n\n")
	fmt.Fprintf(b, "- Total Files: %d\n", len(res.Graph.Nodes))
	fmt.Fprintf(b, "- Total Folders: %d\n", res.Graph.Metrics.TotalFolders)
	fmt.Fprintf(b, "- Total Dependencies: %d\n", len(res.Graph.Edges))

	byExt := make(map[string]int)
	for _, s := range res.Facts.Symbols {
		if i := strings.LastIndex(s.File, "."); i >= 0 {
			byExt[s.File[i+1:]]++
		}
	}
	if len(byExt) > 0 {
		type langCount struct {
			ext string
			n   int
		}
		counts := make([]langCount, 0, len(byExt))
		for ext, n := range byExt {
			counts = append(counts, langCount{ext, n})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].n != counts[j].n {
				return counts[i].n > counts[j].n
			}
			return counts[i].ext < counts[j].ext
		})
		if len(counts) > 5 {
			counts = counts[:5]
		}
		b.WriteString("\n**Languages Used:**\n")
		for _, c := range counts {
			fmt.Fprintf(b, "- %s: %d symbols\n", strings.ToUpper(c.ext), c.n)
		}
	}
}

func writeDiagram(b *strings.Builder, mermaid string) {
	if mermaid == "" {
		return
	}
	b.WriteString("\n---\n\n## Architecture Diagram\n\n")
	b.WriteString("**Legend:**\n")
	b.WriteString("- Teal: entry points, Blue: models/data, Purple: controllers/routes\n")
	b.WriteString("- Green: services, Orange: utilities, Pink: tests, Rose: configuration\n")
	b.WriteString("- `-->` direct dependency, `==>` strong dependency, `-.->` cross-folder dependency\n")
	b.WriteString("\n```mermaid\n")
	b.WriteString(mermaid)
	b.WriteString("\n```\n")
}

func writeFolders(b *strings.Builder, g types.DependencyGraph) {
	b.WriteString("\n## Folder Structure\n\n")
	fmt.Fprintf(b, "**Total Folders:** %d\n", g.Metrics.TotalFolders)
	fmt.Fprintf(b, "**Intra-folder Dependencies:** %d\n", g.Metrics.IntraFolderEdges)
	fmt.Fprintf(b, "**Inter-folder Dependencies:** %d\n", g.Metrics.InterFolderEdges)

	if len(g.FolderStructure) > 0 {
		b.WriteString("\n**Key Folders:**\n")
		for i, f := range g.FolderStructure {
			if i >= 10 {
				break
			}
			fmt.Fprintf(b, "- `%s/` (%d files)\n", f.Path, f.FileCount)
		}
	}
	if len(g.FolderRelations) > 0 {
		b.WriteString("\n**Folder Dependencies:**\n")
		for i, rel := range g.FolderRelations {
			if i >= 10 {
				break
			}
			fmt.Fprintf(b, "- %s (%d imports)\n", rel.FromTo, rel.Count)
		}
	}
}

func writePatterns(b *strings.Builder, report types.PatternReport) {
	b.WriteString("\n## Detected Patterns\n")
	for _, p := range report.Patterns {
		fmt.Fprintf(b, "\n### %s (Confidence: %.0f%%)\n\n**Evidence:**\n", p.Type, p.Confidence*100)
		for _, e := range p.Evidence {
			fmt.Fprintf(b, "- %s\n", e)
		}
	}
	if len(report.Patterns) == 0 {
		b.WriteString("\nNo common architecture patterns detected.\n")
	}
}

func writeSubsystems(b *strings.Builder, subsystems []types.Subsystem) {
	if len(subsystems) == 0 {
		return
	}
	b.WriteString("\n## Subsystems\n")
	for i, sub := range subsystems {
		fmt.Fprintf(b, "\n### %d. %s\n\n", i+1, sub.Name)
		purpose := sub.Purpose
		if purpose == "" {
			purpose = sub.Responsibility
		}
		fmt.Fprintf(b, "**Purpose:** %s\n\n", valueOrNA(purpose))
		fmt.Fprintf(b, "**Technology:** %s\n", valueOrNA(sub.Technology))

		if len(sub.KeyFiles) > 0 {
			b.WriteString("\n**Key Files:**\n")
			for _, kf := range sub.KeyFiles {
				fmt.Fprintf(b, "- `%s` - %s\n", kf.File, valueOrNA(kf.Role))
			}
		}
		if len(sub.Dependencies) > 0 {
			b.WriteString("\n**Dependencies (uses):**\n")
			for _, d := range sub.Dependencies {
				fmt.Fprintf(b, "- **%s**: %s\n", d.Subsystem, valueOrNA(d.Reason))
			}
		}
		if len(sub.ProvidesTo) > 0 {
			b.WriteString("\n**Provides To:**\n")
			for _, p := range sub.ProvidesTo {
				fmt.Fprintf(b, "- **%s**: %s\n", p.Subsystem, valueOrNA(p.What))
			}
		}
		if len(sub.Modules) > 0 {
			fmt.Fprintf(b, "\n**Modules:** %d files\n", len(sub.Modules))
		}
	}
}

func valueOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
