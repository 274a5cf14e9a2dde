package summarize

import (
	"fmt"
	"strings"

	"cortex/internal/types"
)

const systemPrompt = `You are an expert software architect analyzing codebases.

Your task is to create a comprehensive, beginner-friendly architectural
analysis that a new team member can understand at a glance.

Requirements:
1. Identify all major subsystems/folders and their purpose
2. Explain what each subsystem does in simple terms
3. Describe how subsystems interact with each other
4. Specify the technology/language used in each subsystem
5. Highlight key files and their roles
6. Provide a clear data flow explanation
7. Identify entry points and core business logic

Respond ONLY with valid JSON in this exact format:
{
  "project_overview": {
    "purpose": "What does this project do? (1-2 sentences)",
    "architecture_style": "e.g., Microservices, Monolith, Layered, etc.",
    "tech_stack": ["Python", "JavaScript", "etc."],
    "entry_points": ["main.py", "index.js", "etc."]
  },
  "subsystems": [
    {
      "name": "Folder/Subsystem name",
      "purpose": "Clear explanation of what this subsystem does",
      "technology": "Language/framework used",
      "key_files": [{"file": "filename.py", "role": "What this file does"}],
      "modules": ["list", "of", "all", "modules"],
      "responsibility": "Detailed description",
      "dependencies": [{"subsystem": "Name", "reason": "Why it depends on this"}],
      "provides_to": [{"subsystem": "Name", "what": "What it provides"}]
    }
  ],
  "data_flow": "Step-by-step explanation of how data flows through the system",
  "overall_architecture": "Detailed architectural description for newcomers",
  "recommendations": ["list", "of", "suggestions"]
}

Do not include any text outside the JSON structure.`

const (
	promptMaxFolders   = 20
	promptMaxRelations = 15
)

// buildPrompt compresses the graph and pattern data into the user prompt.
// Folder and relationship lists are truncated to keep the request bounded.
func buildPrompt(graph types.DependencyGraph, report types.PatternReport, totalSymbols int, correction string) string {
	var folderLines []string
	for i, f := range graph.FolderStructure {
		if i >= promptMaxFolders {
			break
		}
		folderLines = append(folderLines, fmt.Sprintf("  - %s (%d files)", f.Path, f.FileCount))
	}
	folderSummary := strings.Join(folderLines, "\n")
	if folderSummary == "" {
		folderSummary = "  (flat structure)"
	}

	var relLines []string
	for i, rel := range graph.FolderRelations {
		if i >= promptMaxRelations {
			break
		}
		relLines = append(relLines, fmt.Sprintf("  - %s: %d dependencies", rel.FromTo, rel.Count))
	}
	relSummary := strings.Join(relLines, "\n")
	if relSummary == "" {
		relSummary = "  (no cross-folder dependencies detected)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this codebase architecture:\n\n")
	fmt.Fprintf(&b, "**Detected Patterns:** %d\n", report.TotalPatterns)
	for _, p := range report.Patterns {
		fmt.Fprintf(&b, "  - %s (confidence %.2f): %s\n", p.Type, p.Confidence, strings.Join(p.Evidence, "; "))
	}
	fmt.Fprintf(&b, "\n**Folder Structure (%d folders):**\n%s\n", graph.Metrics.TotalFolders, folderSummary)
	fmt.Fprintf(&b, "\n**Folder-Level Dependencies:**\n%s\n", relSummary)
	fmt.Fprintf(&b, "\n**Dependency Graph Metrics:**\n")
	fmt.Fprintf(&b, "- Total Files: %d\n", len(graph.Nodes))
	fmt.Fprintf(&b, "- Total Dependencies: %d\n", len(graph.Edges))
	fmt.Fprintf(&b, "- Intra-folder dependencies: %d\n", graph.Metrics.IntraFolderEdges)
	fmt.Fprintf(&b, "- Inter-folder dependencies: %d\n", graph.Metrics.InterFolderEdges)
	fmt.Fprintf(&b, "- Clusters detected: %d\n", len(graph.Clusters))
	fmt.Fprintf(&b, "\n**Code Symbols:** %d\n", totalSymbols)
	b.WriteString("\nIMPORTANT: Your subsystems should reflect the actual folder structure found in the codebase.\n")
	b.WriteString("Group modules by their folder paths and describe their relationships accurately based on the dependency data above.\n")
	if correction != "" {
		fmt.Fprintf(&b, "\nThe previous response failed validation. Fix these problems:\n%s\n", correction)
	}
	b.WriteString("\nProvide your architectural analysis in the specified JSON format.")
	return systemPrompt + "\n\n" + b.String()
}
