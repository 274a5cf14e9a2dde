// Package render produces the human-facing outputs of an analysis run:
// a Mermaid dependency diagram and a Markdown report.
package render

import (
	"fmt"
	"sort"
	"strings"

	"cortex/internal/types"
)

const (
	maxSubgraphs        = 8
	maxFilesPerSubgraph = 15
	maxFallbackNodes    = 30
	maxDiagramEdges     = 60
)

// Mermaid renders the dependency graph as a top-to-bottom flowchart. Files
// are grouped into subgraphs by summary subsystem when one is available,
// otherwise the highest-centrality files are shown flat.
func Mermaid(res *types.AnalysisResult) string {
	lines := []string{"graph TB"}

	nodeIDs := make(map[string]string)
	counter := 0
	nextID := func(prefix string) string {
		id := fmt.Sprintf("%s%d", prefix, counter)
		counter++
		return id
	}

	symbolsByFile := make(map[string][]types.Symbol)
	for _, s := range res.Facts.Symbols {
		symbolsByFile[s.File] = append(symbolsByFile[s.File], s)
	}

	addFileNode := func(path, indent string) {
		id := nextID("F")
		nodeIDs[path] = id
		label := nodeLabel(path, symbolsByFile[path])
		lines = append(lines, fmt.Sprintf(`%s%s["%s"]%s`, indent, id, label, nodeStyle(path)))
	}

	var subsystems []types.Subsystem
	if res.Summary != nil {
		subsystems = res.Summary.Subsystems
	}

	if len(subsystems) > 0 {
		for i, sub := range subsystems {
			if i >= maxSubgraphs {
				break
			}
			modules := sub.Modules
			if len(modules) > maxFilesPerSubgraph {
				modules = modules[:maxFilesPerSubgraph]
			}
			if len(modules) == 0 {
				continue
			}
			subID := nextID("sub_")
			lines = append(lines, fmt.Sprintf(`    subgraph %s["%s"]`, subID, escapeQuotes(sub.Name)))
			for _, path := range modules {
				if path == "" {
					continue
				}
				addFileNode(path, "        ")
			}
			lines = append(lines, "    end")
		}
	} else {
		for _, path := range topNodesByCentrality(res.Graph.Nodes) {
			addFileNode(path, "    ")
		}
	}

	if len(nodeIDs) == 0 {
		lines = append(lines, `    NO_DATA["No files to display<br/><small>Analysis may have failed</small>"]:::utilStyle`)
	}

	lines = append(lines, edgeLines(res.Graph.Edges, nodeIDs)...)

	lines = append(lines, "",
		"    classDef testStyle fill:#ffebee,stroke:#c62828,stroke-width:2px",
		"    classDef modelStyle fill:#e3f2fd,stroke:#1565c0,stroke-width:2px",
		"    classDef controllerStyle fill:#f3e5f5,stroke:#6a1b9a,stroke-width:2px",
		"    classDef serviceStyle fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px",
		"    classDef utilStyle fill:#fff3e0,stroke:#ef6c00,stroke-width:2px",
		"    classDef configStyle fill:#fce4ec,stroke:#c2185b,stroke-width:2px",
		"    classDef entryStyle fill:#e0f2f1,stroke:#00695c,stroke-width:3px",
	)
	return strings.Join(lines, "\n")
}

// nodeLabel is the file name plus up to three of its symbols.
func nodeLabel(path string, symbols []types.Symbol) string {
	name := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		name = path[i+1:]
	}
	if len(symbols) == 0 {
		return escapeQuotes(name)
	}

	top := symbols
	if len(top) > 3 {
		top = top[:3]
	}
	parts := make([]string, 0, len(top))
	for _, s := range top {
		if s.Kind == types.SymbolFunction {
			parts = append(parts, s.Name+"()")
		} else {
			parts = append(parts, s.Name)
		}
	}
	text := strings.Join(parts, ", ")
	if extra := len(symbols) - 3; extra > 0 {
		text += fmt.Sprintf(" +%d more", extra)
	}
	return escapeQuotes(fmt.Sprintf("%s<br/><small>%s</small>", name, text))
}

// nodeStyle picks a style class from keywords in the file path. The first
// matching role wins, tests before everything else.
func nodeStyle(path string) string {
	p := strings.ToLower(path)
	switch {
	case strings.Contains(p, "test") || strings.Contains(p, "spec"):
		return ":::testStyle"
	case strings.Contains(p, "model") || strings.Contains(p, "schema") || strings.Contains(p, "entity"):
		return ":::modelStyle"
	case strings.Contains(p, "controller") || strings.Contains(p, "route") || strings.Contains(p, "handler"):
		return ":::controllerStyle"
	case strings.Contains(p, "service") || strings.Contains(p, "business"):
		return ":::serviceStyle"
	case strings.Contains(p, "util") || strings.Contains(p, "helper") || strings.Contains(p, "common"):
		return ":::utilStyle"
	case strings.Contains(p, "config") || strings.Contains(p, "setting"):
		return ":::configStyle"
	case strings.Contains(p, "main") || strings.Contains(p, "index") || strings.Contains(p, "app"):
		return ":::entryStyle"
	}
	return ""
}

// topNodesByCentrality ranks nodes by weighted in-degree for the flat view.
func topNodesByCentrality(nodes []types.GraphNode) []string {
	ranked := make([]types.GraphNode, len(nodes))
	copy(ranked, nodes)
	sort.SliceStable(ranked, func(i, j int) bool {
		si := ranked[i].Centrality*float64(ranked[i].InDegree) + float64(ranked[i].InDegree)
		sj := ranked[j].Centrality*float64(ranked[j].InDegree) + float64(ranked[j].InDegree)
		return si > sj
	})
	if len(ranked) > maxFallbackNodes {
		ranked = ranked[:maxFallbackNodes]
	}
	paths := make([]string, 0, len(ranked))
	for _, n := range ranked {
		if n.ID != "" {
			paths = append(paths, n.ID)
		}
	}
	return paths
}

// edgeLines renders edges between nodes present in the diagram, capped for
// readability. Arrow shape encodes the relationship and weight.
func edgeLines(edges []types.GraphEdge, nodeIDs map[string]string) []string {
	var lines []string
	type pair struct{ s, t string }
	added := make(map[pair]bool)

	for _, e := range edges {
		if len(lines) >= maxDiagramEdges {
			break
		}
		src, okSrc := nodeIDs[e.Source]
		dst, okDst := nodeIDs[e.Target]
		if !okSrc || !okDst || added[pair{src, dst}] {
			continue
		}

		arrow := "-->"
		if e.Relationship == types.RelIntraFolder && e.Weight > 3 {
			arrow = "==>"
		} else if e.Relationship == types.RelInterFolder {
			arrow = "-.->"
		}

		if e.Weight > 5 {
			lines = append(lines, fmt.Sprintf("    %s %s|%d| %s", src, arrow, e.Weight, dst))
		} else {
			lines = append(lines, fmt.Sprintf("    %s %s %s", src, arrow, dst))
		}
		added[pair{src, dst}] = true
	}
	return lines
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
