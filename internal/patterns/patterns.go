// Package patterns runs heuristic architecture-pattern detectors over the
// dependency graph. Detectors are independent: one failing never suppresses
// the others, it just contributes no pattern.
package patterns

import (
	"fmt"
	"strings"

	"cortex/internal/types"
)

// mvcKeywords is checked in this order so evidence lines are stable.
var mvcKeywords = []string{"controller", "model", "view", "template", "route"}

type detector func(g types.DependencyGraph) *types.PatternRecord

// Detect runs all detectors and assembles the report. Missing patterns are
// normal; the report always carries the cluster assignment from the graph.
func Detect(g types.DependencyGraph) types.PatternReport {
	detectors := []detector{detectLayered, detectMVC, detectMicroservices}

	found := make([]types.PatternRecord, 0, len(detectors))
	for _, d := range detectors {
		if p := runDetector(d, g); p != nil {
			found = append(found, *p)
		}
	}

	report := types.PatternReport{
		Patterns:      found,
		Clusters:      g.Clusters,
		TotalPatterns: len(found),
	}
	for _, p := range found {
		if p.Confidence > report.HighestConfidence {
			report.HighestConfidence = p.Confidence
		}
	}
	return report
}

// runDetector isolates a single detector; a panic inside it yields nil.
func runDetector(d detector, g types.DependencyGraph) (p *types.PatternRecord) {
	defer func() {
		if rec := recover(); rec != nil {
			p = nil
		}
	}()
	return d(g)
}

// detectLayered groups nodes by their second path segment and reports a
// layered architecture when at least two such groups exist. Top-level files
// without a folder do not form a layer.
func detectLayered(g types.DependencyGraph) *types.PatternRecord {
	var order []string
	groups := make(map[string][]string)
	for _, node := range g.Nodes {
		parts := strings.Split(node.ID, "/")
		if len(parts) < 2 {
			continue
		}
		layer := parts[1]
		if _, ok := groups[layer]; !ok {
			order = append(order, layer)
		}
		groups[layer] = append(groups[layer], node.ID)
	}
	if len(groups) < 2 {
		return nil
	}

	layers := make([]types.LayerGroup, 0, len(order))
	for _, name := range order {
		layers = append(layers, types.LayerGroup{
			Name:    capitalize(name),
			Modules: groups[name],
		})
	}
	return &types.PatternRecord{
		Type:       "Layered Architecture",
		Confidence: capConfidence(0.6+float64(len(groups))*0.1, 0.9),
		Evidence: []string{
			fmt.Sprintf("Found %d distinct layers: %s", len(groups), strings.Join(order, ", ")),
		},
		Layers: layers,
	}
}

// detectMVC matches node paths against role keywords and reports MVC when
// at least two distinct roles are present.
func detectMVC(g types.DependencyGraph) *types.PatternRecord {
	byKeyword := make(map[string][]string)
	for _, node := range g.Nodes {
		id := strings.ToLower(node.ID)
		for _, kw := range mvcKeywords {
			if strings.Contains(id, kw) {
				byKeyword[kw] = append(byKeyword[kw], node.ID)
			}
		}
	}
	if len(byKeyword) < 2 {
		return nil
	}

	evidence := make([]string, 0, len(byKeyword))
	components := make(map[string][]string, len(byKeyword))
	for _, kw := range mvcKeywords {
		files := byKeyword[kw]
		if len(files) == 0 {
			continue
		}
		evidence = append(evidence, fmt.Sprintf("Found %s: %d files", kw, len(files)))
		components[kw] = files
	}
	return &types.PatternRecord{
		Type:       "MVC Pattern",
		Confidence: capConfidence(0.5+float64(len(byKeyword))*0.15, 0.95),
		Evidence:   evidence,
		Components: components,
	}
}

// detectMicroservices treats three or more communities as evidence of
// service boundaries.
func detectMicroservices(g types.DependencyGraph) *types.PatternRecord {
	if len(g.Clusters) < 3 {
		return nil
	}
	return &types.PatternRecord{
		Type:       "Microservices Pattern",
		Confidence: capConfidence(0.5+float64(len(g.Clusters))*0.1, 0.85),
		Evidence: []string{
			fmt.Sprintf("Found %d distinct service boundaries", len(g.Clusters)),
			"Modular organization suggests service-oriented architecture",
		},
		Services: g.Clusters,
	}
}

func capConfidence(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
