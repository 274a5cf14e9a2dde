package summarize

import (
	"fmt"
	"sort"
	"strings"

	"cortex/internal/types"
)

// Validate checks a summary against the graph it describes. Errors make the
// result invalid and are worth a regeneration attempt; warnings only lower
// the quality check.
func Validate(summary *types.ArchitectureSummary, graph types.DependencyGraph, iteration int) types.ValidationResult {
	var errs, warnings []string

	// Referential integrity: every graph node should appear in some subsystem.
	covered := make(map[string]bool)
	for _, sub := range summary.Subsystems {
		for _, m := range sub.Modules {
			covered[m] = true
		}
	}
	var missing []string
	for _, node := range graph.Nodes {
		if !covered[node.ID] {
			missing = append(missing, node.ID)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		warnings = append(warnings, fmt.Sprintf("Modules in graph but not in summary: %s", strings.Join(missing, ", ")))
	}

	if len(summary.Subsystems) == 0 {
		errs = append(errs, "Missing required field: subsystems")
	}
	if summary.OverallArchitecture == "" {
		errs = append(errs, "Missing required field: overall_architecture")
	}
	if len(summary.Recommendations) == 0 {
		errs = append(errs, "Missing required field: recommendations")
	}

	for i, sub := range summary.Subsystems {
		if sub.Name == "" {
			errs = append(errs, fmt.Sprintf("Subsystem %d missing 'name' field", i))
		}
		if sub.Responsibility == "" {
			warnings = append(warnings, fmt.Sprintf("Subsystem %d (%s) missing responsibility", i, subsystemName(sub)))
		}
	}

	if n := len(summary.Subsystems); n > 20 {
		warnings = append(warnings, fmt.Sprintf("Large diagram: %d subsystems may be hard to visualize", n))
	}
	if len(summary.OverallArchitecture) < 50 {
		warnings = append(warnings, "Overall architecture description is very brief")
	}

	return types.ValidationResult{
		Valid:     len(errs) == 0,
		Errors:    errs,
		Warnings:  warnings,
		Iteration: iteration,
		ChecksPassed: map[string]bool{
			"referential_integrity": len(missing) == 0,
			"schema_complete":       len(errs) == 0,
			"quality_sufficient":    len(warnings) < 3,
		},
	}
}

func subsystemName(sub types.Subsystem) string {
	if sub.Name == "" {
		return "unknown"
	}
	return sub.Name
}
