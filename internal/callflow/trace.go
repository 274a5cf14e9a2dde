// Package callflow answers "what does this method call" queries against the
// call edges produced by extraction. Tracing is pre-order and bounded by a
// caller-supplied depth; cycles are cut by remembering every method already
// expanded.
package callflow

import (
	"fmt"
	"sort"

	"cortex/internal/types"
)

const maxAvailableMethods = 100

// Trace walks the call edges starting at startMethod. A call edge matches
// the current method when its bare function name matches, or when its
// "Class.function" form matches. Recursion follows the bare callee name.
func Trace(startMethod string, calls []types.CallEdge, maxDepth int) types.CallFlow {
	flow := types.CallFlow{
		StartMethod:      startMethod,
		MaxDepth:         maxDepth,
		Calls:            []types.CallRecord{},
		AvailableMethods: []string{},
	}

	if len(calls) == 0 {
		flow.Message = "No function call data available. The codebase may not have been analyzed yet, or no function calls were detected."
		return flow
	}

	flow.AvailableMethods = availableMethods(calls)
	// trace returns nil on no match; keep the empty slice so the JSON field
	// stays [] rather than null.
	if recs := trace(startMethod, calls, maxDepth, 0, make(map[string]bool)); recs != nil {
		flow.Calls = recs
	}
	flow.TotalCalls = len(flow.Calls)

	if flow.TotalCalls > 0 {
		flow.Message = fmt.Sprintf("Found %d function calls in the call flow", flow.TotalCalls)
	} else {
		flow.Message = fmt.Sprintf("No calls found from '%s'. Method may not exist or doesn't call other functions.", startMethod)
	}
	return flow
}

func trace(method string, calls []types.CallEdge, maxDepth, depth int, visited map[string]bool) []types.CallRecord {
	if depth >= maxDepth || visited[method] {
		return nil
	}
	visited[method] = true

	var direct []types.CallRecord
	for _, c := range calls {
		if c.FromFunction == method || c.FromClass+"."+c.FromFunction == method {
			direct = append(direct, types.CallRecord{
				From:      c.FromFunction,
				FromClass: c.FromClass,
				To:        c.ToFunction,
				File:      c.File,
				Line:      c.Line,
				Depth:     depth,
			})
		}
	}

	all := direct
	for _, rec := range direct {
		all = append(all, trace(rec.To, calls, maxDepth, depth+1, visited)...)
	}
	return all
}

// availableMethods lists the distinct caller names, sorted and capped for
// UI dropdowns.
func availableMethods(calls []types.CallEdge) []string {
	set := make(map[string]bool)
	for _, c := range calls {
		if c.FromFunction != "" {
			set[c.FromFunction] = true
		}
	}
	methods := make([]string, 0, len(set))
	for m := range set {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	if len(methods) > maxAvailableMethods {
		methods = methods[:maxAvailableMethods]
	}
	return methods
}
