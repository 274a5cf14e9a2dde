// Package graph merges extracted facts into a directed file-dependency
// graph with folder metadata, centrality, metrics, and community clusters.
// Construction never fails: metric or clustering errors degrade to zeroed
// metrics or a single cluster, and the graph is always produced.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"cortex/internal/types"
)

// resolution candidates tried against every known file, in order.
var importCandidateSuffixes = []string{".py", ".js", ".ts", ".tsx", "/index.js", "/index.ts"}

// Build constructs the dependency graph for one run. The node set is the
// union of files owning a symbol or appearing as an import source; imports
// that cannot be resolved to a node are dropped silently.
func Build(facts types.FactSet) types.DependencyGraph {
	nodes := collectNodes(facts)
	if len(nodes) == 0 {
		return types.DependencyGraph{
			Nodes:           []types.GraphNode{},
			Edges:           []types.GraphEdge{},
			Clusters:        []types.Cluster{},
			FolderStructure: []types.FolderInfo{},
			FolderRelations: []types.FolderRelation{},
		}
	}

	folders := folderStructure(nodes)
	edges := resolveEdges(facts.Imports, nodes)

	g := types.DependencyGraph{
		Edges:           edges,
		Clusters:        buildClusters(nodes, edges),
		Metrics:         computeMetrics(nodes, edges, len(folders)),
		FolderStructure: folders,
		FolderRelations: folderRelations(edges),
	}
	g.Nodes = buildNodes(nodes, edges)
	return g
}

// collectNodes returns the sorted union of symbol owners and import sources.
func collectNodes(facts types.FactSet) []string {
	set := make(map[string]bool)
	for _, s := range facts.Symbols {
		if s.File != "" {
			set[normalizePath(s.File)] = true
		}
	}
	for _, imp := range facts.Imports {
		if imp.From != "" {
			set[normalizePath(imp.From)] = true
		}
	}
	nodes := make([]string, 0, len(set))
	for n := range set {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

func normalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func folderOf(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return types.RootFolder
}

func folderStructure(nodes []string) []types.FolderInfo {
	byFolder := make(map[string][]string)
	for _, n := range nodes {
		byFolder[folderOf(n)] = append(byFolder[folderOf(n)], n)
	}
	infos := make([]types.FolderInfo, 0, len(byFolder))
	for folder, files := range byFolder {
		sort.Strings(files)
		depth := 0
		if folder != types.RootFolder {
			depth = strings.Count(folder, "/") + 1
		}
		infos = append(infos, types.FolderInfo{
			Path:      folder,
			Files:     files,
			FileCount: len(files),
			Depth:     depth,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Depth != infos[j].Depth {
			return infos[i].Depth < infos[j].Depth
		}
		return infos[i].Path < infos[j].Path
	})
	return infos
}

// resolveImport maps a module string to a known node by suffix or substring
// match. Candidate files are tried in sorted order so the same module always
// resolves to the same node. Returns "" when nothing matches.
func resolveImport(module string, nodes []string) string {
	if module == "" {
		return ""
	}
	for _, file := range nodes {
		for _, suffix := range importCandidateSuffixes {
			if strings.HasSuffix(file, module+suffix) {
				return file
			}
		}
		if strings.Contains(file, module) {
			return file
		}
	}
	return ""
}

// resolveEdges resolves imports against the node set, drops self-edges,
// merges duplicates per ordered pair, and classifies folder relationships.
func resolveEdges(imports []types.ImportEdge, nodes []string) []types.GraphEdge {
	type pair struct{ source, target string }
	weights := make(map[pair]int)

	for _, imp := range imports {
		source := normalizePath(imp.From)
		target := resolveImport(imp.Module, nodes)
		if target == "" || target == source {
			continue
		}
		weights[pair{source, target}]++
	}

	edges := make([]types.GraphEdge, 0, len(weights))
	for p, w := range weights {
		rel := types.RelInterFolder
		if folderOf(p.source) == folderOf(p.target) {
			rel = types.RelIntraFolder
		}
		edges = append(edges, types.GraphEdge{
			Source:       p.source,
			Target:       p.target,
			Type:         "import",
			Weight:       w,
			Relationship: rel,
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}

func buildNodes(nodes []string, edges []types.GraphEdge) []types.GraphNode {
	in := make(map[string]int)
	out := make(map[string]int)
	for _, e := range edges {
		out[e.Source]++
		in[e.Target]++
	}

	centrality := degreeCentrality(nodes, in, out)

	result := make([]types.GraphNode, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, types.GraphNode{
			ID:         n,
			Type:       "module",
			Folder:     folderOf(n),
			Centrality: centrality[n],
			InDegree:   in[n],
			OutDegree:  out[n],
		})
	}
	return result
}

// degreeCentrality is total degree normalized by n-1. A single-node graph
// scores 1; an empty graph has no scores.
func degreeCentrality(nodes []string, in, out map[string]int) map[string]float64 {
	c := make(map[string]float64, len(nodes))
	if len(nodes) == 0 {
		return c
	}
	if len(nodes) == 1 {
		c[nodes[0]] = 1
		return c
	}
	norm := float64(len(nodes) - 1)
	for _, n := range nodes {
		c[n] = float64(in[n]+out[n]) / norm
	}
	return c
}

// computeMetrics derives run-level graph statistics. Any internal failure
// degrades to zeroed metrics rather than aborting the build.
func computeMetrics(nodes []string, edges []types.GraphEdge, folderCount int) (m types.GraphMetrics) {
	defer func() {
		if rec := recover(); rec != nil {
			m = types.GraphMetrics{}
		}
	}()

	m.TotalNodes = len(nodes)
	m.TotalEdges = len(edges)
	m.TotalFolders = folderCount
	for _, e := range edges {
		if e.Relationship == types.RelIntraFolder {
			m.IntraFolderEdges++
		} else {
			m.InterFolderEdges++
		}
	}
	n := len(nodes)
	if n > 0 {
		m.AvgDegree = float64(2*len(edges)) / float64(n)
	}
	if n >= 2 {
		m.Density = float64(len(edges)) / float64(n*(n-1))
	}
	return m
}

func folderRelations(edges []types.GraphEdge) []types.FolderRelation {
	counts := make(map[string]int)
	for _, e := range edges {
		from, to := folderOf(e.Source), folderOf(e.Target)
		if from == to {
			continue
		}
		counts[fmt.Sprintf("%s -> %s", from, to)]++
	}
	rels := make([]types.FolderRelation, 0, len(counts))
	for k, v := range counts {
		rels = append(rels, types.FolderRelation{FromTo: k, Count: v})
	}
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].Count != rels[j].Count {
			return rels[i].Count > rels[j].Count
		}
		return rels[i].FromTo < rels[j].FromTo
	})
	return rels
}
