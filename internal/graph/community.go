package graph

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"cortex/internal/types"
)

// buildClusters groups nodes into communities by greedy modularity
// maximization over the undirected projection of the import graph. The
// random source is fixed so repeated runs produce the same clustering.
// If the detection fails for any reason, all nodes land in one cluster.
func buildClusters(nodes []string, edges []types.GraphEdge) (clusters []types.Cluster) {
	defer func() {
		if rec := recover(); rec != nil {
			clusters = singleCluster(nodes)
		}
	}()

	if len(edges) == 0 {
		return singleCluster(nodes)
	}

	idOf := make(map[string]int64, len(nodes))
	for i, n := range nodes {
		idOf[n] = int64(i)
	}

	ug := simple.NewWeightedUndirectedGraph(0, 0)
	for _, n := range nodes {
		ug.AddNode(simple.Node(idOf[n]))
	}
	for _, e := range edges {
		f, t := idOf[e.Source], idOf[e.Target]
		w := float64(e.Weight)
		if existing := ug.WeightedEdge(f, t); existing != nil {
			w += existing.Weight()
		}
		ug.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(f), T: simple.Node(t), W: w})
	}

	reduced := community.Modularize(ug, 1, rand.NewPCG(1, 2))

	groups := reduced.Communities()
	members := make([][]string, 0, len(groups))
	for _, group := range groups {
		modules := make([]string, 0, len(group))
		for _, node := range group {
			modules = append(modules, nodes[node.ID()])
		}
		sort.Strings(modules)
		members = append(members, modules)
	}
	sort.Slice(members, func(i, j int) bool { return members[i][0] < members[j][0] })

	clusters = make([]types.Cluster, 0, len(members))
	for i, modules := range members {
		clusters = append(clusters, types.Cluster{
			ID:      fmt.Sprintf("cluster_%d", i),
			Modules: modules,
		})
	}
	return clusters
}

func singleCluster(nodes []string) []types.Cluster {
	modules := make([]string, len(nodes))
	copy(modules, nodes)
	sort.Strings(modules)
	return []types.Cluster{{ID: "cluster_0", Modules: modules}}
}
