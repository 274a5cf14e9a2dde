package types

// Dependency graph ---------------------------------------------------------------

const RootFolder = "."

type GraphNode struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Folder     string  `json:"folder"`
	Centrality float64 `json:"centrality"`
	InDegree   int     `json:"in_degree"`
	OutDegree  int     `json:"out_degree"`
}

const (
	RelIntraFolder = "intra_folder"
	RelInterFolder = "inter_folder"
)

type GraphEdge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	Type         string `json:"type"`
	Weight       int    `json:"weight"`
	Relationship string `json:"relationship"`
}

type Cluster struct {
	ID      string   `json:"id"`
	Modules []string `json:"modules"`
}

type GraphMetrics struct {
	TotalNodes       int     `json:"total_nodes"`
	TotalEdges       int     `json:"total_edges"`
	AvgDegree        float64 `json:"avg_degree"`
	Density          float64 `json:"density"`
	IntraFolderEdges int     `json:"intra_folder_edges"`
	InterFolderEdges int     `json:"inter_folder_edges"`
	TotalFolders     int     `json:"total_folders"`
}

type FolderInfo struct {
	Path      string   `json:"path"`
	Files     []string `json:"files"`
	FileCount int      `json:"file_count"`
	Depth     int      `json:"depth"`
}

// FolderRelation aggregates inter-folder edge counts ("src/a -> src/b").
type FolderRelation struct {
	FromTo string `json:"from_to"`
	Count  int    `json:"count"`
}

type DependencyGraph struct {
	Nodes           []GraphNode      `json:"nodes"`
	Edges           []GraphEdge      `json:"edges"`
	Clusters        []Cluster        `json:"clusters"`
	Metrics         GraphMetrics     `json:"metrics"`
	FolderStructure []FolderInfo     `json:"folder_structure"`
	FolderRelations []FolderRelation `json:"folder_relationships"`
}
