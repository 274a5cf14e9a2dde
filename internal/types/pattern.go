package types

// Architecture patterns ----------------------------------------------------------

type LayerGroup struct {
	Name    string   `json:"name"`
	Modules []string `json:"modules"`
}

// PatternRecord is one detected architecture style with a bounded heuristic
// confidence. Exactly one of the payload fields is set, matching Type.
type PatternRecord struct {
	Type       string              `json:"type"`
	Confidence float64             `json:"confidence"`
	Evidence   []string            `json:"evidence"`
	Layers     []LayerGroup        `json:"layers,omitempty"`
	Components map[string][]string `json:"components,omitempty"`
	Services   []Cluster           `json:"services,omitempty"`
}

type PatternReport struct {
	Patterns          []PatternRecord `json:"detected_patterns"`
	Clusters          []Cluster       `json:"clusters"`
	TotalPatterns     int             `json:"total_patterns"`
	HighestConfidence float64         `json:"highest_confidence"`
}
