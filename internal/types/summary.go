package types

// ProjectOverview is the top section of the generated architecture summary.
type ProjectOverview struct {
	Purpose           string   `json:"purpose"`
	ArchitectureStyle string   `json:"architecture_style"`
	TechStack         []string `json:"tech_stack"`
	EntryPoints       []string `json:"entry_points"`
}

// KeyFile names a notable file inside a subsystem and its role.
type KeyFile struct {
	File string `json:"file"`
	Role string `json:"role"`
}

// SubsystemLink describes a dependency between subsystems in prose.
type SubsystemLink struct {
	Subsystem string `json:"subsystem"`
	Reason    string `json:"reason,omitempty"`
	What      string `json:"what,omitempty"`
}

// Subsystem is one named group of modules in the summary.
type Subsystem struct {
	Name           string          `json:"name"`
	Purpose        string          `json:"purpose"`
	Technology     string          `json:"technology"`
	KeyFiles       []KeyFile       `json:"key_files"`
	Modules        []string        `json:"modules"`
	Responsibility string          `json:"responsibility"`
	Dependencies   []SubsystemLink `json:"dependencies"`
	ProvidesTo     []SubsystemLink `json:"provides_to"`
}

// ArchitectureSummary is the structured narrative produced by the summarizer
// or its deterministic fallback.
type ArchitectureSummary struct {
	ProjectOverview     ProjectOverview `json:"project_overview"`
	Subsystems          []Subsystem     `json:"subsystems"`
	DataFlow            string          `json:"data_flow"`
	OverallArchitecture string          `json:"overall_architecture"`
	Recommendations     []string        `json:"recommendations"`
}

// ValidationResult records the outcome of checking a summary against the
// dependency graph it claims to describe.
type ValidationResult struct {
	Valid        bool            `json:"valid"`
	Errors       []string        `json:"errors"`
	Warnings     []string        `json:"warnings"`
	Iteration    int             `json:"iteration"`
	ChecksPassed map[string]bool `json:"checks_passed"`
}

// AnalysisResult is everything one pipeline run produces.
type AnalysisResult struct {
	RepoPath   string               `json:"repo_path"`
	GitRef     string               `json:"git_ref"`
	Facts      FactSet              `json:"code_facts"`
	Graph      DependencyGraph      `json:"dependency_graph"`
	Patterns   PatternReport        `json:"architecture_patterns"`
	Summary    *ArchitectureSummary `json:"llm_summary,omitempty"`
	Validation *ValidationResult    `json:"validation_result,omitempty"`
	Mermaid    string               `json:"mermaid_diagram,omitempty"`
	Markdown   string               `json:"markdown_doc,omitempty"`
	Messages   []string             `json:"messages"`
	Errors     []string             `json:"errors"`
}
