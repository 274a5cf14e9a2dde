package types

// Call-flow tracing --------------------------------------------------------------

// CallRecord is one step of a traced call flow.
type CallRecord struct {
	From      string `json:"from"`
	FromClass string `json:"from_class,omitempty"`
	To        string `json:"to"`
	File      string `json:"file"`
	Line      int    `json:"line"`
	Depth     int    `json:"depth"`
}

// CallFlow is the serializable result of one trace request.
type CallFlow struct {
	StartMethod      string       `json:"start_method"`
	MaxDepth         int          `json:"max_depth"`
	Calls            []CallRecord `json:"calls"`
	TotalCalls       int          `json:"total_calls"`
	AvailableMethods []string     `json:"available_methods"`
	Message          string       `json:"message"`
}
