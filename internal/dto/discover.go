package dto

// DiscoverRequest starts a discovery run.
type DiscoverRequest struct {
	Country  string `json:"country"`
	Industry string `json:"industry"`
	City     string `json:"city"`
}

// DiscoverResponse summarises a finished run.
type DiscoverResponse struct {
	Outcome           string         `json:"outcome"`
	Added             int            `json:"added"`
	SkippedDuplicates int            `json:"skipped_duplicates"`
	FoundBySource     map[string]int `json:"found_by_source"`
	Messages          []string       `json:"messages"`
	Transitions       []string       `json:"transitions"`
	Cancelled         bool           `json:"cancelled,omitempty"`
}
