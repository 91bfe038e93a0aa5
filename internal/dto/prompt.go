package dto

// PromptSearchRequest represents a free-form discovery prompt such as
// "salons in Kumasi".
type PromptSearchRequest struct {
	Prompt  string `json:"prompt"`
	Country string `json:"country,omitempty"`
}

// PromptSearchResponse echoes the interpreted parameters with the run summary.
type PromptSearchResponse struct {
	Prompt   string           `json:"prompt"`
	Country  string           `json:"country"`
	Industry string           `json:"industry"`
	City     string           `json:"city"`
	Result   DiscoverResponse `json:"result"`
}
