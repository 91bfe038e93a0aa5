package dto

import "github.com/octobees/leads-generator/discovery/internal/entity"

// ListFilter contains query parameters for lead listing endpoints.
type ListFilter struct {
	Q         string
	Country   string
	Industry  string
	NoWebsite bool
	HasEmail  bool
	Sort      string
	Page      int
	PerPage   int
}

// LeadListResponse is one page of leads.
type LeadListResponse struct {
	Leads      []entity.Lead `json:"leads"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	TotalPages int           `json:"total_pages"`
}

// VerifyRequest is an ad-hoc lead checked against the stored collection.
type VerifyRequest struct {
	Name            string `json:"name"`
	Country         string `json:"country"`
	City            string `json:"city"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	HasWebsite      bool   `json:"has_website"`
	IsActive        bool   `json:"is_active"`
	ReviewCount     int    `json:"review_count"`
	DirectorySource string `json:"directory_source"`
}
