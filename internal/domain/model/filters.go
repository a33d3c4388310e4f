package model

import "strings"

// SearchFilters is the structured lead-search request captured at submission
// time. Field names mirror the executor's input schema; FileName is internal
// only and never forwarded. A filters snapshot is immutable once a search has
// been created.
type SearchFilters struct {
	FetchCount int    `json:"fetch_count,omitempty"`
	FileName   string `json:"file_name,omitempty"`

	ContactJobTitle    []string `json:"contact_job_title,omitempty"`
	ContactNotJobTitle []string `json:"contact_not_job_title,omitempty"`
	SeniorityLevel     []string `json:"seniority_level,omitempty"`
	FunctionalLevel    []string `json:"functional_level,omitempty"`

	ContactLocation    []string `json:"contact_location,omitempty"`
	ContactCity        []string `json:"contact_city,omitempty"`
	ContactNotLocation []string `json:"contact_not_location,omitempty"`
	ContactNotCity     []string `json:"contact_not_city,omitempty"`

	EmailStatus []string `json:"email_status,omitempty"`

	CompanyDomain      []string `json:"company_domain,omitempty"`
	Size               []string `json:"size,omitempty"`
	CompanyIndustry    []string `json:"company_industry,omitempty"`
	CompanyNotIndustry []string `json:"company_not_industry,omitempty"`
	CompanyKeywords    []string `json:"company_keywords,omitempty"`
	CompanyNotKeywords []string `json:"company_not_keywords,omitempty"`

	MinRevenue string   `json:"min_revenue,omitempty"`
	MaxRevenue string   `json:"max_revenue,omitempty"`
	Funding    []string `json:"funding,omitempty"`
}

// HasCriteria reports whether at least one actionable criterion is set.
// FileName and FetchCount are bookkeeping, not criteria.
func (f *SearchFilters) HasCriteria() bool {
	if f == nil {
		return false
	}

	lists := [][]string{
		f.ContactJobTitle, f.ContactNotJobTitle,
		f.SeniorityLevel, f.FunctionalLevel,
		f.ContactLocation, f.ContactCity,
		f.ContactNotLocation, f.ContactNotCity,
		f.EmailStatus,
		f.CompanyDomain, f.Size,
		f.CompanyIndustry, f.CompanyNotIndustry,
		f.CompanyKeywords, f.CompanyNotKeywords,
		f.Funding,
	}
	for _, l := range lists {
		if len(l) > 0 {
			return true
		}
	}

	return strings.TrimSpace(f.MinRevenue) != "" || strings.TrimSpace(f.MaxRevenue) != ""
}
