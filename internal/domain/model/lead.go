package model

import "time"

// Lead is a single enriched contact row produced by a search.
//
// Pointer fields are nullable in storage. Dataset fields outside this shape
// are discarded at projection time.
type Lead struct {
	ID       string `json:"id"        db:"id"`
	SearchID string `json:"search_id" db:"search_id"`

	FirstName       *string `json:"first_name,omitempty"       db:"first_name"`
	LastName        *string `json:"last_name,omitempty"        db:"last_name"`
	FullName        *string `json:"full_name,omitempty"        db:"full_name"`
	JobTitle        *string `json:"job_title,omitempty"        db:"job_title"`
	Headline        *string `json:"headline,omitempty"         db:"headline"`
	FunctionalLevel *string `json:"functional_level,omitempty" db:"functional_level"`
	SeniorityLevel  *string `json:"seniority_level,omitempty"  db:"seniority_level"`
	Email           *string `json:"email,omitempty"            db:"email"`
	MobileNumber    *string `json:"mobile_number,omitempty"    db:"mobile_number"`
	PersonalEmail   *string `json:"personal_email,omitempty"   db:"personal_email"`
	Linkedin        *string `json:"linkedin,omitempty"         db:"linkedin"`
	City            *string `json:"city,omitempty"             db:"city"`
	State           *string `json:"state,omitempty"            db:"state"`
	Country         *string `json:"country,omitempty"          db:"country"`

	CompanyName               *string  `json:"company_name,omitempty"                 db:"company_name"`
	CompanyDomain             *string  `json:"company_domain,omitempty"               db:"company_domain"`
	CompanyWebsite            *string  `json:"company_website,omitempty"              db:"company_website"`
	CompanyLinkedin           *string  `json:"company_linkedin,omitempty"             db:"company_linkedin"`
	CompanyLinkedinUID        *string  `json:"company_linkedin_uid,omitempty"         db:"company_linkedin_uid"`
	CompanySize               *string  `json:"company_size,omitempty"                 db:"company_size"`
	Industry                  *string  `json:"industry,omitempty"                     db:"industry"`
	CompanyDescription        *string  `json:"company_description,omitempty"          db:"company_description"`
	CompanyAnnualRevenue      *string  `json:"company_annual_revenue,omitempty"       db:"company_annual_revenue"`
	CompanyAnnualRevenueClean *float64 `json:"company_annual_revenue_clean,omitempty" db:"company_annual_revenue_clean"`
	CompanyTotalFunding       *string  `json:"company_total_funding,omitempty"        db:"company_total_funding"`
	CompanyTotalFundingClean  *float64 `json:"company_total_funding_clean,omitempty"  db:"company_total_funding_clean"`
	CompanyFoundedYear        *int     `json:"company_founded_year,omitempty"         db:"company_founded_year"`
	CompanyPhone              *string  `json:"company_phone,omitempty"                db:"company_phone"`
	CompanyStreetAddress      *string  `json:"company_street_address,omitempty"       db:"company_street_address"`
	CompanyCity               *string  `json:"company_city,omitempty"                 db:"company_city"`
	CompanyState              *string  `json:"company_state,omitempty"                db:"company_state"`
	CompanyCountry            *string  `json:"company_country,omitempty"              db:"company_country"`
	CompanyPostalCode         *string  `json:"company_postal_code,omitempty"          db:"company_postal_code"`
	CompanyFullAddress        *string  `json:"company_full_address,omitempty"         db:"company_full_address"`
	CompanyMarketCap          *string  `json:"company_market_cap,omitempty"           db:"company_market_cap"`

	Keywords            []string `json:"keywords,omitempty"             db:"keywords"`
	CompanyTechnologies []string `json:"company_technologies,omitempty" db:"company_technologies"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LeadPage is one page of leads plus the total match count for the query.
type LeadPage struct {
	Leads []Lead `json:"data"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// DefaultLeadPageSize is the page size used when the caller does not supply one.
const DefaultLeadPageSize = 25

// MaxLeadPageSize caps the page size a caller may request.
const MaxLeadPageSize = 100

// LeadListOptions controls filtering, sorting and pagination of lead listings.
type LeadListOptions struct {
	SearchID  string
	Query     string
	Sort      string
	Ascending bool
	Page      int
	Limit     int
}

// leadSortColumns is the allow-list of columns a caller may sort by.
var leadSortColumns = map[string]struct{}{
	"created_at":      {},
	"full_name":       {},
	"email":           {},
	"job_title":       {},
	"company_name":    {},
	"seniority_level": {},
	"country":         {},
}

// Normalize clamps pagination values and rejects unknown sort columns.
func (o *LeadListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLeadPageSize
	}
	if o.Limit > MaxLeadPageSize {
		o.Limit = MaxLeadPageSize
	}
	if _, ok := leadSortColumns[o.Sort]; !ok {
		o.Sort = "created_at"
	}
}

// Offset returns the row offset implied by Page and Limit.
func (o *LeadListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}
