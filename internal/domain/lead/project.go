package lead

import (
	"strconv"
	"strings"

	"github.com/alphaleads/leadsearch/internal/domain/model"
)

// Project maps one raw dataset item onto a Lead row for the given search.
// Unparseable or empty values become nil columns rather than errors; fields
// outside the Lead shape are discarded.
func Project(searchID string, item map[string]any) model.Lead {
	return model.Lead{
		SearchID: searchID,

		FirstName:       toStr(item["first_name"]),
		LastName:        toStr(item["last_name"]),
		FullName:        toStr(item["full_name"]),
		JobTitle:        toStr(item["job_title"]),
		Headline:        toStr(item["headline"]),
		FunctionalLevel: toStr(item["functional_level"]),
		SeniorityLevel:  toStr(item["seniority_level"]),
		Email:           toStr(item["email"]),
		MobileNumber:    toStr(item["mobile_number"]),
		PersonalEmail:   toStr(item["personal_email"]),
		Linkedin:        toStr(item["linkedin"]),
		City:            toStr(item["city"]),
		State:           toStr(item["state"]),
		Country:         toStr(item["country"]),

		CompanyName:               toStr(item["company_name"]),
		CompanyDomain:             toStr(item["company_domain"]),
		CompanyWebsite:            toStr(item["company_website"]),
		CompanyLinkedin:           toStr(item["company_linkedin"]),
		CompanyLinkedinUID:        toStr(item["company_linkedin_uid"]),
		CompanySize:               toStr(item["company_size"]),
		Industry:                  toStr(item["industry"]),
		CompanyDescription:        toStr(item["company_description"]),
		CompanyAnnualRevenue:      toStr(item["company_annual_revenue"]),
		CompanyAnnualRevenueClean: toNum(item["company_annual_revenue_clean"]),
		CompanyTotalFunding:       toStr(item["company_total_funding"]),
		CompanyTotalFundingClean:  toNum(item["company_total_funding_clean"]),
		CompanyFoundedYear:        toInt(item["company_founded_year"]),
		CompanyPhone:              toStr(item["company_phone"]),
		CompanyStreetAddress:      toStr(item["company_street_address"]),
		CompanyCity:               toStr(item["company_city"]),
		CompanyState:              toStr(item["company_state"]),
		CompanyCountry:            toStr(item["company_country"]),
		CompanyPostalCode:         toStr(item["company_postal_code"]),
		CompanyFullAddress:        toStr(item["company_full_address"]),
		CompanyMarketCap:          toStr(item["company_market_cap"]),

		Keywords:            toStrArray(item["keywords"]),
		CompanyTechnologies: toStrArray(item["company_technologies"]),
	}
}

// ProjectAll projects every raw item onto a Lead row, preserving order.
func ProjectAll(searchID string, items []map[string]any) []model.Lead {
	leads := make([]model.Lead, 0, len(items))
	for _, item := range items {
		leads = append(leads, Project(searchID, item))
	}
	return leads
}

// toStr renders any scalar as a string. Nil and empty string become nil.
func toStr(v any) *string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "" {
			return nil
		}
		return &x
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		return &s
	case int:
		s := strconv.Itoa(x)
		return &s
	case bool:
		s := strconv.FormatBool(x)
		return &s
	default:
		return nil
	}
}

// toNum parses any scalar as a float. Nil, empty and unparseable values become nil.
func toNum(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return &x
	case int:
		f := float64(x)
		return &f
	case string:
		if x == "" {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// toInt parses any scalar as an integer, truncating fractional parts.
func toInt(v any) *int {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		n := int(x)
		return &n
	case int:
		return &x
	case string:
		if x == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			f, ferr := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if ferr != nil {
				return nil
			}
			n = int(f)
		}
		return &n
	default:
		return nil
	}
}

// toStrArray accepts a list of scalars or a comma separated string.
func toStrArray(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		if len(x) == 0 {
			return nil
		}
		return x
	case []any:
		if len(x) == 0 {
			return nil
		}
		out := make([]string, 0, len(x))
		for _, e := range x {
			if s := toStr(e); s != nil {
				out = append(out, *s)
			} else {
				out = append(out, "")
			}
		}
		return out
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		parts := strings.Split(x, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out
	default:
		return nil
	}
}
