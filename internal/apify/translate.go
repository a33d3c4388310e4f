package apify

import (
	"strings"

	"github.com/alphaleads/leadsearch/internal/domain/model"
)

// Label to code tables for the enumerated filter fields. An unmapped label is
// forwarded unchanged so new executor vocabulary keeps working without a
// deploy here.
var seniorityCodes = map[string]string{
	"founder":  "founder",
	"owner":    "owner",
	"c-level":  "c_suite",
	"director": "director",
	"vp":       "vp",
	"head":     "head",
	"manager":  "manager",
	"senior":   "senior",
	"entry":    "entry",
	"trainee":  "trainee",
}

var functionalCodes = map[string]string{
	"c-level":     "c_suite",
	"finance":     "finance",
	"product":     "product",
	"engineering": "engineering",
	"design":      "design",
	"hr":          "human_resources",
	"it":          "information_technology",
	"legal":       "legal",
	"marketing":   "marketing",
	"operations":  "operations",
	"sales":       "sales",
	"support":     "support",
}

var emailStatusCodes = map[string]string{
	"validated":     "validated",
	"not validated": "not_validated",
	"unknown":       "unknown",
}

var fundingCodes = map[string]string{
	"seed":             "seed",
	"angel":            "angel",
	"series a":         "series_a",
	"series b":         "series_b",
	"series c":         "series_c",
	"series d":         "series_d",
	"series e":         "series_e",
	"series f":         "series_f",
	"venture":          "venture",
	"debt financing":   "debt_financing",
	"convertible note": "convertible_note",
	"private equity":   "private_equity",
	"other":            "other",
}

// knownLocations is the executor's accepted "region, country" vocabulary.
// Free-text location input is resolved against this list; anything that does
// not resolve is demoted to a city filter instead of being dropped.
var knownLocations = []string{
	"abruzzo, italy",
	"basilicata, italy",
	"calabria, italy",
	"campania, italy",
	"emilia-romagna, italy",
	"friuli-venezia giulia, italy",
	"lazio, italy",
	"liguria, italy",
	"lombardia, italy",
	"marche, italy",
	"molise, italy",
	"piemonte, italy",
	"puglia, italy",
	"sardegna, italy",
	"sicilia, italy",
	"toscana, italy",
	"trentino-alto adige, italy",
	"umbria, italy",
	"valle d'aosta, italy",
	"veneto, italy",
	"bavaria, germany",
	"berlin, germany",
	"hesse, germany",
	"north rhine-westphalia, germany",
	"catalonia, spain",
	"madrid, spain",
	"ile-de-france, france",
	"provence-alpes-cote d'azur, france",
	"england, united kingdom",
	"scotland, united kingdom",
	"zurich, switzerland",
	"california, united states",
	"new york, united states",
	"texas, united states",
	"florida, united states",
	"massachusetts, united states",
	"washington, united states",
	"illinois, united states",
}

// Translate converts stored search filters into the executor's actor input.
//
// Internal-only fields and empty values are dropped so the executor never
// receives keys for unset criteria. Enumerated labels map through the code
// tables above; free-text locations resolve against knownLocations, and
// unresolvable entries move to the matching city field.
func Translate(filters model.SearchFilters) map[string]any {
	input := make(map[string]any)

	if filters.FetchCount > 0 {
		input["fetch_count"] = filters.FetchCount
	}

	putList(input, "contact_job_title", filters.ContactJobTitle)
	putList(input, "contact_not_job_title", filters.ContactNotJobTitle)
	putList(input, "seniority_level", mapLabels(filters.SeniorityLevel, seniorityCodes))
	putList(input, "functional_level", mapLabels(filters.FunctionalLevel, functionalCodes))
	putList(input, "email_status", mapLabels(filters.EmailStatus, emailStatusCodes))
	putList(input, "company_domain", filters.CompanyDomain)
	putList(input, "size", filters.Size)
	putList(input, "company_industry", filters.CompanyIndustry)
	putList(input, "company_not_industry", filters.CompanyNotIndustry)
	putList(input, "company_keywords", filters.CompanyKeywords)
	putList(input, "company_not_keywords", filters.CompanyNotKeywords)
	putList(input, "funding", mapLabels(filters.Funding, fundingCodes))

	locations, extraCities := resolveLocations(filters.ContactLocation)
	putList(input, "contact_location", locations)
	putList(input, "contact_city", append(extraCities, filters.ContactCity...))

	notLocations, extraNotCities := resolveLocations(filters.ContactNotLocation)
	putList(input, "contact_not_location", notLocations)
	putList(input, "contact_not_city", append(extraNotCities, filters.ContactNotCity...))

	if v := strings.TrimSpace(filters.MinRevenue); v != "" {
		input["min_revenue"] = v
	}
	if v := strings.TrimSpace(filters.MaxRevenue); v != "" {
		input["max_revenue"] = v
	}

	return input
}

// resolveLocations splits location input into entries the executor accepts and
// entries that only make sense as city filters. Resolution is case-insensitive
// against knownLocations: an exact match passes through in canonical form, a
// bare region name resolves via prefix match on "<input>, ".
func resolveLocations(inputs []string) (resolved, cities []string) {
	for _, raw := range inputs {
		loc := strings.ToLower(strings.TrimSpace(raw))
		if loc == "" {
			continue
		}

		if match := lookupLocation(loc); match != "" {
			resolved = append(resolved, match)
		} else {
			cities = append(cities, loc)
		}
	}
	return resolved, cities
}

func lookupLocation(loc string) string {
	for _, known := range knownLocations {
		if known == loc {
			return known
		}
	}
	prefix := loc + ", "
	for _, known := range knownLocations {
		if strings.HasPrefix(known, prefix) {
			return known
		}
	}
	return ""
}

func mapLabels(labels []string, codes map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if code, ok := codes[strings.ToLower(strings.TrimSpace(label))]; ok {
			out = append(out, code)
		} else {
			out = append(out, label)
		}
	}
	return out
}

func putList(input map[string]any, key string, values []string) {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) > 0 {
		input[key] = cleaned
	}
}
