package apify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaleads/leadsearch/internal/domain/model"
)

func TestTranslateDropsInternalAndEmptyFields(t *testing.T) {
	input := Translate(model.SearchFilters{
		FileName:        "my-export.csv",
		FetchCount:      0,
		ContactJobTitle: []string{"CTO", "  "},
		SeniorityLevel:  []string{},
		MinRevenue:      "   ",
	})

	assert.Equal(t, map[string]any{
		"contact_job_title": []string{"CTO"},
	}, input)
}

func TestTranslateMapsEnumeratedLabels(t *testing.T) {
	input := Translate(model.SearchFilters{
		SeniorityLevel:  []string{"C-Level", "VP", "Founder"},
		FunctionalLevel: []string{"HR", "IT", "Engineering"},
		EmailStatus:     []string{"Validated", "Not Validated"},
		Funding:         []string{"Series A", "Debt Financing"},
	})

	assert.Equal(t, []string{"c_suite", "vp", "founder"}, input["seniority_level"])
	assert.Equal(t, []string{"human_resources", "information_technology", "engineering"}, input["functional_level"])
	assert.Equal(t, []string{"validated", "not_validated"}, input["email_status"])
	assert.Equal(t, []string{"series_a", "debt_financing"}, input["funding"])
}

func TestTranslateUnmappedLabelPassesThrough(t *testing.T) {
	input := Translate(model.SearchFilters{
		SeniorityLevel: []string{"Principal Fellow"},
		Funding:        []string{"Series G"},
	})

	assert.Equal(t, []string{"Principal Fellow"}, input["seniority_level"])
	assert.Equal(t, []string{"Series G"}, input["funding"])
}

func TestTranslateResolvesBareRegion(t *testing.T) {
	input := Translate(model.SearchFilters{
		ContactLocation: []string{"piemonte"},
	})

	assert.Equal(t, []string{"piemonte, italy"}, input["contact_location"])
	assert.NotContains(t, input, "contact_city")
}

func TestTranslateExactLocationMatchIsCaseInsensitive(t *testing.T) {
	input := Translate(model.SearchFilters{
		ContactLocation: []string{"  Lombardia, Italy "},
	})

	assert.Equal(t, []string{"lombardia, italy"}, input["contact_location"])
}

func TestTranslateUnresolvableLocationMovesToCity(t *testing.T) {
	input := Translate(model.SearchFilters{
		ContactLocation: []string{"Piemonte", "Gotham"},
		ContactCity:     []string{"torino"},
	})

	assert.Equal(t, []string{"piemonte, italy"}, input["contact_location"])
	assert.Equal(t, []string{"gotham", "torino"}, input["contact_city"])
}

func TestTranslateAllUnresolvableOmitsLocationField(t *testing.T) {
	input := Translate(model.SearchFilters{
		ContactNotLocation: []string{"Gotham", "Metropolis"},
	})

	assert.NotContains(t, input, "contact_not_location")
	assert.Equal(t, []string{"gotham", "metropolis"}, input["contact_not_city"])
}

func TestTranslateRevenueBounds(t *testing.T) {
	input := Translate(model.SearchFilters{
		MinRevenue: " 1000000 ",
		MaxRevenue: "50000000",
	})

	assert.Equal(t, "1000000", input["min_revenue"])
	assert.Equal(t, "50000000", input["max_revenue"])
}

func TestTranslateFetchCount(t *testing.T) {
	input := Translate(model.SearchFilters{FetchCount: 500})
	require.Contains(t, input, "fetch_count")
	assert.Equal(t, 500, input["fetch_count"])
}
