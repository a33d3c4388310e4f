package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	raw := map[string]any{
		"first_name":                   "Ada",
		"last_name":                    "Lovelace",
		"full_name":                    "Ada Lovelace",
		"job_title":                    "CTO",
		"email":                        "ada@acme.io",
		"linkedin":                     "https://linkedin.com/in/ada",
		"company_name":                 "Acme",
		"company_domain":               "acme.io",
		"company_annual_revenue":       "$10M",
		"company_annual_revenue_clean": float64(10000000),
		"company_founded_year":         float64(2015),
		"keywords":                     []any{"saas", "b2b"},
		"company_technologies":         "react, go, postgres",
		"headline":                     "",
	}

	l := Project("search-1", raw)

	assert.Equal(t, "search-1", l.SearchID)
	require.NotNil(t, l.FullName)
	assert.Equal(t, "Ada Lovelace", *l.FullName)
	require.NotNil(t, l.Email)
	assert.Equal(t, "ada@acme.io", *l.Email)
	require.NotNil(t, l.CompanyAnnualRevenueClean)
	assert.Equal(t, float64(10000000), *l.CompanyAnnualRevenueClean)
	require.NotNil(t, l.CompanyFoundedYear)
	assert.Equal(t, 2015, *l.CompanyFoundedYear)
	assert.Equal(t, []string{"saas", "b2b"}, l.Keywords)
	assert.Equal(t, []string{"react", "go", "postgres"}, l.CompanyTechnologies)

	// Empty strings and missing keys become nil columns.
	assert.Nil(t, l.Headline)
	assert.Nil(t, l.MobileNumber)
	assert.Nil(t, l.CompanyTotalFundingClean)
}

func TestProjectAllPreservesOrder(t *testing.T) {
	items := []map[string]any{
		{"full_name": "One"},
		{"full_name": "Two"},
		{"full_name": "Three"},
	}

	leads := ProjectAll("s", items)
	require.Len(t, leads, 3)
	assert.Equal(t, "One", *leads[0].FullName)
	assert.Equal(t, "Three", *leads[2].FullName)
}

func TestToStr(t *testing.T) {
	assert.Nil(t, toStr(nil))
	assert.Nil(t, toStr(""))
	assert.Equal(t, "x", *toStr("x"))
	assert.Equal(t, "42", *toStr(float64(42)))
	assert.Equal(t, "42.5", *toStr(42.5))
	assert.Equal(t, "true", *toStr(true))
	assert.Nil(t, toStr(map[string]any{}))
}

func TestToNum(t *testing.T) {
	assert.Nil(t, toNum(nil))
	assert.Nil(t, toNum(""))
	assert.Nil(t, toNum("not a number"))
	assert.Equal(t, 1.5, *toNum(1.5))
	assert.Equal(t, float64(7), *toNum(7))
	assert.Equal(t, 99.9, *toNum(" 99.9 "))
}

func TestToInt(t *testing.T) {
	assert.Nil(t, toInt(nil))
	assert.Nil(t, toInt(""))
	assert.Nil(t, toInt("abc"))
	assert.Equal(t, 2015, *toInt(float64(2015.7)))
	assert.Equal(t, 12, *toInt("12"))
	assert.Equal(t, 12, *toInt("12.9"))
}

func TestToStrArray(t *testing.T) {
	assert.Nil(t, toStrArray(nil))
	assert.Nil(t, toStrArray(""))
	assert.Nil(t, toStrArray("   "))
	assert.Nil(t, toStrArray([]any{}))
	assert.Equal(t, []string{"a", "b"}, toStrArray([]any{"a", "b"}))
	assert.Equal(t, []string{"a", "b", "c"}, toStrArray("a, b ,c"))
	assert.Equal(t, []string{"1", "2"}, toStrArray([]any{float64(1), float64(2)}))
}
