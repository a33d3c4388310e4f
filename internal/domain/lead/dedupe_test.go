package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(kv ...string) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

func TestDeduplicateByEmail(t *testing.T) {
	items := []map[string]any{
		item("email", "a@example.com", "full_name", "Ada One"),
		item("email", " A@Example.COM ", "full_name", "Ada Two"),
		item("email", "b@example.com", "full_name", "Bea"),
	}

	out := Deduplicate(items)
	require.Len(t, out, 2)
	assert.Equal(t, "Ada One", out[0]["full_name"])
	assert.Equal(t, "Bea", out[1]["full_name"])
}

func TestDeduplicateByLinkedin(t *testing.T) {
	items := []map[string]any{
		item("linkedin", "https://linkedin.com/in/ada"),
		item("linkedin", "HTTPS://LINKEDIN.COM/IN/ADA"),
	}

	out := Deduplicate(items)
	assert.Len(t, out, 1)
}

func TestDeduplicateByNameDomain(t *testing.T) {
	items := []map[string]any{
		item("full_name", "Ada Lovelace", "company_domain", "acme.io"),
		item("full_name", "ada lovelace", "company_domain", "ACME.IO"),
		item("full_name", "Ada Lovelace", "company_domain", "other.io"),
	}

	out := Deduplicate(items)
	assert.Len(t, out, 2)
}

func TestDeduplicateTierPriority(t *testing.T) {
	// A fresh email does not rescue an item whose name+domain pair was
	// already seen; the tiers are checked independently.
	items := []map[string]any{
		item("email", "a@acme.io", "full_name", "Ada", "company_domain", "acme.io"),
		item("email", "b@acme.io", "full_name", "Ada", "company_domain", "acme.io"),
	}

	out := Deduplicate(items)
	require.Len(t, out, 1)
	assert.Equal(t, "a@acme.io", out[0]["email"])

	// A repeated email short-circuits before the linkedin tier is consulted,
	// so the distinct linkedin URL does not rescue the duplicate.
	items = []map[string]any{
		item("email", "a@acme.io", "linkedin", "https://linkedin.com/in/one"),
		item("email", "a@acme.io", "linkedin", "https://linkedin.com/in/two"),
	}

	out = Deduplicate(items)
	assert.Len(t, out, 1)
}

func TestDeduplicateIdentityless(t *testing.T) {
	items := []map[string]any{
		item("job_title", "CTO"),
		item("job_title", "CTO"),
		item("full_name", "Ada Lovelace"),
		item("full_name", "Ada Lovelace"),
		item("company_domain", "acme.io"),
	}

	// full_name alone is not an identity without company_domain.
	out := Deduplicate(items)
	assert.Len(t, out, 5)
}

func TestDeduplicateIdempotent(t *testing.T) {
	items := []map[string]any{
		item("email", "a@acme.io"),
		item("email", "a@acme.io"),
		item("linkedin", "https://linkedin.com/in/ada"),
		item("full_name", "Ada", "company_domain", "acme.io"),
		item("full_name", "Ada", "company_domain", "acme.io"),
		item("job_title", "CTO"),
	}

	once := Deduplicate(items)
	twice := Deduplicate(once)
	assert.Equal(t, once, twice)
}

func TestDeduplicateEmpty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
	assert.Empty(t, Deduplicate([]map[string]any{}))
}

func TestDeduplicateNonStringIdentity(t *testing.T) {
	// Numeric or missing identity values are treated as absent.
	items := []map[string]any{
		{"email": 42},
		{"email": 42},
	}

	out := Deduplicate(items)
	assert.Len(t, out, 2)
}
