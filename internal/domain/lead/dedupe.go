// Package lead implements the pure transformation steps applied to executor
// dataset items before persistence: deduplication and projection into Lead rows.
package lead

import "strings"

// Deduplicate filters raw dataset items through three identity tiers, in
// priority order:
//
//  1. email
//  2. linkedin URL
//  3. full_name + company_domain combination
//
// Keys are lowercased and trimmed before comparison. The first occurrence of
// an identity wins and order is preserved. Items carrying none of the three
// identities always survive.
func Deduplicate(items []map[string]any) []map[string]any {
	seenEmails := make(map[string]struct{})
	seenLinkedins := make(map[string]struct{})
	seenNameDomain := make(map[string]struct{})
	result := make([]map[string]any, 0, len(items))

	for _, item := range items {
		email := normKey(item["email"])
		linkedin := normKey(item["linkedin"])
		fullName := normKey(item["full_name"])
		companyDomain := normKey(item["company_domain"])

		if email != "" {
			if _, ok := seenEmails[email]; ok {
				continue
			}
			seenEmails[email] = struct{}{}
		}

		if linkedin != "" {
			if _, ok := seenLinkedins[linkedin]; ok {
				continue
			}
			seenLinkedins[linkedin] = struct{}{}
		}

		if fullName != "" && companyDomain != "" {
			key := fullName + "::" + companyDomain
			if _, ok := seenNameDomain[key]; ok {
				continue
			}
			seenNameDomain[key] = struct{}{}
		}

		result = append(result, item)
	}

	return result
}

func normKey(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}
