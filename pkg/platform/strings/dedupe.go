// Package strings provides string manipulation utilities.
package strings

import "strings"

// DedupeAndTrim trims whitespace from each element and drops blanks and
// repeats, keeping the first occurrence's position. Query parameters that
// accept comma-separated sets run through this before parsing.
//
//	DedupeAndTrim([]string{" O+ ", "A-", "O+", ""}) // []string{"O+", "A-"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
