// Package author provides author name parsing and matching over the plain
// display names the backend sends ("Alice C Smith", "Smith, Alice").
package author

import (
	"strings"
)

// Name is a display name split into given and family parts.
type Name struct {
	First string // Given name(s), may be empty
	Last  string // Family name
}

// Parse splits a display name into a Name.
//
// Supported formats:
//   - "Smith"           → last="Smith"
//   - "Alice Smith"     → first="Alice", last="Smith"
//   - "Alice C Smith"   → first="Alice C", last="Smith"
//   - "Smith, Alice"    → first="Alice", last="Smith"
//
// Names are trimmed but case is preserved.
func Parse(input string) Name {
	input = strings.TrimSpace(input)
	if input == "" {
		return Name{}
	}

	// "Last, First"
	if idx := strings.Index(input, ","); idx > 0 {
		last := strings.TrimSpace(input[:idx])
		first := strings.TrimSpace(input[idx+1:])
		return Name{First: first, Last: last}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		return Name{Last: parts[0]}
	}

	// Last word is the family name: "Alice C Smith" → first="Alice C"
	last := parts[len(parts)-1]
	first := strings.Join(parts[:len(parts)-1], " ")
	return Name{First: first, Last: last}
}

// Display formats the name as "First Last".
func (n Name) Display() string {
	if n.First == "" {
		return n.Last
	}
	return n.First + " " + n.Last
}

// Sorted formats the name as "Last, First", the form BibTeX expects.
func (n Name) Sorted() string {
	if n.First == "" {
		return n.Last
	}
	return n.Last + ", " + n.First
}

// Matches checks if the query name matches the given display name.
//
// Matching rules:
//   - Last name: case-insensitive exact match (required)
//   - First name: case-insensitive prefix match (if query has first name)
//
// This lets "Tim Yu" match "Timothy C Yu" while "Yu" does not match "Yujia".
func (n Name) Matches(display string) bool {
	other := Parse(display)
	if !strings.EqualFold(n.Last, other.Last) {
		return false
	}
	if n.First == "" {
		return true
	}
	return strings.HasPrefix(
		strings.ToLower(other.First),
		strings.ToLower(n.First),
	)
}

// MatchesAny checks if the query name matches any of the display names.
func (n Name) MatchesAny(authors []string) bool {
	for _, a := range authors {
		if n.Matches(a) {
			return true
		}
	}
	return false
}

// ContainsFold reports whether any author contains term as a substring.
// term must already be lowercased.
func ContainsFold(authors []string, term string) bool {
	for _, a := range authors {
		if strings.Contains(strings.ToLower(a), term) {
			return true
		}
	}
	return false
}
