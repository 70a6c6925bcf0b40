package citation

import (
	"regexp"
	"strconv"

	"github.com/matsen/paperview/internal/reference"
)

var placeholderPattern = regexp.MustCompile(`\[(\d+)\]`)

// Placeholders returns the distinct 1-based placeholder numbers in text,
// in order of first appearance.
func Placeholders(text string) []int {
	var order []int
	seen := map[int]bool{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		order = append(order, n)
	}
	return order
}

// ReplacePlaceholders replaces "[n]" markers with the citation of refs[n-1]
// in the given style. Markers without a matching reference are kept.
func ReplacePlaceholders(text string, refs []reference.Reference, style Style) string {
	if len(refs) == 0 {
		return text
	}
	cache := map[int]string{}
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		n, err := strconv.Atoi(match[1 : len(match)-1])
		if err != nil || n < 1 || n > len(refs) {
			return match
		}
		if c, ok := cache[n]; ok {
			return c
		}
		c := Format(refs[n-1], style)
		cache[n] = c
		return c
	})
}
