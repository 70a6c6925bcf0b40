package citation

import "strings"

const (
	apaMaxListed  = 7 // APA lists up to this many authors in full
	apaTruncated  = 6 // then the first six, an ellipsis, and the last
	ieeeMaxListed = 6
	ieeeTruncated = 3
)

// apaAuthors: "A, B, & C"; more than seven become "A, B, C, D, E, F, ... Z".
func apaAuthors(authors []string) string {
	authors = nonEmpty(authors)
	switch {
	case len(authors) <= 1:
		return strings.Join(authors, "")
	case len(authors) <= apaMaxListed:
		return strings.Join(authors[:len(authors)-1], ", ") + ", & " + authors[len(authors)-1]
	default:
		return strings.Join(authors[:apaTruncated], ", ") + ", ... " + authors[len(authors)-1]
	}
}

// listAuthors joins all but the last author with ", " and attaches the
// last with sep (", and " for MLA and Chicago).
func listAuthors(authors []string, sep string) string {
	authors = nonEmpty(authors)
	if len(authors) <= 1 {
		return strings.Join(authors, "")
	}
	return strings.Join(authors[:len(authors)-1], ", ") + sep + authors[len(authors)-1]
}

// ieeeAuthors: up to six joined by ", "; more become "A, B, C et al."
func ieeeAuthors(authors []string) string {
	authors = nonEmpty(authors)
	if len(authors) <= ieeeMaxListed {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:ieeeTruncated], ", ") + " et al."
}

// nonEmpty drops blank author entries without modifying the input.
func nonEmpty(authors []string) []string {
	for _, a := range authors {
		if strings.TrimSpace(a) == "" {
			out := make([]string, 0, len(authors))
			for _, a := range authors {
				if s := strings.TrimSpace(a); s != "" {
					out = append(out, s)
				}
			}
			return out
		}
	}
	return authors
}
