// Package query filters and sorts reference lists for display.
package query

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matsen/paperview/internal/author"
	"github.com/matsen/paperview/internal/reference"
)

// SortKey selects the ordering of query results.
type SortKey int

// Sort keys.
const (
	ByRelevance SortKey = iota
	ByYear
	ByCitations
	Alphabetical
)

var sortKeyNames = [...]string{
	ByRelevance:  "relevance",
	ByYear:       "year",
	ByCitations:  "citations",
	Alphabetical: "alphabetical",
}

// SortKeys returns all sort keys in display order.
func SortKeys() []SortKey {
	return []SortKey{ByRelevance, ByYear, ByCitations, Alphabetical}
}

func (k SortKey) String() string {
	if k < 0 || int(k) >= len(sortKeyNames) {
		return fmt.Sprintf("SortKey(%d)", int(k))
	}
	return sortKeyNames[k]
}

// Next returns the sort key after k, wrapping around.
func (k SortKey) Next() SortKey {
	return (k + 1) % SortKey(len(sortKeyNames))
}

// ParseSortKey parses a sort key name case-insensitively.
func ParseSortKey(name string) (SortKey, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range sortKeyNames {
		if n == name {
			return SortKey(i), true
		}
	}
	return ByRelevance, false
}

// AllYears is the year filter value that disables year filtering.
const AllYears = "all"

// State is the user-controlled part of a query.
type State struct {
	Search string  // Case-insensitive substring of title, author, or journal
	Sort   SortKey // Result ordering
	Year   string  // Exact year to keep; "" or "all" keeps every year
}

// DefaultState returns the state a fresh list view starts with.
func DefaultState() State {
	return State{Sort: ByRelevance}
}

// yearFilter returns the normalized year filter, "" meaning none.
func (s State) yearFilter() string {
	y := strings.TrimSpace(s.Year)
	if strings.EqualFold(y, AllYears) {
		return ""
	}
	return y
}

// Run filters and sorts refs according to s. The result is a new slice;
// refs itself is never reordered.
func Run(refs []reference.Reference, s State) []reference.Reference {
	out := Filter(refs, s.Search, s.yearFilter())
	Sort(out, s.Sort)
	return out
}

// Filter returns the references matching search and year, in input order.
// search is matched as a single lowercase substring, whitespace included.
func Filter(refs []reference.Reference, search, year string) []reference.Reference {
	term := strings.ToLower(search)
	out := make([]reference.Reference, 0, len(refs))
	for _, ref := range refs {
		if term != "" && !matches(ref, term) {
			continue
		}
		if year != "" && ref.Year.String() != year {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// matches reports whether the lowercase term occurs in the title, any
// author, or the journal.
func matches(ref reference.Reference, term string) bool {
	return strings.Contains(strings.ToLower(ref.Title), term) ||
		author.ContainsFold(ref.Authors, term) ||
		strings.Contains(strings.ToLower(ref.Journal), term)
}

// Sort orders refs in place. The sort is stable, so references that tie on
// the key keep their relative order. Unparseable years sort last.
func Sort(refs []reference.Reference, key SortKey) {
	switch key {
	case ByYear:
		sort.SliceStable(refs, func(i, j int) bool {
			yi, oki := refs[i].Year.Int()
			yj, okj := refs[j].Year.Int()
			if oki != okj {
				return oki
			}
			return yi > yj
		})
	case ByCitations:
		sort.SliceStable(refs, func(i, j int) bool {
			return refs[i].CitationsCount > refs[j].CitationsCount
		})
	case Alphabetical:
		// Collators keep internal buffers, so each sort gets its own.
		c := collate.New(language.English, collate.Loose)
		sort.SliceStable(refs, func(i, j int) bool {
			return c.CompareString(refs[i].Title, refs[j].Title) < 0
		})
	default:
		sort.SliceStable(refs, func(i, j int) bool {
			return refs[i].RelevanceScore > refs[j].RelevanceScore
		})
	}
}

// Years outside this span are treated as malformed by YearRange.
const (
	MinYear = 0
	MaxYear = 9999
)

// YearRange returns every year from the earliest to the latest parseable
// year in refs, ascending. Years outside MinYear..MaxYear are ignored. It
// returns nil when no year qualifies.
func YearRange(refs []reference.Reference) []int {
	var lo, hi int
	found := false
	for _, ref := range refs {
		y, ok := ref.Year.Int()
		if !ok || y < MinYear || y > MaxYear {
			continue
		}
		if !found || y < lo {
			lo = y
		}
		if !found || y > hi {
			hi = y
		}
		found = true
	}
	if !found {
		return nil
	}
	years := make([]int, 0, hi-lo+1)
	for y := lo; y <= hi; y++ {
		years = append(years, y)
	}
	return years
}
