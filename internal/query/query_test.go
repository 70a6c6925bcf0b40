package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/paperview/internal/reference"
)

func testRefs() []reference.Reference {
	return []reference.Reference{
		{ID: "a", Title: "Machine Learning in Healthcare", Authors: []string{"Alice Smith"}, Journal: "Nature Medicine", Year: "2021", RelevanceScore: 0.7, CitationsCount: 120},
		{ID: "b", Title: "Deep learning for imaging", Authors: []string{"Bob Lee", "Carol Diaz"}, Journal: "Radiology", Year: "2019", RelevanceScore: 0.9, CitationsCount: 15},
		{ID: "c", Title: "éclair models of care", Authors: []string{"Dan Machin"}, Journal: "", Year: "n.d.", RelevanceScore: 0.2, CitationsCount: 300},
		{ID: "d", Title: "Bayesian triage", Authors: []string{"Eve Park"}, Journal: "Journal of Machine Learning Research", Year: "2020", RelevanceScore: 0.7, CitationsCount: 15},
		{ID: "e", Title: "Zebra crossing detection", Authors: []string{"Fay Wong"}, Journal: "IEEE TPAMI", Year: "2021", RelevanceScore: 0.4, CitationsCount: 0},
	}
}

func ids(refs []reference.Reference) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.ID
	}
	return out
}

func TestRun_EmptyQueryKeepsAll(t *testing.T) {
	refs := testRefs()
	for _, key := range SortKeys() {
		got := Run(refs, State{Sort: key})
		assert.Len(t, got, len(refs), "sort %s", key)
		assert.ElementsMatch(t, ids(refs), ids(got), "sort %s", key)
	}
}

func TestRun_DoesNotReorderInput(t *testing.T) {
	refs := testRefs()
	before := ids(refs)
	_ = Run(refs, State{Sort: Alphabetical})
	assert.Equal(t, before, ids(refs))
}

func TestRun_SearchFields(t *testing.T) {
	refs := testRefs()

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"title", "imaging", []string{"b"}},
		{"author", "carol", []string{"b"}},
		{"journal", "radiology", []string{"b"}},
		{"title author and journal", "machin", []string{"a", "d", "c"}},
		{"no match", "quantum", []string{}},
		{"trailing space is part of the term", "zebra ", []string{"e"}},
		{"leading spaces are part of the term", "  zebra", []string{}},
		{"phrase is not tokenized", "learning in", []string{"a"}},
		{"words out of order do not match", "learning machine", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Run(refs, State{Search: tt.search, Sort: ByRelevance})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestRun_SearchIsCaseInsensitive(t *testing.T) {
	refs := testRefs()
	upper := Run(refs, State{Search: "MACHINE", Sort: ByCitations})
	lower := Run(refs, State{Search: "machine", Sort: ByCitations})
	require.NotEmpty(t, upper)
	assert.Equal(t, ids(lower), ids(upper))
}

func TestRun_YearFilter(t *testing.T) {
	refs := testRefs()

	got := Run(refs, State{Year: "2021"})
	assert.Equal(t, []string{"a", "e"}, ids(got))

	assert.Len(t, Run(refs, State{Year: AllYears}), len(refs))
	assert.Len(t, Run(refs, State{Year: "ALL"}), len(refs))
	assert.Empty(t, Run(refs, State{Year: "1900"}))

	got = Run(refs, State{Search: "learning", Year: "2019"})
	assert.Equal(t, []string{"b"}, ids(got))
}

func TestSort_Keys(t *testing.T) {
	tests := []struct {
		key  SortKey
		want []string
	}{
		// a and d tie on relevance and keep input order
		{ByRelevance, []string{"b", "a", "d", "e", "c"}},
		// c has no parseable year and sorts last
		{ByYear, []string{"a", "e", "d", "b", "c"}},
		{ByCitations, []string{"c", "a", "b", "d", "e"}},
		// locale-aware: "éclair" sorts with "e", not after "z"
		{Alphabetical, []string{"d", "b", "c", "a", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			got := Run(testRefs(), State{Sort: tt.key})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSort_CitationsNonIncreasing(t *testing.T) {
	got := Run(testRefs(), State{Sort: ByCitations})
	for i := 0; i+1 < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].CitationsCount, got[i+1].CitationsCount)
	}
}

func TestParseSortKey(t *testing.T) {
	for _, key := range SortKeys() {
		got, ok := ParseSortKey(key.String())
		assert.True(t, ok)
		assert.Equal(t, key, got)
	}

	got, ok := ParseSortKey(" Citations ")
	assert.True(t, ok)
	assert.Equal(t, ByCitations, got)

	_, ok = ParseSortKey("random")
	assert.False(t, ok)

	assert.Equal(t, ByRelevance, Alphabetical.Next())
	assert.Equal(t, "SortKey(7)", SortKey(7).String())
}

func TestYearRange(t *testing.T) {
	refs := []reference.Reference{{Year: "2019"}, {Year: "2021"}, {Year: "2020"}}
	assert.Equal(t, []int{2019, 2020, 2021}, YearRange(refs))

	refs = []reference.Reference{{Year: "2018"}, {Year: "bogus"}, {Year: "2021"}, {Year: "2021"}}
	assert.Equal(t, []int{2018, 2019, 2020, 2021}, YearRange(refs))

	assert.Empty(t, YearRange([]reference.Reference{{Year: ""}, {Year: "n.d."}}))
	assert.Empty(t, YearRange(nil))
	assert.Equal(t, []int{2000}, YearRange([]reference.Reference{{Year: "2000"}}))
}

func TestYearRangeIgnoresOutliers(t *testing.T) {
	tests := []struct {
		name string
		refs []reference.Reference
		want []int
	}{
		{"min int", []reference.Reference{{Year: "2021"}, {Year: "-9223372036854775808"}}, []int{2021}},
		{"far future", []reference.Reference{{Year: "2020"}, {Year: "99999999"}, {Year: "2021"}}, []int{2020, 2021}},
		{"negative", []reference.Reference{{Year: "-5"}, {Year: "2019"}}, []int{2019}},
		{"only outliers", []reference.Reference{{Year: "10000"}, {Year: "-1"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() { YearRange(tt.refs) })
			assert.Equal(t, tt.want, YearRange(tt.refs))
		})
	}
}

func TestDefaultState(t *testing.T) {
	s := DefaultState()
	assert.Equal(t, ByRelevance, s.Sort)
	assert.Empty(t, s.Search)
	assert.Empty(t, s.Year)
}
