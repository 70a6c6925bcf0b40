package query

import (
	"github.com/matsen/paperview/internal/reference"
)

// Pipeline caches the result of Run and recomputes it only when one of its
// inputs changes. It is owned by a single view and is not safe for
// concurrent use.
type Pipeline struct {
	refs    []reference.Reference
	state   State
	result  []reference.Reference
	dirty   bool
	version int // incremented on every recompute
}

// NewPipeline creates a pipeline over refs with the default state.
func NewPipeline(refs []reference.Reference) *Pipeline {
	return &Pipeline{refs: refs, state: DefaultState(), dirty: true}
}

// SetReferences replaces the input list. A list with a different backing
// array or length is treated as new input.
func (p *Pipeline) SetReferences(refs []reference.Reference) {
	if sameSlice(p.refs, refs) {
		return
	}
	p.refs = refs
	p.dirty = true
}

// SetSearch sets the search term.
func (p *Pipeline) SetSearch(search string) {
	if p.state.Search == search {
		return
	}
	p.state.Search = search
	p.dirty = true
}

// SetSort sets the sort key.
func (p *Pipeline) SetSort(key SortKey) {
	if p.state.Sort == key {
		return
	}
	p.state.Sort = key
	p.dirty = true
}

// SetYear sets the year filter.
func (p *Pipeline) SetYear(year string) {
	if p.state.Year == year {
		return
	}
	p.state.Year = year
	p.dirty = true
}

// SetState replaces all user-controlled inputs at once.
func (p *Pipeline) SetState(s State) {
	p.SetSearch(s.Search)
	p.SetSort(s.Sort)
	p.SetYear(s.Year)
}

// State returns the current query state.
func (p *Pipeline) State() State {
	return p.state
}

// References returns the unfiltered input list.
func (p *Pipeline) References() []reference.Reference {
	return p.refs
}

// Results returns the filtered, sorted references, recomputing them only
// if an input changed since the last call. Callers must not modify the
// returned slice.
func (p *Pipeline) Results() []reference.Reference {
	if p.dirty {
		p.result = Run(p.refs, p.state)
		p.dirty = false
		p.version++
	}
	return p.result
}

// Version returns how many times the results have been computed.
func (p *Pipeline) Version() int {
	return p.version
}

// Years returns YearRange over the unfiltered input.
func (p *Pipeline) Years() []int {
	return YearRange(p.refs)
}

func sameSlice(a, b []reference.Reference) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
