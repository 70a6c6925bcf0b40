package reference

// HasAuthors reports whether the reference can be cited.
// Citation formatting is degenerate for references without authors.
func (r Reference) HasAuthors() bool {
	return len(r.Authors) > 0
}

// FirstAuthor returns the first listed author, or "" if there are none.
func (r Reference) FirstAuthor() string {
	if len(r.Authors) == 0 {
		return ""
	}
	return r.Authors[0]
}
