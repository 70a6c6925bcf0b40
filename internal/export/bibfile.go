package export

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/matsen/paperview/internal/reference"
)

var (
	// @type{key,
	entryStartRegex = regexp.MustCompile(`@\w+\{([^,]+),`)
	// doi = {value} or doi = "value"
	doiFieldRegex = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// BibIndex records the keys and DOIs already present in a .bib file.
type BibIndex struct {
	Keys map[string]bool
	DOIs map[string]string // normalized DOI → key
}

// NewBibIndex creates an empty index.
func NewBibIndex() *BibIndex {
	return &BibIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// Has reports whether ref is already present. DOI is the primary match;
// the cite key is the fallback.
func (idx *BibIndex) Has(ref reference.Reference) bool {
	if doi := normalizeDOI(ref.DOI); doi != "" {
		if _, ok := idx.DOIs[doi]; ok {
			return true
		}
	}
	return idx.Keys[CiteKey(ref)]
}

func (idx *BibIndex) add(ref reference.Reference) {
	key := CiteKey(ref)
	idx.Keys[key] = true
	if doi := normalizeDOI(ref.DOI); doi != "" {
		idx.DOIs[doi] = key
	}
}

// ReadBibIndex builds an index from an existing .bib file. A missing file
// yields an empty index.
func ReadBibIndex(path string) (*BibIndex, error) {
	idx := NewBibIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string
	for scanner.Scan() {
		line := scanner.Text()
		if m := entryStartRegex.FindStringSubmatch(line); len(m) > 1 {
			currentKey = strings.TrimSpace(m[1])
			idx.Keys[currentKey] = true
		}
		if m := doiFieldRegex.FindStringSubmatch(line); len(m) > 1 {
			if doi := normalizeDOI(m[1]); doi != "" && currentKey != "" {
				idx.DOIs[doi] = currentKey
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return idx, nil
}

// AppendBibTeX appends the references not yet in the .bib file at path and
// returns how many were written. Duplicates within refs are skipped too.
func AppendBibTeX(path string, refs []reference.Reference) (int, error) {
	idx, err := ReadBibIndex(path)
	if err != nil {
		return 0, err
	}

	var fresh []reference.Reference
	for _, ref := range refs {
		if idx.Has(ref) {
			continue
		}
		idx.add(ref)
		fresh = append(fresh, ref)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.WriteString("\n" + ToBibTeXList(fresh)); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return len(fresh), nil
}

// normalizeDOI strips resolver prefixes and lowercases a DOI.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "doi.org/", "DOI:", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return strings.ToLower(strings.TrimSpace(doi))
}
