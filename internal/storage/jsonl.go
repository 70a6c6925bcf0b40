// Package storage handles data persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/paperview/internal/reference"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all references from a JSONL file.
func ReadAll(path string) ([]reference.Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening refs file: %w", err)
	}
	defer f.Close()

	var refs []reference.Reference
	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var ref reference.Reference
		if err := json.Unmarshal(line, &ref); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		refs = append(refs, ref)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading refs file: %w", err)
	}

	return refs, nil
}

// Append adds a reference to the end of a JSONL file.
func Append(path string, ref reference.Reference) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening refs file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(ref)
	if err != nil {
		return fmt.Errorf("encoding reference: %w", err)
	}
	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing reference: %w", err)
	}
	return nil
}

// WriteAll writes all references to a JSONL file, replacing existing content.
func WriteAll(path string, refs []reference.Reference) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating refs file: %w", err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, ref := range refs {
		if err := enc.Encode(ref); err != nil {
			f.Close()
			return fmt.Errorf("encoding reference %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing refs file: %w", err)
	}
	return f.Close()
}

// Merge appends the references from incoming that are not already in the
// JSONL file at path, matching by DOI first and then ID. IDs that collide
// with a different paper are made unique. It returns the number added.
func Merge(path string, incoming []reference.Reference) (int, error) {
	existing, err := ReadAll(path)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, ref := range incoming {
		if _, found := FindByDOI(existing, ref.DOI); found {
			continue
		}
		if i, found := FindByID(existing, ref.ID); found && sameTitle(existing[i], ref) {
			continue
		}
		ref.ID = GenerateUniqueID(existing, ref.ID)
		if err := Append(path, ref); err != nil {
			return added, err
		}
		existing = append(existing, ref)
		added++
	}
	return added, nil
}

func sameTitle(a, b reference.Reference) bool {
	return strings.EqualFold(strings.TrimSpace(a.Title), strings.TrimSpace(b.Title))
}

// FindByDOI searches for a reference by DOI, ignoring case.
func FindByDOI(refs []reference.Reference, doi string) (int, bool) {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return -1, false
	}
	for i, ref := range refs {
		if strings.EqualFold(strings.TrimSpace(ref.DOI), doi) {
			return i, true
		}
	}
	return -1, false
}

// FindByID searches for a reference by ID.
func FindByID(refs []reference.Reference, id string) (int, bool) {
	for i, ref := range refs {
		if ref.ID == id {
			return i, true
		}
	}
	return -1, false
}

// GenerateUniqueID returns an ID that doesn't conflict with existing references.
// If the base ID exists, appends -2, -3, etc. An empty base becomes "ref".
func GenerateUniqueID(refs []reference.Reference, baseID string) string {
	if baseID == "" {
		baseID = "ref"
	}
	if _, found := FindByID(refs, baseID); !found {
		return baseID
	}

	// Start at 2: baseID is taken, so first duplicate becomes baseID-2
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", baseID, i)
		if _, found := FindByID(refs, candidate); !found {
			return candidate
		}
	}
}
