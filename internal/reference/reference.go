// Package reference defines the bibliographic record returned by the
// generation backend.
package reference

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Reference represents one paper in a generated bibliography.
// Values are treated as immutable once decoded.
type Reference struct {
	// Identity
	ID  string `json:"id"`
	DOI string `json:"doi,omitempty"`
	URL string `json:"url,omitempty"`

	// Metadata
	Title    string   `json:"title"`
	Authors  []string `json:"authors"` // Citation order
	Journal  string   `json:"journal,omitempty"`
	Year     Year     `json:"year"`
	Volume   string   `json:"volume,omitempty"`
	Issue    string   `json:"issue,omitempty"`
	Pages    string   `json:"pages,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Source   string   `json:"source,omitempty"` // semantic_scholar, crossref, arxiv, ...

	// Scores computed by the backend
	RelevanceScore float64 `json:"relevance_score"` // 0..1
	CitationsCount int     `json:"citations_count"`
}

// RelevancePercent returns the relevance score as a rounded percentage.
func (r Reference) RelevancePercent() int {
	return int(math.Round(r.RelevanceScore * 100))
}

// Year is a publication year as sent by the backend. It is kept as text
// because the backend does not guarantee a number; use Int to parse it.
type Year string

// Int returns the year as an integer. ok is false for empty or
// unparseable years.
func (y Year) Int() (year int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(y)))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (y Year) String() string {
	return string(y)
}

// UnmarshalJSON accepts a JSON string, number, or null.
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*y = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding year: %w", err)
		}
		*y = Year(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding year: %w", err)
	}
	// 2021.0 from loosely typed producers is still 2021
	if f, err := n.Float64(); err == nil && f == math.Trunc(f) {
		*y = Year(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*y = Year(n.String())
	return nil
}
