// Package research decodes the document returned by the paper-generation
// backend.
package research

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/reference"
)

// Status values reported by the backend.
const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// ErrGenerationFailed is returned when the backend reports a failed run.
var ErrGenerationFailed = errors.New("paper generation failed")

// Document is a complete backend response for one topic.
type Document struct {
	Topic     string                `json:"topic"`
	Status    string                `json:"status"`
	Message   string                `json:"message,omitempty"`
	Papers    []reference.Reference `json:"papers"`
	Summaries Summaries             `json:"summaries"`
	Citations Citations             `json:"citations"`
	Draft     Draft                 `json:"paper_draft"`
	Analytics Analytics             `json:"analytics"`
}

// Summaries groups the backend summaries by type.
type Summaries struct {
	Individual  []PaperSummary       `json:"individual,omitempty"`
	Thematic    []ThematicSummary    `json:"thematic,omitempty"`
	KeyFindings []string             `json:"key_findings,omitempty"`
	Methodology []MethodologySummary `json:"methodology,omitempty"`
}

// PaperSummary summarizes one paper.
type PaperSummary struct {
	PaperID string `json:"paper_id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// ThematicSummary summarizes a theme across papers.
type ThematicSummary struct {
	Theme    string   `json:"theme"`
	Summary  string   `json:"summary"`
	PaperIDs []string `json:"papers,omitempty"`
}

// MethodologySummary describes a research approach seen across papers.
type MethodologySummary struct {
	Approach    string   `json:"approach"`
	Description string   `json:"description"`
	PaperIDs    []string `json:"papers,omitempty"`
}

// Citations is the citation block of a Document.
type Citations struct {
	Bibliography       []reference.Reference `json:"bibliography"`
	FormattedCitations map[string][]string   `json:"formatted_citations,omitempty"`
	InText             []InTextCitation      `json:"in_text_citations,omitempty"`
	Network            *citation.Network     `json:"citation_network,omitempty"`
}

// InTextCitation places a citation in the context of a summary.
type InTextCitation struct {
	PaperID        string  `json:"paper_id"`
	PaperTitle     string  `json:"paper_title"`
	Context        string  `json:"context"`
	CitationText   string  `json:"citation_text"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Decode reads a Document from r. A document whose status is "error" is
// returned together with an error wrapping ErrGenerationFailed.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding research document: %w", err)
	}
	if doc.Status == StatusError {
		msg := doc.Message
		if msg == "" {
			msg = "no details from backend"
		}
		return &doc, fmt.Errorf("%w: %s", ErrGenerationFailed, msg)
	}
	return &doc, nil
}

// References returns the bibliography, or the retrieved papers when the
// backend sent no bibliography.
func (d *Document) References() []reference.Reference {
	if len(d.Citations.Bibliography) > 0 {
		return d.Citations.Bibliography
	}
	return d.Papers
}

// Network returns the citation network sent by the backend, building one
// from the references when it is missing.
func (d *Document) Network() citation.Network {
	if d.Citations.Network != nil {
		return *d.Citations.Network
	}
	return citation.BuildNetwork(d.References())
}
