// Package viz renders a run's citation network as an interactive HTML page.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Topic string `json:"-"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one paper in the graph.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"` // "Smith 2021"

	// Tooltip fields
	Title     string `json:"title"`
	Authors   string `json:"authors,omitempty"`
	Year      string `json:"year,omitempty"`
	Relevance int    `json:"relevance"` // Percent
	Citations int    `json:"citations"`

	Central         bool `json:"central"`
	ConnectionCount int  `json:"connectionCount"`
}

// Edge links two papers that share keywords.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"` // Shared keywords
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
