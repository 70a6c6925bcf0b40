package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/matsen/paperview/internal/author"
	"github.com/matsen/paperview/internal/citation"
)

// FromNetwork converts a citation network into graph data. Edges whose
// endpoints are not nodes are dropped.
func FromNetwork(topic string, n citation.Network) *GraphData {
	central := make(map[string]bool, len(n.CentralPapers))
	for _, ref := range n.CentralPapers {
		central[ref.ID] = true
	}

	ids := make(map[string]bool, len(n.Nodes))
	for _, node := range n.Nodes {
		ids[node.ID] = true
	}

	counts := make(map[string]int)
	edges := make([]Edge, 0, len(n.Edges))
	for _, e := range n.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			continue
		}
		counts[e.Source]++
		counts[e.Target]++
		edges = append(edges, Edge{Source: e.Source, Target: e.Target, Weight: e.Weight})
	}

	nodes := make([]Node, 0, len(n.Nodes))
	for _, node := range n.Nodes {
		nodes = append(nodes, Node{
			ID:              node.ID,
			Label:           nodeLabel(node),
			Title:           node.Title,
			Authors:         strings.Join(node.Authors, ", "),
			Year:            node.Year.String(),
			Relevance:       int(math.Round(node.RelevanceScore * 100)),
			Citations:       node.CitationCount,
			Central:         central[node.ID],
			ConnectionCount: counts[node.ID],
		})
	}

	return &GraphData{Topic: topic, Nodes: nodes, Edges: edges}
}

// nodeLabel returns "Last Year", falling back to the ID.
func nodeLabel(n citation.Node) string {
	var label string
	if len(n.Authors) > 0 {
		label = author.Parse(n.Authors[0]).Last
	}
	if label == "" {
		label = n.ID
	}
	if n.Year != "" {
		label = fmt.Sprintf("%s %s", label, n.Year)
	}
	return label
}
