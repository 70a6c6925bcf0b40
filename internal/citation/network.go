package citation

import (
	"sort"
	"strings"

	"github.com/matsen/paperview/internal/reference"
)

// Thresholds for the keyword co-occurrence network.
const (
	MinSharedKeywords = 2
	CentralPaperCount = 5
)

// Network links references that share keywords.
type Network struct {
	Nodes         []Node                `json:"nodes"`
	Edges         []Edge                `json:"edges"`
	CentralPapers []reference.Reference `json:"central_papers"`
	Stats         NetworkStats          `json:"network_stats"`
}

// Node is one reference in the network.
type Node struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Authors        []string       `json:"authors"`
	Year           reference.Year `json:"year"`
	RelevanceScore float64        `json:"relevance_score"`
	CitationCount  int            `json:"citation_count"`
}

// Edge connects two references; Weight is the number of shared keywords.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// NetworkStats summarizes a Network.
type NetworkStats struct {
	TotalPapers        int     `json:"total_papers"`
	TotalConnections   int     `json:"total_connections"`
	AverageConnections float64 `json:"average_connections_per_paper"`
	MostConnectedPaper string  `json:"most_connected_paper"`
	Density            float64 `json:"network_density"`
}

// BuildNetwork builds the keyword network for refs.
func BuildNetwork(refs []reference.Reference) Network {
	n := Network{
		Nodes: make([]Node, 0, len(refs)),
		Edges: []Edge{},
	}
	for _, r := range refs {
		n.Nodes = append(n.Nodes, Node{
			ID:             r.ID,
			Title:          r.Title,
			Authors:        r.Authors,
			Year:           r.Year,
			RelevanceScore: r.RelevanceScore,
			CitationCount:  r.CitationsCount,
		})
	}

	keywords := make([]map[string]bool, len(refs))
	for i, r := range refs {
		keywords[i] = keywordSet(r.Keywords)
	}
	for i := range refs {
		for j := i + 1; j < len(refs); j++ {
			shared := 0
			for k := range keywords[i] {
				if keywords[j][k] {
					shared++
				}
			}
			if shared >= MinSharedKeywords {
				n.Edges = append(n.Edges, Edge{Source: refs[i].ID, Target: refs[j].ID, Weight: shared})
			}
		}
	}

	n.CentralPapers = centralPapers(refs)
	n.Stats = networkStats(n)
	return n
}

func keywordSet(keywords []string) map[string]bool {
	set := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			set[k] = true
		}
	}
	return set
}

// centralPapers ranks by relevance, then citation count.
func centralPapers(refs []reference.Reference) []reference.Reference {
	ranked := make([]reference.Reference, len(refs))
	copy(ranked, refs)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RelevanceScore != ranked[j].RelevanceScore {
			return ranked[i].RelevanceScore > ranked[j].RelevanceScore
		}
		return ranked[i].CitationsCount > ranked[j].CitationsCount
	})
	if len(ranked) > CentralPaperCount {
		ranked = ranked[:CentralPaperCount]
	}
	return ranked
}

func networkStats(n Network) NetworkStats {
	stats := NetworkStats{
		TotalPapers:      len(n.Nodes),
		TotalConnections: len(n.Edges),
	}
	if len(n.Nodes) == 0 {
		return stats
	}
	stats.AverageConnections = float64(len(n.Edges)) / float64(len(n.Nodes))

	// First paper to reach the highest degree wins ties.
	degree := map[string]int{}
	var order []string
	for _, e := range n.Edges {
		for _, id := range []string{e.Source, e.Target} {
			if _, ok := degree[id]; !ok {
				order = append(order, id)
			}
			degree[id]++
		}
	}
	best, bestDegree := "", 0
	for _, id := range order {
		if degree[id] > bestDegree {
			best, bestDegree = id, degree[id]
		}
	}
	for _, node := range n.Nodes {
		if best != "" && node.ID == best {
			stats.MostConnectedPaper = node.Title
			break
		}
	}

	maxEdges := float64(len(n.Nodes)*(len(n.Nodes)-1)) / 2
	if maxEdges > 0 {
		stats.Density = float64(len(n.Edges)) / maxEdges
	}
	return stats
}
