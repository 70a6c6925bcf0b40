package research

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Analytics holds the metrics the backend computes for a run.
type Analytics struct {
	WordCounts    map[string]int     `json:"word_counts,omitempty"`    // Section → words, plus "total"
	QualityScores map[string]float64 `json:"quality_scores,omitempty"` // Metric → 0..1
	SourceStats   SourceStats        `json:"source_stats"`
	CitationStats CitationStats      `json:"citation_stats"`
	Trends        Trends             `json:"trends"`
}

// SourceStats describes where the retrieved papers came from.
type SourceStats struct {
	TotalSources     int            `json:"total_sources"`
	BySource         map[string]int `json:"by_source,omitempty"`
	AverageCitations float64        `json:"average_citations"`
	OldestYear       int            `json:"oldest_year,omitempty"`
	NewestYear       int            `json:"newest_year,omitempty"`
}

// CitationStats describes the bibliography.
type CitationStats struct {
	TotalCitations   int     `json:"total_citations"`
	UniqueAuthors    int     `json:"unique_authors"`
	AverageRelevance float64 `json:"average_relevance"`
}

// Trends are publication counts keyed by year or topic.
type Trends struct {
	ByYear  map[string]int `json:"by_year,omitempty"`
	ByTopic map[string]int `json:"by_topic,omitempty"`
}

// UnmarshalJSON decodes analytics leniently. Metrics sent as numeric strings
// are converted; malformed values decode as zero and malformed map entries
// are dropped, so a bad metric never fails the whole document.
func (a *Analytics) UnmarshalJSON(data []byte) error {
	obj := decodeObject(data)
	source := decodeObject(obj["source_stats"])
	cites := decodeObject(obj["citation_stats"])
	trends := decodeObject(obj["trends"])

	*a = Analytics{
		WordCounts:    obj.intMap("word_counts"),
		QualityScores: obj.floatMap("quality_scores"),
		SourceStats: SourceStats{
			TotalSources:     source.intValue("total_sources"),
			BySource:         source.intMap("by_source"),
			AverageCitations: source.floatValue("average_citations"),
			OldestYear:       source.intValue("oldest_year"),
			NewestYear:       source.intValue("newest_year"),
		},
		CitationStats: CitationStats{
			TotalCitations:   cites.intValue("total_citations"),
			UniqueAuthors:    cites.intValue("unique_authors"),
			AverageRelevance: cites.floatValue("average_relevance"),
		},
		Trends: Trends{
			ByYear:  trends.intMap("by_year"),
			ByTopic: trends.intMap("by_topic"),
		},
	}
	return nil
}

type rawObject map[string]json.RawMessage

// decodeObject returns nil for anything that is not a JSON object.
func decodeObject(data json.RawMessage) rawObject {
	var obj rawObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	return obj
}

func (o rawObject) intValue(key string) int {
	n, _ := parseInt(o[key])
	return n
}

func (o rawObject) floatValue(key string) float64 {
	f, _ := parseFloat(o[key])
	return f
}

func (o rawObject) intMap(key string) map[string]int {
	entries := decodeObject(o[key])
	if len(entries) == 0 {
		return nil
	}
	out := make(map[string]int, len(entries))
	for k, v := range entries {
		if n, ok := parseInt(v); ok {
			out[k] = n
		}
	}
	return out
}

func (o rawObject) floatMap(key string) map[string]float64 {
	entries := decodeObject(o[key])
	if len(entries) == 0 {
		return nil
	}
	out := make(map[string]float64, len(entries))
	for k, v := range entries {
		if f, ok := parseFloat(v); ok {
			out[k] = f
		}
	}
	return out
}

// parseFloat accepts a JSON number or a string holding one.
func parseFloat(data json.RawMessage) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, false
	}
	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseInt(data json.RawMessage) (int, bool) {
	f, ok := parseFloat(data)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(math.Round(f)), true
}
