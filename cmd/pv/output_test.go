package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matsen/paperview/internal/backend"
	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/config"
	"github.com/matsen/paperview/internal/query"
	"github.com/matsen/paperview/internal/reference"
	"github.com/matsen/paperview/internal/research"
	"github.com/matsen/paperview/internal/storage"
)

// isolateConfig points the global config at an empty temp directory.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	config.ResetGlobalConfigCache()
	t.Cleanup(config.ResetGlobalConfigCache)
	return dir
}

func TestBackendErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantExit int
		wantCode string
	}{
		{"auth", fmt.Errorf("%w: %w", backend.ErrAuthError, &backend.APIError{StatusCode: 401}), ExitAuthError, "auth_error"},
		{"forbidden status", &backend.APIError{StatusCode: 403}, ExitAuthError, "auth_error"},
		{"rate limited", fmt.Errorf("%w: %w", backend.ErrRateLimited, &backend.APIError{StatusCode: 429}), ExitBackendError, "rate_limited"},
		{"generation failed", fmt.Errorf("%w: no papers found", research.ErrGenerationFailed), ExitBackendError, "generation_failed"},
		{"empty topic", backend.ErrEmptyTopic, ExitError, "invalid_request"},
		{"network", fmt.Errorf("%w: connection refused", backend.ErrNetworkError), ExitBackendError, "unavailable"},
		{"server error", &backend.APIError{StatusCode: 502}, ExitBackendError, "unavailable"},
		{"bad body", backend.ErrInvalidResponse, ExitBackendError, "api_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotExit, gotCode := backendErrorCode(tt.err)
			if gotExit != tt.wantExit || gotCode != tt.wantCode {
				t.Errorf("backendErrorCode() = (%d, %q), want (%d, %q)", gotExit, gotCode, tt.wantExit, tt.wantCode)
			}
		})
	}
}

func TestParseStyleFlag(t *testing.T) {
	isolateConfig(t)

	tests := []struct {
		value   string
		want    citation.Style
		wantErr bool
	}{
		{"", citation.APA, false},
		{"mla", citation.MLA, false},
		{"Chicago", citation.Chicago, false},
		{" IEEE ", citation.IEEE, false},
		{"harvard", citation.APA, true},
	}
	for _, tt := range tests {
		got, err := parseStyleFlag(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseStyleFlag(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseStyleFlag(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestParseStyleFlag_ConfigDefault(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, config.GlobalConfigDir, config.GlobalConfigFile)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("default_style: chicago\n"), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := parseStyleFlag("")
	if err != nil {
		t.Fatalf("parseStyleFlag() error = %v", err)
	}
	if got != citation.Chicago {
		t.Errorf("parseStyleFlag(\"\") = %v, want chicago from config", got)
	}
}

func TestQueryState(t *testing.T) {
	state, err := queryState("smith", "citations", "2021")
	if err != nil {
		t.Fatalf("queryState() error = %v", err)
	}
	want := query.State{Search: "smith", Sort: query.ByCitations, Year: "2021"}
	if state != want {
		t.Errorf("queryState() = %+v, want %+v", state, want)
	}

	state, err = queryState("", "", query.AllYears)
	if err != nil {
		t.Fatalf("queryState() error = %v", err)
	}
	if state.Sort != query.ByRelevance {
		t.Errorf("default sort = %v, want relevance", state.Sort)
	}

	_, err = queryState("", "newest", "")
	if err == nil || !strings.Contains(err.Error(), "alphabetical") {
		t.Errorf("queryState(bad sort) error = %v, want list of valid keys", err)
	}
}

func TestValidLength(t *testing.T) {
	for _, l := range []string{"short", "medium", "long"} {
		if !validLength(l) {
			t.Errorf("validLength(%q) = false", l)
		}
	}
	if validLength("epic") {
		t.Error("validLength(\"epic\") = true")
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer title here", 10, "a longe..."},
		{"Ünïcödé títlé", 8, "Ünïcö..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"abc":              "****",
		"sk-live-12345678": "****5678",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("3f2a9c1e-0000-4000-8000-000000000000"); got != "3f2a9c1e" {
		t.Errorf("shortID() = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(short) = %q", got)
	}
}

func TestFormatRunsTable(t *testing.T) {
	runs := []storage.RunSummary{
		{ID: "3f2a9c1e-aaaa", Topic: "Machine Learning in Healthcare", Style: "apa", PaperCount: 42, WordCount: 3200, CreatedAt: time.Now().Add(-2 * time.Hour)},
		{ID: "77b0d2c4-bbbb", Topic: "CRISPR", Style: "ieee", PaperCount: 7, WordCount: 950, CreatedAt: time.Now().Add(-48 * time.Hour)},
	}
	out := formatRunsTable(runs)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID        TOPIC") {
		t.Errorf("header = %q", lines[0])
	}
	for _, want := range []string{"3f2a9c1e", "Machine Learning in Healthcare", "3,200", "2 hours ago"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row 1 missing %q: %q", want, lines[1])
		}
	}
	if !strings.Contains(lines[2], "ieee") || !strings.Contains(lines[2], "2 days ago") {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestFormatRefsTable(t *testing.T) {
	refs := []reference.Reference{
		{Title: "Deep Learning for Diagnosis", Authors: []string{"A Smith"}, Year: "2021", RelevanceScore: 0.91, CitationsCount: 1200},
		{Title: "Untitled Preprint", Year: "", RelevanceScore: 0.5},
	}
	out := formatRefsTable(refs)
	for _, want := range []string{"YEAR", "2021", "91%", "1,200", "A Smith", "Deep Learning for Diagnosis", "50%"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCitations(t *testing.T) {
	refs := []reference.Reference{
		{Title: "Deep Learning for Diagnosis", Authors: []string{"A Smith", "B Lee"}, Year: "2021", Journal: "Nature Medicine"},
		{Title: "Anonymous Notes"},
	}

	got := formatCitations(refs, citation.MLA, false)
	if len(got) != 2 || got[0] != citation.Format(refs[0], citation.MLA) {
		t.Errorf("formatCitations(MLA) = %q", got)
	}

	got = formatCitations(refs, citation.MLA, true)
	want := []string{"(A Smith, 2021)", "(Unknown)"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("formatCitations(in-text) = %q, want %q", got, want)
	}
}

func TestValidateCiteFlags(t *testing.T) {
	tests := []struct {
		inText, download bool
		wantErr          bool
	}{
		{false, false, false},
		{true, false, false},
		{false, true, false},
		{true, true, true},
	}

	for _, tt := range tests {
		err := validateCiteFlags(tt.inText, tt.download)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateCiteFlags(%v, %v) error = %v, wantErr %v", tt.inText, tt.download, err, tt.wantErr)
		}
	}
}

func TestConfigValuesMasksAPIKey(t *testing.T) {
	cfg := &config.GlobalConfig{BackendURL: "http://gpu-box:8000", APIKey: "sk-secret-9876"}
	values := configValues(cfg)
	if values["api_key"] != "****9876" {
		t.Errorf("api_key = %q, want masked", values["api_key"])
	}
	if values["backend_url"] != "http://gpu-box:8000" {
		t.Errorf("backend_url = %q", values["backend_url"])
	}
	if _, ok := values["timeout"]; !ok {
		t.Error("configValues missing timeout key")
	}
}
