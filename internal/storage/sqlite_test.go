package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matsen/paperview/internal/research"
)

// setupTestDB opens an empty database with a deterministic clock.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return db
}

func loadDocument(t *testing.T) *research.Document {
	t.Helper()
	f, err := os.Open("../research/testdata/document.json")
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	defer f.Close()

	doc, err := research.Decode(f)
	if err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	return doc
}

func TestSaveAndGetRun(t *testing.T) {
	db := setupTestDB(t)
	doc := loadDocument(t)

	sum, err := db.SaveRun(doc, "apa")
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if len(sum.ID) != 36 {
		t.Errorf("ID = %q, want a UUID", sum.ID)
	}
	if sum.PaperCount != 2 || sum.Topic != doc.Topic || sum.Style != "apa" {
		t.Errorf("summary = %+v", sum)
	}

	run, err := db.GetRun(sum.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.ID != sum.ID || !run.CreatedAt.Equal(sum.CreatedAt) {
		t.Errorf("run summary = %+v, want %+v", run.RunSummary, sum)
	}
	if got := run.Document.References(); len(got) != 2 || got[0].Title != "Deep Learning for Diagnosis" {
		t.Errorf("stored references = %+v", got)
	}
	if run.Document.Draft.Sections["conclusion"].Content != "More prospective studies are needed." {
		t.Errorf("stored draft = %+v", run.Document.Draft)
	}
}

func TestGetRun_Prefix(t *testing.T) {
	db := setupTestDB(t)
	sum, err := db.SaveRun(loadDocument(t), "apa")
	if err != nil {
		t.Fatal(err)
	}

	run, err := db.GetRun(sum.ID[:8])
	if err != nil {
		t.Fatalf("GetRun(prefix) error = %v", err)
	}
	if run.ID != sum.ID {
		t.Errorf("GetRun(prefix) = %s, want %s", run.ID, sum.ID)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	db := setupTestDB(t)

	for _, id := range []string{"", "missing"} {
		if _, err := db.GetRun(id); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("GetRun(%q) error = %v, want ErrRunNotFound", id, err)
		}
	}
	if _, err := db.LatestRun(); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LatestRun() on empty DB error = %v, want ErrRunNotFound", err)
	}
}

func TestListRunsAndLatest(t *testing.T) {
	db := setupTestDB(t)
	doc := loadDocument(t)

	var ids []string
	for _, topic := range []string{"first", "second", "third"} {
		d := *doc
		d.Topic = topic
		sum, err := db.SaveRun(&d, "mla")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, sum.ID)
	}

	runs, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 3 || runs[0].Topic != "third" || runs[2].Topic != "first" {
		t.Errorf("ListRuns() order = %+v", runs)
	}

	limited, err := db.ListRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("ListRuns(2) returned %d", len(limited))
	}

	latest, err := db.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun() error = %v", err)
	}
	if latest.ID != ids[2] {
		t.Errorf("LatestRun() = %s, want %s", latest.ID, ids[2])
	}

	if n, err := db.Count(); err != nil || n != 3 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}

func TestSearchRuns(t *testing.T) {
	db := setupTestDB(t)
	doc := loadDocument(t)

	if _, err := db.SaveRun(doc, "apa"); err != nil {
		t.Fatal(err)
	}
	other := &research.Document{Topic: "Quantum Chemistry", Status: research.StatusCompleted}
	if _, err := db.SaveRun(other, "apa"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"healthcare", []string{"Machine Learning in Healthcare"}},
		{"Diaz", []string{"Machine Learning in Healthcare"}},
		{"quantum", []string{"Quantum Chemistry"}},
		{"risk models", []string{"Machine Learning in Healthcare"}},
		{"nothing-matches", nil},
		{"", []string{"Quantum Chemistry", "Machine Learning in Healthcare"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			runs, err := db.SearchRuns(tt.query, 10)
			if err != nil {
				t.Fatalf("SearchRuns() error = %v", err)
			}
			var got []string
			for _, r := range runs {
				got = append(got, r.Topic)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("SearchRuns(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestDeleteRun(t *testing.T) {
	db := setupTestDB(t)
	sum, err := db.SaveRun(loadDocument(t), "apa")
	if err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteRun(sum.ID); err != nil {
		t.Fatalf("DeleteRun() error = %v", err)
	}
	if _, err := db.GetRun(sum.ID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun() after delete error = %v", err)
	}
	if runs, _ := db.SearchRuns("healthcare", 10); len(runs) != 0 {
		t.Errorf("deleted run still searchable: %+v", runs)
	}
	if err := db.DeleteRun(sum.ID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("second DeleteRun() error = %v", err)
	}
}

func TestUpdateDraft(t *testing.T) {
	db := setupTestDB(t)
	sum, err := db.SaveRun(loadDocument(t), "apa")
	if err != nil {
		t.Fatal(err)
	}

	run, err := db.GetRun(sum.ID)
	if err != nil {
		t.Fatal(err)
	}
	edited := run.Document.Draft.WithSection("conclusion", "One two three four five six.")
	if err := db.UpdateDraft(sum.ID, edited); err != nil {
		t.Fatalf("UpdateDraft() error = %v", err)
	}

	got, err := db.GetRun(sum.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Document.Draft.Sections["conclusion"].Content != "One two three four five six." {
		t.Errorf("draft not persisted: %+v", got.Document.Draft.Sections)
	}
	if got.WordCount != edited.WordCount() {
		t.Errorf("WordCount = %d, want %d", got.WordCount, edited.WordCount())
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("UpdatedAt %v should be after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}
	if len(got.Document.Papers) != 2 {
		t.Errorf("rest of the document should survive, papers = %d", len(got.Document.Papers))
	}
}

func TestUpdateDraft_NotFound(t *testing.T) {
	db := setupTestDB(t)
	if err := db.UpdateDraft("missing", research.Draft{}); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("UpdateDraft() error = %v, want ErrRunNotFound", err)
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"  deep  ":   "deep",
		"risk-model": `"risk-model"`,
		`say "hi"`:   `"say ""hi"""`,
	}
	for in, want := range tests {
		if got := prepareFTSQuery(in); got != want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", in, got, want)
		}
	}
}
