package citation

import (
	"strings"
	"testing"

	"github.com/matsen/paperview/internal/reference"
)

func TestBibliography(t *testing.T) {
	refs := []reference.Reference{
		exampleRef(),
		{Authors: []string{"Jane Doe"}, Title: "Solo", Year: "2020"},
	}

	got := Bibliography(refs, APA)
	want := "A Smith, & B Lee (2021). X. J, 5, 1-10\n\nJane Doe (2020). Solo."
	if got != want {
		t.Errorf("Bibliography() =\n%q\nwant\n%q", got, want)
	}

	if parts := strings.Split(got, EntrySeparator); len(parts) != len(refs) {
		t.Errorf("Bibliography() has %d entries, want %d", len(parts), len(refs))
	}
}

func TestBibliography_Empty(t *testing.T) {
	if got := Bibliography(nil, IEEE); got != "" {
		t.Errorf("Bibliography(nil) = %q, want empty", got)
	}
}

func TestFilename(t *testing.T) {
	for _, style := range Styles() {
		want := "references_" + style.String() + ".txt"
		if got := Filename(style); got != want {
			t.Errorf("Filename(%s) = %q, want %q", style, got, want)
		}
	}
}

func TestInText(t *testing.T) {
	tests := []struct {
		ref  reference.Reference
		want string
	}{
		{exampleRef(), "(A Smith, 2021)"},
		{reference.Reference{Authors: []string{"Jane Doe"}}, "(Jane Doe)"},
		{reference.Reference{Year: "1999"}, "(Unknown, 1999)"},
	}
	for _, tt := range tests {
		if got := InText(tt.ref); got != tt.want {
			t.Errorf("InText(%+v) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestReplacePlaceholders(t *testing.T) {
	refs := []reference.Reference{
		exampleRef(),
		{Authors: []string{"Jane Doe"}, Title: "Solo", Year: "2020"},
	}

	text := "See [1] and [2]; also [1]. Missing [3] and [0]."
	got := ReplacePlaceholders(text, refs, IEEE)
	want := `See A Smith, B Lee, "X," J, vol. 5, pp. 1-10, 2021 and Jane Doe, "Solo," 2020; also A Smith, B Lee, "X," J, vol. 5, pp. 1-10, 2021. Missing [3] and [0].`
	if got != want {
		t.Errorf("ReplacePlaceholders() =\n%q\nwant\n%q", got, want)
	}

	if got := ReplacePlaceholders(text, nil, APA); got != text {
		t.Errorf("ReplacePlaceholders(nil refs) changed text: %q", got)
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("a [2] b [1] c [2] d [10]")
	want := []int{2, 1, 10}
	if len(got) != len(want) {
		t.Fatalf("Placeholders() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Placeholders()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
