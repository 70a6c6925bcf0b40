package citation

import (
	"strings"

	"github.com/matsen/paperview/internal/reference"
)

// formatters holds one pure formatting function per style.
var formatters = map[Style]func(reference.Reference) string{
	APA:     formatAPA,
	MLA:     formatMLA,
	Chicago: formatChicago,
	IEEE:    formatIEEE,
}

// Format renders ref in the given style. Missing optional fields are left
// out along with their punctuation. An invalid style falls back to the
// default format.
func Format(ref reference.Reference, style Style) string {
	if f, ok := formatters[style]; ok {
		return f(ref)
	}
	return formatDefault(ref)
}

// FormatNamed renders ref in the style called name. Unknown names use the
// default format rather than failing.
func FormatNamed(ref reference.Reference, name string) string {
	if style, ok := ParseStyle(name); ok {
		return Format(ref, style)
	}
	return formatDefault(ref)
}

// formatAPA: Authors (Year). Title. Journal, Volume, Pages https://doi.org/DOI
func formatAPA(ref reference.Reference) string {
	var b strings.Builder
	b.WriteString(apaAuthors(ref.Authors))
	if ref.Year != "" {
		writeSpaced(&b, "("+ref.Year.String()+")")
	}
	terminate(&b)

	if ref.Title != "" {
		writeSpaced(&b, ref.Title)
		terminate(&b)
	}

	if ref.Journal != "" {
		writeSpaced(&b, ref.Journal)
		if ref.Volume != "" {
			b.WriteString(", " + ref.Volume)
		}
		if ref.Pages != "" {
			b.WriteString(", " + ref.Pages)
		}
	}

	if ref.DOI != "" {
		writeSpaced(&b, doiURL(ref.DOI))
	}
	return b.String()
}

// formatMLA: Authors. "Title." Journal, vol. Volume, Year, pp. Pages
func formatMLA(ref reference.Reference) string {
	var b strings.Builder
	b.WriteString(listAuthors(ref.Authors, ", and "))
	terminate(&b)

	if ref.Title != "" {
		writeSpaced(&b, `"`+ref.Title+`."`)
	}

	if ref.Journal != "" {
		writeSpaced(&b, ref.Journal)
		if ref.Volume != "" {
			b.WriteString(", vol. " + ref.Volume)
		}
		if ref.Year != "" {
			b.WriteString(", " + ref.Year.String())
		}
		if ref.Pages != "" {
			b.WriteString(", pp. " + ref.Pages)
		}
	}
	return b.String()
}

// formatChicago: Authors. "Title." Journal Volume, no. Issue (Year): Pages https://doi.org/DOI
// Without pages the issue is dropped: Journal Volume (Year).
func formatChicago(ref reference.Reference) string {
	var b strings.Builder
	b.WriteString(listAuthors(ref.Authors, ", and "))
	terminate(&b)

	if ref.Title != "" {
		writeSpaced(&b, `"`+ref.Title+`."`)
	}

	if ref.Journal != "" {
		writeSpaced(&b, ref.Journal)
		if ref.Volume != "" {
			b.WriteString(" " + ref.Volume)
		}
		if ref.Pages != "" && ref.Issue != "" {
			b.WriteString(", no. " + ref.Issue)
		}
		if ref.Year != "" {
			b.WriteString(" (" + ref.Year.String() + ")")
		}
		if ref.Pages != "" {
			b.WriteString(": " + ref.Pages)
		}
	}

	if ref.DOI != "" {
		writeSpaced(&b, doiURL(ref.DOI))
	}
	return b.String()
}

// formatIEEE: Authors, "Title," Journal, vol. Volume, pp. Pages, Year
func formatIEEE(ref reference.Reference) string {
	var b strings.Builder
	b.WriteString(ieeeAuthors(ref.Authors))

	if ref.Title != "" {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		writeSpaced(&b, `"`+ref.Title+`,"`)
	}

	var tail []string
	if ref.Journal != "" {
		tail = append(tail, ref.Journal)
		if ref.Volume != "" {
			tail = append(tail, "vol. "+ref.Volume)
		}
		if ref.Pages != "" {
			tail = append(tail, "pp. "+ref.Pages)
		}
	}
	if ref.Year != "" {
		tail = append(tail, ref.Year.String())
	}
	if len(tail) > 0 {
		if ref.Title == "" && b.Len() > 0 {
			b.WriteString(",")
		}
		writeSpaced(&b, strings.Join(tail, ", "))
	}
	return b.String()
}

// formatDefault: Authors (Year). Title. Journal
func formatDefault(ref reference.Reference) string {
	var b strings.Builder
	b.WriteString(strings.Join(nonEmpty(ref.Authors), ", "))
	if ref.Year != "" {
		writeSpaced(&b, "("+ref.Year.String()+")")
	}
	terminate(&b)
	if ref.Title != "" {
		writeSpaced(&b, ref.Title)
		terminate(&b)
	}
	if ref.Journal != "" {
		writeSpaced(&b, ref.Journal)
	}
	return b.String()
}

// writeSpaced appends s, separated by a space unless b is empty.
func writeSpaced(b *strings.Builder, s string) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(s)
}

// terminate ends the current sentence with a period unless it already
// ends in terminal punctuation or nothing has been written.
func terminate(b *strings.Builder) {
	s := b.String()
	if s == "" || strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!") {
		return
	}
	b.WriteByte('.')
}

// doiURL returns the resolver URL for a DOI, leaving full URLs intact.
func doiURL(doi string) string {
	doi = strings.TrimSpace(doi)
	if strings.HasPrefix(doi, "http://") || strings.HasPrefix(doi, "https://") {
		return doi
	}
	return "https://doi.org/" + strings.TrimPrefix(doi, "doi:")
}
