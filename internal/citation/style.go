// Package citation renders references as bibliography entries in the
// supported citation styles.
package citation

import (
	"fmt"
	"strings"
)

// Style is a citation style.
type Style int

// Supported citation styles.
const (
	APA Style = iota
	MLA
	Chicago
	IEEE
)

var styleNames = [...]string{
	APA:     "apa",
	MLA:     "mla",
	Chicago: "chicago",
	IEEE:    "ieee",
}

// Styles returns all supported styles in display order.
func Styles() []Style {
	return []Style{APA, MLA, Chicago, IEEE}
}

// Valid reports whether s is one of the supported styles.
func (s Style) Valid() bool {
	return s >= APA && s <= IEEE
}

// String returns the lowercase style name used in flags and file names.
func (s Style) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Style(%d)", int(s))
	}
	return styleNames[s]
}

// Label returns the style name as shown to people.
func (s Style) Label() string {
	switch s {
	case APA, MLA, IEEE:
		return strings.ToUpper(s.String())
	case Chicago:
		return "Chicago"
	default:
		return s.String()
	}
}

// Next returns the style after s, wrapping around.
func (s Style) Next() Style {
	if !s.Valid() {
		return APA
	}
	return (s + 1) % Style(len(styleNames))
}

// ParseStyle parses a style name case-insensitively.
func ParseStyle(name string) (Style, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range styleNames {
		if n == name {
			return Style(i), true
		}
	}
	return APA, false
}

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid citation style %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Style) UnmarshalText(text []byte) error {
	parsed, ok := ParseStyle(string(text))
	if !ok {
		return fmt.Errorf("unknown citation style %q (valid: %s)", string(text), strings.Join(styleNames[:], ", "))
	}
	*s = parsed
	return nil
}
