package summary

import (
	"regexp"
	"strings"
)

// LineKind classifies a line of the raw stream.
type LineKind int

const (
	LineHeading LineKind = iota + 1
	LineItem
)

// Line is one drawable line of the raw stream. For items, Bullet reports
// whether a bullet glyph precedes the text; numbered items lose their number
// and are drawn without one.
type Line struct {
	Kind   LineKind `json:"kind"`
	Text   string   `json:"text"`
	Bullet bool     `json:"bullet,omitempty"`
}

var numberedPrefix = regexp.MustCompile(`^\d+\.\s*`)

// Lines classifies text line by line without grouping into categories.
// A line wrapped entirely in bold markers is a heading; lines starting with
// the bullet marker or "-" are bulleted items; "N." lines are plain items.
// Title and metadata lines and everything else are dropped.
func Lines(text string, vocab Vocabulary) []Line {
	var out []Line
	for _, line := range splitLines(text) {
		if vocab.isPreamble(line) {
			continue
		}
		switch {
		case len(line) > 2*len(Marker) && strings.HasPrefix(line, Marker) && strings.HasSuffix(line, Marker):
			out = append(out, Line{Kind: LineHeading, Text: StripMarkers(line)})
		case strings.HasPrefix(line, vocab.Bullet) || strings.HasPrefix(line, "-"):
			rest := strings.TrimPrefix(line, "-")
			if strings.HasPrefix(line, vocab.Bullet) {
				rest = strings.TrimPrefix(line, vocab.Bullet)
			}
			out = append(out, Line{Kind: LineItem, Text: strings.TrimSpace(rest), Bullet: true})
		case numberedPrefix.MatchString(line):
			out = append(out, Line{Kind: LineItem, Text: numberedPrefix.ReplaceAllString(line, "")})
		}
	}
	return out
}
