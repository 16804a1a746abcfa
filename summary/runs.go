package summary

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Marker delimits a bold span inside a bullet.
const Marker = "**"

var (
	runLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Marker", Pattern: `\*\*`},
		{Name: "Text", Pattern: `[^*]+|\*`},
	})
	markerTokenType = runLexer.Symbols()["Marker"]
)

// Run is a contiguous piece of a bullet drawn in one weight.
type Run struct {
	Text string `json:"text"`
	Bold bool   `json:"bold"`
}

// SplitRuns splits s on bold markers. A segment is bold only when it is
// opened and closed by a marker; after an odd number of markers the trailing
// segment has no partner and stays plain. Empty segments are dropped.
func SplitRuns(s string) []Run {
	segments := splitSegments(s)
	last := len(segments) - 1
	runs := make([]Run, 0, len(segments))
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		runs = append(runs, Run{Text: seg, Bold: i%2 == 1 && i != last})
	}
	return runs
}

// StripMarkers removes every bold marker from s.
func StripMarkers(s string) string {
	return strings.Join(splitSegments(s), "")
}

// SplitHeadline applies the action-plan convention: the text before the first
// colon is a bold headline and the remainder, colon included, is plain.
// ok is false when s contains no colon.
func SplitHeadline(s string) (headline, rest string, ok bool) {
	i := strings.Index(s, ":")
	if i < 0 {
		return "", "", false
	}
	return StripMarkers(s[:i]), StripMarkers(s[i:]), true
}

// HeadlineRuns returns the runs of an action item: a bold headline followed by
// the plain remainder when the item has a colon, otherwise its inline runs.
func HeadlineRuns(s string) []Run {
	headline, rest, ok := SplitHeadline(s)
	if !ok {
		return SplitRuns(s)
	}
	runs := make([]Run, 0, 2)
	if headline != "" {
		runs = append(runs, Run{Text: headline, Bold: true})
	}
	if rest != "" {
		runs = append(runs, Run{Text: rest})
	}
	return runs
}

// splitSegments returns the text between markers; n markers yield n+1 segments.
func splitSegments(s string) []string {
	lex, err := runLexer.Lex("", strings.NewReader(s))
	if err != nil {
		return strings.Split(s, Marker)
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return strings.Split(s, Marker)
	}

	segments := []string{}
	var current strings.Builder
	for _, tok := range tokens {
		if tok.EOF() {
			break
		}
		if tok.Type == markerTokenType {
			segments = append(segments, current.String())
			current.Reset()
			continue
		}
		current.WriteString(tok.Value)
	}
	return append(segments, current.String())
}
