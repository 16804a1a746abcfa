// Package summary parses the bullet-formatted session summary produced by the
// text generator into a fixed taxonomy of sections.
//
// The parser is deliberately lossy: lines it does not recognise are dropped
// rather than guessed at, and it never returns an error.
package summary

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Category is one of the three fixed section kinds.
type Category int

const (
	None Category = iota
	Topics
	Insights
	Actions
)

// Categories lists the categories in document order.
var Categories = []Category{Topics, Insights, Actions}

func (c Category) String() string {
	switch c {
	case Topics:
		return "topics"
	case Insights:
		return "insights"
	case Actions:
		return "actions"
	default:
		return "none"
	}
}

// Sections holds the bullets of each category in their original order.
// Items keep their raw content, bold markers included.
type Sections struct {
	Topics   []string `json:"topics"`
	Insights []string `json:"insights"`
	Actions  []string `json:"actions"`
}

// Items returns the bullets of one category.
func (s Sections) Items(c Category) []string {
	switch c {
	case Topics:
		return s.Topics
	case Insights:
		return s.Insights
	case Actions:
		return s.Actions
	default:
		return nil
	}
}

// Len returns the total number of bullets across categories.
func (s Sections) Len() int {
	return len(s.Topics) + len(s.Insights) + len(s.Actions)
}

// Empty reports whether no category has any bullet.
func (s Sections) Empty() bool { return s.Len() == 0 }

func (s *Sections) add(c Category, item string) {
	switch c {
	case Topics:
		s.Topics = append(s.Topics, item)
	case Insights:
		s.Insights = append(s.Insights, item)
	case Actions:
		s.Actions = append(s.Actions, item)
	}
}

// Parse extracts sections from text written in the Ukrainian vocabulary.
func Parse(text string) Sections {
	return ParseWith(text, Ukrainian)
}

// ParseWith extracts sections using the given vocabulary.
//
// Title and metadata lines are skipped wherever they appear. A line containing
// a header phrase switches the active category; a line starting with the bullet
// marker is appended to the active category. Anything else is dropped, as are
// bullets seen before the first header.
func ParseWith(text string, vocab Vocabulary) Sections {
	var out Sections
	lower := cases.Lower(language.Ukrainian)
	current := None

	for _, line := range splitLines(text) {
		if vocab.isPreamble(line) {
			continue
		}
		if c := matchHeader(lower.String(line), vocab); c != None {
			current = c
			continue
		}
		if current == None || !strings.HasPrefix(line, vocab.Bullet) {
			continue
		}
		item := strings.TrimSpace(strings.TrimPrefix(line, vocab.Bullet))
		out.add(current, item)
	}
	return out
}

func matchHeader(lowered string, vocab Vocabulary) Category {
	for _, c := range Categories {
		phrase := vocab.header(c)
		if phrase != "" && strings.Contains(lowered, phrase) {
			return c
		}
	}
	return None
}

// splitLines normalises the text to NFC and returns its trimmed, non-empty lines.
func splitLines(text string) []string {
	text = norm.NFC.String(text)
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
