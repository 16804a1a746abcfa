package summary

import "strings"

// Vocabulary holds the localized literal phrases the summary text is written in.
// Matching against these phrases is by substring containment, never by position.
type Vocabulary struct {
	Title       string // document title line
	DateLabel   string // metadata line label for the date, e.g. "Дата:"
	ClientLabel string // metadata line label for the client, e.g. "Клієнт:"

	// Header phrases are matched case-insensitively anywhere in a line.
	TopicsHeader   string
	InsightsHeader string
	ActionsHeader  string

	// Headings drawn above each non-empty category.
	TopicsHeading   string
	InsightsHeading string
	ActionsHeading  string

	DefaultClient string // shown when the client is unknown
	Bullet        string // bullet marker character
}

// Ukrainian is the vocabulary the upstream generator is prompted to write in.
var Ukrainian = Vocabulary{
	Title:           "Конспект психологічної сесії",
	DateLabel:       "Дата:",
	ClientLabel:     "Клієнт:",
	TopicsHeader:    "основні теми",
	InsightsHeader:  "ключові інсайти",
	ActionsHeader:   "план дій",
	TopicsHeading:   "Основні теми",
	InsightsHeading: "Ключові інсайти",
	ActionsHeading:  "План дій",
	DefaultClient:   "Не вказано",
	Bullet:          "•",
}

// Heading returns the heading label for a category.
func (v Vocabulary) Heading(c Category) string {
	switch c {
	case Topics:
		return v.TopicsHeading
	case Insights:
		return v.InsightsHeading
	case Actions:
		return v.ActionsHeading
	default:
		return ""
	}
}

func (v Vocabulary) header(c Category) string {
	switch c {
	case Topics:
		return v.TopicsHeader
	case Insights:
		return v.InsightsHeader
	case Actions:
		return v.ActionsHeader
	default:
		return ""
	}
}

// isPreamble reports whether the line is the title or the date/client metadata line.
func (v Vocabulary) isPreamble(line string) bool {
	if v.Title != "" && strings.Contains(line, v.Title) {
		return true
	}
	return v.DateLabel != "" && v.ClientLabel != "" &&
		strings.Contains(line, v.DateLabel) && strings.Contains(line, v.ClientLabel)
}
