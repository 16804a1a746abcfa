package summary

import "strings"

// Meta carries the date and client shown in the metadata line.
type Meta struct {
	Client string `json:"client,omitempty"`
	Date   string `json:"date,omitempty"`
}

// Format writes sections back into the five-block text convention: title,
// metadata line, and the three headed bullet lists. Parsing the result yields
// the same sections.
func Format(s Sections, meta Meta, vocab Vocabulary) string {
	var b strings.Builder
	b.WriteString(vocab.Title)
	b.WriteString("\n")
	b.WriteString(vocab.DateLabel + " " + meta.Date + " | " + vocab.ClientLabel + " " + meta.Client)
	b.WriteString("\n")
	for _, c := range Categories {
		b.WriteString(vocab.Heading(c))
		b.WriteString("\n")
		for _, item := range s.Items(c) {
			b.WriteString(vocab.Bullet + " " + item + "\n")
		}
	}
	return b.String()
}
