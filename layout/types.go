package layout

// This file defines the layout result shared by layout, rendering and the debug JSON dump.
// All coordinates and sizes are in points with the origin at the top-left corner of the page.

// Result holds the laid-out pages of one document.
type Result struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
	Stats Stats        `json:"stats"`
}

// Stats summarises the structure of a result, independent of page geometry.
type Stats struct {
	Pages    int `json:"pages"`
	Headings int `json:"headings"`
	Items    int `json:"items"`
}

// Page records its size, the background applied to it and the positioned text boxes.
type Page struct {
	Index      int       `json:"index"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Background *ImageBox `json:"background,omitempty"`
	Texts      []TextBox `json:"texts"`
}

// Role tells what a text box is in the document structure.
type Role string

const (
	RoleTitle    Role = "title"
	RoleSubtitle Role = "subtitle"
	RoleHeading  Role = "heading"
	RoleItem     Role = "item"
)

// TextBox is a block of already wrapped lines anchored at (X, Y).
type TextBox struct {
	Role     Role       `json:"role"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Width    float64    `json:"width"`
	FontSize float64    `json:"fontSize"`
	Color    Color      `json:"color"`
	Lines    []TextLine `json:"lines"`
	Height   float64    `json:"height"`
}

// Text returns the box content with line breaks between wrapped lines.
func (tb TextBox) Text() string {
	s := ""
	for i, ln := range tb.Lines {
		if i > 0 {
			s += "\n"
		}
		s += ln.Text()
	}
	return s
}

// TextLine is one wrapped line made of spans of a single weight each.
type TextLine struct {
	Spans     []Span  `json:"spans"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// Text returns the concatenated span text.
func (l TextLine) Text() string {
	s := ""
	for _, sp := range l.Spans {
		s += sp.Text
	}
	return s
}

// Span is a piece of a line drawn in one weight, X relative to the box.
type Span struct {
	Text  string  `json:"text"`
	Bold  bool    `json:"bold,omitempty"`
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

// ImageBox places a named image asset on the page.
type ImageBox struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Color uses 0-255 RGB components.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// DocumentMeta is written into the PDF info dictionary.
type DocumentMeta struct {
	Title   string `json:"title"`
	Subject string `json:"subject"`
	Author  string `json:"author"`
	Creator string `json:"creator"`
}
