package layout

// Geometry fixes the page size and every anchor coordinate the engine draws at.
// Values are in points; the defaults describe A4 portrait.
type Geometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"` // left/right margin; the title spans the page between them

	TopMargin   float64 `json:"topMargin"`   // cursor position on every new page
	MaxContentY float64 `json:"maxContentY"` // a page break is forced once the cursor passes it

	TitleY        float64 `json:"titleY"`
	SubtitleY     float64 `json:"subtitleY"`
	ContentStartY float64 `json:"contentStartY"` // cursor position below the header block

	HeadingX float64 `json:"headingX"`
	BulletX  float64 `json:"bulletX"` // bullet glyph; wrapped item lines return here
}

// DefaultGeometry returns the A4 geometry.
func DefaultGeometry() Geometry {
	return Geometry{
		Width:         595.28,
		Height:        841.89,
		Margin:        50,
		TopMargin:     50,
		MaxContentY:   700,
		TitleY:        50,
		SubtitleY:     80,
		ContentStartY: 120,
		HeadingX:      50,
		BulletX:       60,
	}
}

// RightEdge is the x coordinate text never crosses.
func (g Geometry) RightEdge() float64 { return g.Width - g.Margin }

// HeadingWidth is the wrap width of category headings.
func (g Geometry) HeadingWidth() float64 { return g.RightEdge() - g.HeadingX }

// ItemWidth is the wrap width of bullet paragraphs.
func (g Geometry) ItemWidth() float64 { return g.RightEdge() - g.BulletX }

// Theme holds font sizes, colors and vertical gutters.
type Theme struct {
	TitleSize    float64 `json:"titleSize"`
	SubtitleSize float64 `json:"subtitleSize"`
	HeadingSize  float64 `json:"headingSize"`
	BodySize     float64 `json:"bodySize"`

	// LineHeight is a factor of the font size.
	LineHeight float64 `json:"lineHeight"`

	HeadingGap  float64 `json:"headingGap"`  // below a heading
	ItemGap     float64 `json:"itemGap"`     // below each bullet
	CategoryGap float64 `json:"categoryGap"` // after the last bullet of a category

	TextColor    Color `json:"textColor"`
	MutedColor   Color `json:"mutedColor"`
	HeadingColor Color `json:"headingColor"`

	// SubtitleTemplate is interpolated with ${date} and ${client}.
	SubtitleTemplate string `json:"subtitleTemplate"`
}

// DefaultTheme returns the house style.
func DefaultTheme() Theme {
	return Theme{
		TitleSize:        20,
		SubtitleSize:     10,
		HeadingSize:      14,
		BodySize:         11,
		LineHeight:       1.2,
		HeadingGap:       10,
		ItemGap:          5,
		CategoryGap:      10,
		TextColor:        Color{R: 30, G: 30, B: 30},
		MutedColor:       Color{R: 110, G: 110, B: 110},
		HeadingColor:     Color{R: 30, G: 30, B: 30},
		SubtitleTemplate: "${dateLabel} ${date} | ${clientLabel} ${client}",
	}
}
