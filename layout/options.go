package layout

import (
	"time"

	"github.com/dgtlunion/konspekt/summary"
)

// BoldMode selects how bold markers inside bullets are drawn.
type BoldMode int

const (
	// BoldInline splits bullets into bold and plain runs.
	BoldInline BoldMode = iota
	// BoldStrip removes markers and draws bullets in plain weight. Action
	// headlines before the first colon stay bold.
	BoldStrip
)

// BuildOptions configures the layout stage.
type BuildOptions struct {
	Typesetter Typesetter
	Geometry   Geometry
	Theme      Theme
	Vocabulary summary.Vocabulary
	BoldMode   BoldMode

	// Background names the image asset applied to every page; empty means none.
	Background string

	// Now supplies the date shown when the metadata has none.
	Now func() time.Time
}

// Metadata is the caller-supplied client and date for the subtitle line.
type Metadata struct {
	Client string
	Date   string
}

// Typesetter breaks runs into lines no wider than width. Sizes are in points.
type Typesetter interface {
	LayoutRuns(runs []summary.Run, width, fontSize, lineHeight float64) ([]TextLine, error)
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.Geometry == (Geometry{}) {
		o.Geometry = DefaultGeometry()
	}
	if o.Theme == (Theme{}) {
		o.Theme = DefaultTheme()
	}
	if o.Vocabulary == (summary.Vocabulary{}) {
		o.Vocabulary = summary.Ukrainian
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
