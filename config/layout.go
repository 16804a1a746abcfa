package config

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone names must resolve on hosts without a zoneinfo database

	"github.com/dgtlunion/konspekt/layout"
)

// LayoutConfig overrides the document geometry and type sizes. Lengths are
// strings with a unit ("20pt", "1.5cm"); empty keeps the default.
type LayoutConfig struct {
	BoldMode string `toml:"bold_mode" validate:"omitempty,oneof=inline strip"`
	// Location is the IANA zone default and transcript dates are shown in.
	Location string `toml:"location"`

	Margin        string `toml:"margin"`
	TopMargin     string `toml:"top_margin"`
	MaxContentY   string `toml:"max_content_y"`
	TitleY        string `toml:"title_y"`
	SubtitleY     string `toml:"subtitle_y"`
	ContentStartY string `toml:"content_start_y"`
	HeadingX      string `toml:"heading_x"`
	BulletX       string `toml:"bullet_x"`

	TitleSize    string `toml:"title_size"`
	SubtitleSize string `toml:"subtitle_size"`
	HeadingSize  string `toml:"heading_size"`
	BodySize     string `toml:"body_size"`
}

// Resolved is a LayoutConfig applied to the defaults.
type Resolved struct {
	Geometry layout.Geometry
	Theme    layout.Theme
	BoldMode layout.BoldMode
	Location *time.Location
}

// Resolve parses every override.
func (c LayoutConfig) Resolve() (Resolved, error) {
	r := Resolved{
		Geometry: layout.DefaultGeometry(),
		Theme:    layout.DefaultTheme(),
		Location: time.Local,
	}
	lengths := []struct {
		key string
		val string
		dst *float64
	}{
		{"margin", c.Margin, &r.Geometry.Margin},
		{"top_margin", c.TopMargin, &r.Geometry.TopMargin},
		{"max_content_y", c.MaxContentY, &r.Geometry.MaxContentY},
		{"title_y", c.TitleY, &r.Geometry.TitleY},
		{"subtitle_y", c.SubtitleY, &r.Geometry.SubtitleY},
		{"content_start_y", c.ContentStartY, &r.Geometry.ContentStartY},
		{"heading_x", c.HeadingX, &r.Geometry.HeadingX},
		{"bullet_x", c.BulletX, &r.Geometry.BulletX},
		{"title_size", c.TitleSize, &r.Theme.TitleSize},
		{"subtitle_size", c.SubtitleSize, &r.Theme.SubtitleSize},
		{"heading_size", c.HeadingSize, &r.Theme.HeadingSize},
		{"body_size", c.BodySize, &r.Theme.BodySize},
	}
	for _, l := range lengths {
		if l.val == "" {
			continue
		}
		v, err := layout.ParseLength(l.val)
		if err != nil {
			return Resolved{}, fmt.Errorf("config: layout.%s: %w", l.key, err)
		}
		*l.dst = v.Points()
	}

	g := r.Geometry
	if g.MaxContentY <= g.TopMargin || g.MaxContentY > g.Height {
		return Resolved{}, fmt.Errorf("config: layout.max_content_y %.2fpt must lie between top_margin %.2fpt and the page height", g.MaxContentY, g.TopMargin)
	}
	if g.BulletX >= g.RightEdge() || g.HeadingX >= g.RightEdge() {
		return Resolved{}, fmt.Errorf("config: layout indents leave no room for text")
	}

	if c.BoldMode == "strip" {
		r.BoldMode = layout.BoldStrip
	}
	if c.Location != "" {
		loc, err := time.LoadLocation(c.Location)
		if err != nil {
			return Resolved{}, fmt.Errorf("config: layout.location: %w", err)
		}
		r.Location = loc
	}
	return r, nil
}
