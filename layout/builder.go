package layout

import (
	"fmt"
	"strings"

	"github.com/dgtlunion/konspekt/binding"
	"github.com/dgtlunion/konspekt/summary"
)

// Cursor is the running draw position of one build. Y only grows within a
// page and resets to the top margin when a page starts.
type Cursor struct {
	PageIndex int     `json:"pageIndex"`
	Y         float64 `json:"y"`
}

// Build lays out parsed sections: a centered title and subtitle, then each
// non-empty category in fixed order as a heading followed by its bullets.
func Build(sections summary.Sections, meta Metadata, opts BuildOptions) (*Result, error) {
	e, err := newEngine(meta, opts)
	if err != nil {
		return nil, err
	}
	if err := e.header(); err != nil {
		return nil, err
	}
	for _, c := range summary.Categories {
		items := sections.Items(c)
		if len(items) == 0 {
			continue
		}
		if err := e.heading(e.vocab().Heading(c)); err != nil {
			return nil, err
		}
		for _, item := range items {
			if err := e.item(e.itemRuns(c, item), true); err != nil {
				return nil, err
			}
		}
		e.cursor.Y += e.opts.Theme.CategoryGap
	}
	return e.result(), nil
}

// BuildLines lays out the raw line stream without grouping into categories:
// every heading line and item line is drawn in input order.
func BuildLines(lines []summary.Line, meta Metadata, opts BuildOptions) (*Result, error) {
	e, err := newEngine(meta, opts)
	if err != nil {
		return nil, err
	}
	if err := e.header(); err != nil {
		return nil, err
	}
	for _, ln := range lines {
		switch ln.Kind {
		case summary.LineHeading:
			err = e.heading(ln.Text)
		case summary.LineItem:
			err = e.item(e.inlineRuns(ln.Text), ln.Bullet)
		}
		if err != nil {
			return nil, err
		}
	}
	return e.result(), nil
}

type engine struct {
	opts     BuildOptions
	meta     Metadata
	cursor   Cursor
	pages    []*Page
	stats    Stats
	subtitle string
}

func newEngine(meta Metadata, opts BuildOptions) (*engine, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: missing typesetter")
	}
	opts = opts.withDefaults()
	if opts.Geometry.MaxContentY <= opts.Geometry.TopMargin {
		return nil, fmt.Errorf("layout: max content y %.2f must be below top margin %.2f",
			opts.Geometry.MaxContentY, opts.Geometry.TopMargin)
	}
	e := &engine{opts: opts, meta: meta}
	e.newPage()
	return e, nil
}

func (e *engine) vocab() summary.Vocabulary { return e.opts.Vocabulary }

// newPage starts a page, applies the background and resets the cursor.
func (e *engine) newPage() {
	g := e.opts.Geometry
	page := &Page{Index: len(e.pages), Width: g.Width, Height: g.Height}
	if e.opts.Background != "" {
		page.Background = &ImageBox{Name: e.opts.Background, Width: g.Width, Height: g.Height}
	}
	e.pages = append(e.pages, page)
	e.cursor = Cursor{PageIndex: page.Index, Y: g.TopMargin}
}

// ensureRoom breaks the page when the previous element left the cursor below
// the content boundary. Overflow is only checked between elements, so a long
// wrapped paragraph may still run past MaxContentY.
func (e *engine) ensureRoom() {
	if e.cursor.Y > e.opts.Geometry.MaxContentY {
		e.newPage()
	}
}

func (e *engine) place(tb TextBox) {
	page := e.pages[e.cursor.PageIndex]
	page.Texts = append(page.Texts, tb)
}

func (e *engine) header() error {
	g, th, v := e.opts.Geometry, e.opts.Theme, e.vocab()

	title, err := e.compose(RoleTitle, []summary.Run{{Text: v.Title, Bold: true}},
		g.Margin, g.TitleY, g.Width-2*g.Margin, th.TitleSize, th.TextColor)
	if err != nil {
		return err
	}
	centerLines(&title)
	e.place(title)

	date := strings.TrimSpace(e.meta.Date)
	if date == "" {
		date = e.opts.Now().Format("02.01.2006")
	}
	client := strings.TrimSpace(e.meta.Client)
	if client == "" {
		client = v.DefaultClient
	}
	e.subtitle = binding.Interpolate(th.SubtitleTemplate, map[string]any{
		"date":        date,
		"client":      client,
		"dateLabel":   v.DateLabel,
		"clientLabel": v.ClientLabel,
	})
	sub, err := e.compose(RoleSubtitle, []summary.Run{{Text: e.subtitle}},
		g.Margin, g.SubtitleY, g.Width-2*g.Margin, th.SubtitleSize, th.MutedColor)
	if err != nil {
		return err
	}
	centerLines(&sub)
	e.place(sub)

	e.cursor.Y = max(g.ContentStartY, sub.Y+sub.Height, e.cursor.Y)
	return nil
}

func (e *engine) heading(text string) error {
	e.ensureRoom()
	g, th := e.opts.Geometry, e.opts.Theme
	tb, err := e.compose(RoleHeading, []summary.Run{{Text: text, Bold: true}},
		g.HeadingX, e.cursor.Y, g.HeadingWidth(), th.HeadingSize, th.HeadingColor)
	if err != nil {
		return err
	}
	e.place(tb)
	e.stats.Headings++
	e.cursor.Y += tb.Height + th.HeadingGap
	return nil
}

// item draws one bullet paragraph; the bullet glyph is always plain.
func (e *engine) item(runs []summary.Run, bullet bool) error {
	e.ensureRoom()
	g, th := e.opts.Geometry, e.opts.Theme
	if bullet {
		runs = append([]summary.Run{{Text: e.vocab().Bullet + " "}}, runs...)
	}
	tb, err := e.compose(RoleItem, runs, g.BulletX, e.cursor.Y, g.ItemWidth(), th.BodySize, th.TextColor)
	if err != nil {
		return err
	}
	e.place(tb)
	e.stats.Items++
	e.cursor.Y += tb.Height + th.ItemGap
	return nil
}

// itemRuns applies the action-plan headline convention to actions and the
// bold mode to everything else. An action without a colon is plain.
func (e *engine) itemRuns(c summary.Category, item string) []summary.Run {
	if c == summary.Actions {
		if _, _, ok := summary.SplitHeadline(item); ok {
			return summary.HeadlineRuns(item)
		}
		return []summary.Run{{Text: summary.StripMarkers(item)}}
	}
	return e.inlineRuns(item)
}

func (e *engine) inlineRuns(text string) []summary.Run {
	if e.opts.BoldMode == BoldStrip {
		return []summary.Run{{Text: summary.StripMarkers(text)}}
	}
	return summary.SplitRuns(text)
}

func (e *engine) compose(role Role, runs []summary.Run, x, y, width, fontSize float64, color Color) (TextBox, error) {
	lineHeight := fontSize * e.opts.Theme.LineHeight
	lines, err := e.opts.Typesetter.LayoutRuns(runs, width, fontSize, lineHeight)
	if err != nil {
		return TextBox{}, fmt.Errorf("layout: typesetting %s: %w", role, err)
	}
	if len(lines) == 0 {
		lines = []TextLine{{Height: lineHeight}}
	}
	height := 0.0
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = lineHeight
		}
		if i == 0 {
			lines[i].GapBefore = 0
		}
		height += lines[i].GapBefore + lines[i].Height
	}
	return TextBox{
		Role:     role,
		X:        x,
		Y:        y,
		Width:    width,
		FontSize: fontSize,
		Color:    color,
		Lines:    lines,
		Height:   height,
	}, nil
}

func centerLines(tb *TextBox) {
	for i := range tb.Lines {
		offset := (tb.Width - tb.Lines[i].Width) / 2
		if offset <= 0 {
			continue
		}
		for j := range tb.Lines[i].Spans {
			tb.Lines[i].Spans[j].X += offset
		}
	}
}

func (e *engine) result() *Result {
	pages := make([]Page, len(e.pages))
	for i, p := range e.pages {
		pages[i] = *p
	}
	stats := e.stats
	stats.Pages = len(pages)
	return &Result{
		Pages: pages,
		Meta: DocumentMeta{
			Title:   e.vocab().Title,
			Subject: e.subtitle,
			Creator: "konspekt",
		},
		Stats: stats,
	}
}
