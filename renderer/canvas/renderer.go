package canvasrenderer

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/dgtlunion/konspekt/fonts"
	"github.com/dgtlunion/konspekt/layout"
	"github.com/dgtlunion/konspekt/renderer"
	"github.com/dgtlunion/konspekt/summary"
)

// Renderer draws layout results as PDF via github.com/tdewolff/canvas.
// It also measures text for the layout stage, so the same faces are used
// for wrapping and drawing.
type Renderer struct {
	regular []byte
	bold    []byte
	images  map[string]image.Image
	logger  *log.Logger

	fontMu   sync.Mutex
	family   *canvas.FontFamily
	fallback bool
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	// Regular and Bold hold font data. When either is missing or cannot be
	// parsed, both weights fall back to the Go fonts.
	Regular []byte
	Bold    []byte
	// Images maps the names used by layout.ImageBox to decoded images.
	Images map[string]image.Image
	Logger *log.Logger
}

// NewRenderer creates a renderer with the given fonts and images.
func NewRenderer(opts Options) *Renderer {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	images := make(map[string]image.Image, len(opts.Images))
	for name, img := range opts.Images {
		if name != "" && img != nil {
			images[name] = img
		}
	}
	return &Renderer{
		regular: opts.Regular,
		bold:    opts.Bold,
		images:  images,
		logger:  logger,
	}
}

// Render draws every page and writes the finished PDF to w.
func (r *Renderer) Render(w io.Writer, result *layout.Result) error {
	if result == nil {
		return fmt.Errorf("canvas: nil layout result")
	}
	if len(result.Pages) == 0 {
		return fmt.Errorf("canvas: no pages to render")
	}
	family, err := r.fontFamily()
	if err != nil {
		return err
	}

	first := result.Pages[0]
	writer := pdf.New(w, toMm(first.Width), toMm(first.Height), nil)
	meta := result.Meta
	writer.SetInfo(meta.Title, meta.Subject, "", meta.Author, meta.Creator)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c := canvas.New(toMm(page.Width), toMm(page.Height))
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // top-left origin, as in layout

		r.drawBackground(ctx, page)
		for _, tb := range page.Texts {
			drawTextBox(ctx, family, tb)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("canvas: write pdf: %w", err)
	}
	return nil
}

// LayoutRuns implements layout.Typesetter with the shared greedy wrapper,
// measuring with the faces Render draws with. Sizes are in points.
func (r *Renderer) LayoutRuns(runs []summary.Run, width, fontSize, lineHeight float64) ([]layout.TextLine, error) {
	family, err := r.fontFamily()
	if err != nil {
		return nil, err
	}
	regular := family.Face(fontSize, canvas.Black, canvas.FontRegular, canvas.FontNormal)
	bold := family.Face(fontSize, canvas.Black, canvas.FontBold, canvas.FontNormal)
	measure := func(s string, isBold bool) float64 {
		if isBold {
			return toPt(bold.TextWidth(s))
		}
		return toPt(regular.TextWidth(s))
	}
	return layout.WrapRuns(runs, width, lineHeight, measure), nil
}

// UsesFallbackFonts reports whether the Go fonts replaced the configured ones.
func (r *Renderer) UsesFallbackFonts() bool {
	if _, err := r.fontFamily(); err != nil {
		return false
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	return r.fallback
}

func (r *Renderer) drawBackground(ctx *canvas.Context, page layout.Page) {
	bg := page.Background
	if bg == nil {
		return
	}
	img, ok := r.images[bg.Name]
	if !ok {
		r.logger.Debug("background image not loaded, skipping", "name", bg.Name, "page", page.Index)
		return
	}
	widthMm := toMm(bg.Width)
	if widthMm <= 0 || img.Bounds().Dx() == 0 {
		return
	}
	dpmm := float64(img.Bounds().Dx()) / widthMm
	ctx.DrawImage(toMm(bg.X), toMm(bg.Y), img, canvas.DPMM(dpmm))
}

func drawTextBox(ctx *canvas.Context, family *canvas.FontFamily, tb layout.TextBox) {
	col := colorFromLayout(tb.Color)
	regular := family.Face(tb.FontSize, col, canvas.FontRegular, canvas.FontNormal)
	bold := family.Face(tb.FontSize, col, canvas.FontBold, canvas.FontNormal)

	top := tb.Y
	for _, line := range tb.Lines {
		top += line.GapBefore
		for _, span := range line.Spans {
			if span.Text == "" {
				continue
			}
			face := regular
			if span.Bold {
				face = bold
			}
			// baseline = line top plus the ascent of the face (mm)
			baseline := toMm(top) + face.Metrics().Ascent
			ctx.DrawText(toMm(tb.X+span.X), baseline, canvas.NewTextLine(face, span.Text, canvas.Left))
		}
		top += line.Height
	}
}

func (r *Renderer) fontFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.family != nil {
		return r.family, nil
	}

	family, err := loadFamily("Montserrat", r.regular, r.bold)
	if err != nil {
		r.logger.Warn("fonts unavailable, using fallback", "err", err)
		family, err = loadFamily(fonts.FamilyName, fonts.MustLoad(fonts.Regular), fonts.MustLoad(fonts.Bold))
		if err != nil {
			return nil, fmt.Errorf("canvas: load fallback fonts: %w", err)
		}
		r.fallback = true
	}
	r.family = family
	return family, nil
}

func loadFamily(name string, regular, bold []byte) (*canvas.FontFamily, error) {
	if len(regular) == 0 || len(bold) == 0 {
		return nil, fmt.Errorf("canvas: %s needs both regular and bold font data", name)
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(regular, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("canvas: load %s regular: %w", name, err)
	}
	if err := family.LoadFont(bold, 0, canvas.FontBold); err != nil {
		return nil, fmt.Errorf("canvas: load %s bold: %w", name, err)
	}
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toMm converts points to millimetres, the canvas unit.
func toMm(pt float64) float64 { return pt * layout.PtToMm }

// toPt converts millimetres to points.
func toPt(mm float64) float64 { return mm * layout.MmToPt }
