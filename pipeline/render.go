package pipeline

import (
	"bytes"
	"context"
	"image"
	"io"
	"strings"

	"github.com/dgtlunion/konspekt/assets"
	"github.com/dgtlunion/konspekt/layout"
	"github.com/dgtlunion/konspekt/renderer"
	canvasrenderer "github.com/dgtlunion/konspekt/renderer/canvas"
	"github.com/dgtlunion/konspekt/storage"
	"github.com/dgtlunion/konspekt/summary"
)

// Render modes.
const (
	ModeSections = "sections" // group bullets under the three fixed headings
	ModeLines    = "lines"    // draw the raw line stream as it comes
)

// backend measures text for the layout and draws the finished pages.
type backend interface {
	renderer.Renderer
	layout.Typesetter
}

// RenderRequest is the input of every render flow.
type RenderRequest struct {
	Summary string `json:"summary" validate:"required"`
	Client  string `json:"client,omitempty"`
	Date    string `json:"date,omitempty"`
	Mode    string `json:"mode,omitempty" validate:"omitempty,oneof=sections lines"`
}

// Render lays out the summary and writes the finished PDF to w. Nothing is
// written to w unless the whole document rendered; callers may pass the
// network response directly.
func (s *Service) Render(ctx context.Context, req RenderRequest, w io.Writer) (*layout.Result, error) {
	var buf bytes.Buffer
	res, err := s.render(ctx, req, &buf)
	if err != nil {
		return nil, err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return nil, err
	}
	return res, nil
}

// RenderAndSave renders into the document store under a name derived from
// the client and date.
func (s *Service) RenderAndSave(ctx context.Context, req RenderRequest) (storage.File, error) {
	if s.store == nil {
		return storage.File{}, ErrUnavailable
	}
	req.Summary = trimBlank(req.Summary)
	if err := validateStruct(req); err != nil {
		return storage.File{}, err
	}
	name := storage.FileName(req.Client, req.Date)
	var res *layout.Result
	f, err := s.store.Save(ctx, name, func(w io.Writer) error {
		var err error
		res, err = s.render(ctx, req, w)
		return err
	})
	if err != nil {
		return storage.File{}, err
	}
	s.logger.Info("pdf saved", "name", f.Name, "size", f.Size, "pages", res.Stats.Pages)
	return f, nil
}

// DownloadName is the attachment name of a streamed render.
func DownloadName(date string) string {
	if d := storage.Sanitize(date); d != "" {
		return "konspiekt_" + d + ".pdf"
	}
	return "konspiekt_session.pdf"
}

func (s *Service) render(ctx context.Context, req RenderRequest, w io.Writer) (*layout.Result, error) {
	req.Summary = trimBlank(req.Summary)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	bundle := s.assets.Bundle(ctx)
	images := map[string]image.Image{}
	background := ""
	if bundle.HasBackground() {
		background = assets.BackgroundName
		images[background] = bundle.Background
	}
	cr := canvasrenderer.NewRenderer(canvasrenderer.Options{
		Regular: bundle.Regular,
		Bold:    bundle.Bold,
		Images:  images,
		Logger:  s.logger,
	})
	var r backend = cr

	opts := layout.BuildOptions{
		Typesetter: r,
		Geometry:   s.layout.Geometry,
		Theme:      s.layout.Theme,
		Vocabulary: s.layout.Vocabulary,
		BoldMode:   s.layout.BoldMode,
		Background: background,
		Now:        s.localNow,
	}
	meta := layout.Metadata{Client: req.Client, Date: req.Date}

	var (
		res *layout.Result
		err error
	)
	if req.Mode == ModeLines {
		res, err = layout.BuildLines(summary.Lines(req.Summary, s.layout.Vocabulary), meta, opts)
	} else {
		res, err = layout.Build(summary.ParseWith(req.Summary, s.layout.Vocabulary), meta, opts)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.Render(w, res); err != nil {
		return nil, err
	}
	s.logger.Debug("pdf rendered", "pages", res.Stats.Pages, "headings", res.Stats.Headings,
		"items", res.Stats.Items, "mode", req.Mode, "fallbackFonts", cr.UsesFallbackFonts())
	return res, nil
}

func trimBlank(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
