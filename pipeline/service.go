// Package pipeline runs the request flows of the service: summarizing a
// session, rendering a summary to PDF, saving it and forwarding results.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgtlunion/konspekt/assets"
	"github.com/dgtlunion/konspekt/layout"
	"github.com/dgtlunion/konspekt/llm"
	"github.com/dgtlunion/konspekt/storage"
	"github.com/dgtlunion/konspekt/summary"
	"github.com/dgtlunion/konspekt/webhook"
)

// LayoutSettings are the document settings shared by every render.
type LayoutSettings struct {
	Geometry   layout.Geometry
	Theme      layout.Theme
	Vocabulary summary.Vocabulary
	BoldMode   layout.BoldMode
}

// Deps are the collaborators of a Service. Everything but Assets may be nil;
// the flows that need a missing collaborator return ErrUnavailable.
type Deps struct {
	Summarizer  llm.Summarizer
	Assets      *assets.Store
	Store       *storage.Store
	Relay       *webhook.Relay
	Transcripts webhook.TranscriptFetcher
	Deduper     webhook.Deduper
	Layout      LayoutSettings
	Logger      *log.Logger
	Now         func() time.Time
	// Location is the zone default dates are shown in. Nil means time.Local.
	Location *time.Location
}

// Service is safe for concurrent use: every render builds its own cursor,
// result and renderer, and only the asset bundle is shared.
type Service struct {
	summarizer  llm.Summarizer
	assets      *assets.Store
	store       *storage.Store
	relay       *webhook.Relay
	transcripts webhook.TranscriptFetcher
	deduper     webhook.Deduper
	layout      LayoutSettings
	logger      *log.Logger
	now         func() time.Time
	loc         *time.Location
}

// New creates a service.
func New(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Assets == nil {
		d.Assets = assets.NewStore(nil, assets.Options{Logger: d.Logger})
	}
	if d.Layout.Geometry == (layout.Geometry{}) {
		d.Layout.Geometry = layout.DefaultGeometry()
	}
	if d.Layout.Theme == (layout.Theme{}) {
		d.Layout.Theme = layout.DefaultTheme()
	}
	if d.Layout.Vocabulary == (summary.Vocabulary{}) {
		d.Layout.Vocabulary = summary.Ukrainian
	}
	return &Service{
		summarizer:  d.Summarizer,
		assets:      d.Assets,
		store:       d.Store,
		relay:       d.Relay,
		transcripts: d.Transcripts,
		deduper:     d.Deduper,
		layout:      d.Layout,
		logger:      d.Logger,
		now:         d.Now,
		loc:         d.Location,
	}
}

// Summarize asks the model for the summary of one session.
func (s *Service) Summarize(ctx context.Context, req llm.Request) (string, error) {
	if err := validateStruct(trimRequest(req)); err != nil {
		return "", err
	}
	if s.summarizer == nil {
		return "", ErrUnavailable
	}
	start := s.now()
	out, err := s.summarizer.Summarize(ctx, req)
	if err != nil {
		return "", err
	}
	s.logger.Info("summary generated", "client", req.Client, "chars", len(out), "took", s.now().Sub(start).Round(time.Millisecond))
	return out, nil
}

// SummaryResult is a generated summary and, when saving worked, its PDF.
type SummaryResult struct {
	Summary  string        `json:"summary"`
	PDF      *storage.File `json:"pdf,omitempty"`
	PDFError string        `json:"pdfError,omitempty"`
}

// SummarizeAndSave generates the summary and stores its PDF. A failed save
// does not fail the call; the error is reported in the result.
func (s *Service) SummarizeAndSave(ctx context.Context, req llm.Request, save bool) (*SummaryResult, error) {
	text, err := s.Summarize(ctx, req)
	if err != nil {
		return nil, err
	}
	res := &SummaryResult{Summary: text}
	if !save || s.store == nil {
		return res, nil
	}
	f, err := s.RenderAndSave(ctx, RenderRequest{Summary: text, Client: req.Client, Date: req.Date})
	if err != nil {
		s.logger.Warn("saving pdf failed", "err", err)
		res.PDFError = err.Error()
		return res, nil
	}
	res.PDF = &f
	return res, nil
}

func trimRequest(req llm.Request) llm.Request {
	req.Session = trimBlank(req.Session)
	return req
}
