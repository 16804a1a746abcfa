package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgtlunion/konspekt/llm"
	"github.com/dgtlunion/konspekt/storage"
	"github.com/dgtlunion/konspekt/webhook"
)

// ForwardRequest is a raw session handed to the automation workflow as is.
type ForwardRequest struct {
	Session string `json:"session" validate:"required"`
	Client  string `json:"client,omitempty"`
	Date    string `json:"date,omitempty"`
}

type forwardPayload struct {
	Session   string `json:"session"`
	Client    string `json:"client"`
	Date      string `json:"date"`
	Timestamp string `json:"timestamp"`
}

// ForwardSession relays a session to n8n without summarizing it and returns
// the workflow's reply.
func (s *Service) ForwardSession(ctx context.Context, req ForwardRequest) (json.RawMessage, error) {
	req.Session = trimBlank(req.Session)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !s.relay.Enabled() {
		return nil, ErrUnavailable
	}
	now := s.localNow()
	p := forwardPayload{
		Session:   req.Session,
		Client:    strings.TrimSpace(req.Client),
		Date:      strings.TrimSpace(req.Date),
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	if p.Client == "" {
		p.Client = llm.AnonymousClient
	}
	if p.Date == "" {
		p.Date = now.Format(llm.DateLayout)
	}
	reply, err := s.relay.Send(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("session forwarded", "client", p.Client, "chars", len(p.Session))
	return reply, nil
}

// Processed is what the automation workflow receives for a finished session.
type Processed struct {
	MeetingID   string        `json:"meetingId,omitempty"`
	Title       string        `json:"title"`
	Client      string        `json:"client"`
	Date        string        `json:"date"`
	Duration    float64       `json:"duration,omitempty"`
	Summary     string        `json:"summary"`
	PDF         *storage.File `json:"pdf,omitempty"`
	Forwarded   bool          `json:"-"`
	ProcessedAt string        `json:"processedAt"`
}

// ProcessSession summarizes a session, saves its PDF and relays the result.
// Saving and relaying are best effort; only a failed summary is an error.
func (s *Service) ProcessSession(ctx context.Context, sess webhook.Session) (*Processed, error) {
	res, err := s.SummarizeAndSave(ctx, llm.Request{
		Session: sess.Text,
		Client:  sess.Client,
		Date:    sess.Date,
	}, true)
	if err != nil {
		return nil, fmt.Errorf("summarize session %q: %w", sess.MeetingID, err)
	}
	out := &Processed{
		MeetingID:   sess.MeetingID,
		Title:       sess.Title,
		Client:      sess.Client,
		Date:        sess.Date,
		Duration:    sess.Duration,
		Summary:     res.Summary,
		PDF:         res.PDF,
		ProcessedAt: s.now().UTC().Format(time.RFC3339),
	}
	if s.relay.Enabled() {
		if _, err := s.relay.Send(ctx, out); err != nil {
			s.logger.Warn("relay failed", "meeting", sess.MeetingID, "err", err)
		} else {
			out.Forwarded = true
		}
	}
	return out, nil
}

// EventOutcome tells the webhook caller what happened to a delivery.
type EventOutcome string

const (
	OutcomeProcessed EventOutcome = "processed"
	OutcomeDuplicate EventOutcome = "duplicate"
	OutcomeIgnored   EventOutcome = "ignored"
)

// HandleEvent processes one webhook delivery. Deliveries announcing a
// finished transcription are fetched by meeting id, deliveries with an inline
// transcript are used directly, and anything else is ignored. A meeting id
// is processed at most once while the deduper remembers it; a failed
// delivery releases its claim so the sender can retry.
func (s *Service) HandleEvent(ctx context.Context, ev webhook.Event) (EventOutcome, *Processed, error) {
	switch {
	case ev.NeedsFetch():
		if s.transcripts == nil {
			return "", nil, ErrUnavailable
		}
	case ev.HasInline():
	default:
		s.logger.Debug("webhook ignored", "event", ev.EventType, "meeting", ev.MeetingID)
		return OutcomeIgnored, nil, nil
	}

	if ev.MeetingID != "" {
		if outcome, err := s.claim(ctx, ev.MeetingID); outcome != "" || err != nil {
			return outcome, nil, err
		}
	}
	out, err := s.handleClaimed(ctx, ev)
	if err != nil {
		s.release(ctx, ev.MeetingID)
		return "", nil, err
	}
	return OutcomeProcessed, out, nil
}

func (s *Service) handleClaimed(ctx context.Context, ev webhook.Event) (*Processed, error) {
	var sess webhook.Session
	if ev.NeedsFetch() {
		t, err := s.transcripts.Transcript(ctx, ev.MeetingID)
		if err != nil {
			return nil, err
		}
		sess = t.Session(ev.MeetingID, s.now(), s.location())
	} else {
		sess = ev.InlineSession(s.localNow())
	}
	if strings.TrimSpace(sess.Text) == "" {
		return nil, &ValidationError{Field: "transcript", Message: "is empty"}
	}
	s.logger.Info("processing session", "meeting", sess.MeetingID, "client", sess.Client, "date", sess.Date)
	return s.ProcessSession(ctx, sess)
}

// claim returns OutcomeDuplicate when meetingID was already seen and an
// empty outcome for a new delivery. Without a deduper every delivery is new.
func (s *Service) claim(ctx context.Context, meetingID string) (EventOutcome, error) {
	if s.deduper == nil {
		return "", nil
	}
	ok, err := s.deduper.Claim(ctx, meetingID)
	if err != nil {
		return "", fmt.Errorf("dedupe %q: %w", meetingID, err)
	}
	if !ok {
		s.logger.Info("duplicate webhook delivery", "meeting", meetingID)
		return OutcomeDuplicate, nil
	}
	return "", nil
}

// release outlives a canceled request so the claim is not left behind.
func (s *Service) release(ctx context.Context, meetingID string) {
	if s.deduper == nil || meetingID == "" {
		return
	}
	if err := s.deduper.Release(context.WithoutCancel(ctx), meetingID); err != nil {
		s.logger.Warn("releasing meeting claim", "meeting", meetingID, "err", err)
	}
}

// localNow is the current time in the configured location.
func (s *Service) localNow() time.Time { return s.now().In(s.location()) }

func (s *Service) location() *time.Location {
	if s.loc != nil {
		return s.loc
	}
	return time.Local
}
