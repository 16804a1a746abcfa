package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dgtlunion/konspekt/pipeline"
	"github.com/dgtlunion/konspekt/webhook"
)

// handleFirefliesWebhook accepts a Fireflies delivery. Only a bad signature
// or an unreadable body is rejected; processing failures are answered with
// 200 and success=false so Fireflies does not redeliver.
func (s *Server) handleFirefliesWebhook(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLogger(r)
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.failure(w, r, "Invalid request body", &pipeline.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	if err := webhook.VerifySignature(body, r.Header.Get(webhook.SignatureHeader), s.secret); err != nil {
		logger.Warn("webhook signature rejected", "remote", r.RemoteAddr)
		s.errorResponse(w, http.StatusUnauthorized, "Invalid webhook signature")
		return
	}
	var ev webhook.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		s.failure(w, r, "Invalid request body", &pipeline.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	logger.Info("fireflies webhook", "event", ev.EventType, "meeting", ev.MeetingID)

	outcome, out, err := s.svc.HandleEvent(r.Context(), ev)
	if err != nil {
		logger.Error("webhook processing failed", "meeting", ev.MeetingID, "err", err)
	}
	s.jsonResponse(w, http.StatusOK, eventReply(r, ev, outcome, out, err))
}

// eventReply describes a handled delivery. Failures are reported in the body
// with success=false.
func eventReply(r *http.Request, ev webhook.Event, outcome pipeline.EventOutcome, out *pipeline.Processed, err error) map[string]any {
	if err != nil {
		message := "Failed to process transcript"
		if errors.Is(err, webhook.ErrNoTranscript) {
			message = "No transcript found"
		}
		return map[string]any{
			"success":   false,
			"message":   message,
			"meetingId": ev.MeetingID,
			"error":     err.Error(),
		}
	}

	switch outcome {
	case pipeline.OutcomeIgnored:
		return map[string]any{
			"success": true,
			"message": "No transcript or meetingId in webhook",
		}
	case pipeline.OutcomeDuplicate:
		return map[string]any{
			"success":   true,
			"message":   "Meeting already processed",
			"meetingId": ev.MeetingID,
		}
	default:
		return map[string]any{
			"success":   true,
			"message":   "Transcript processed successfully",
			"meetingId": out.MeetingID,
			"summary":   out.Summary,
			"pdf":       pdfInfo(r, out.PDF),
			"forwarded": out.Forwarded,
			"metadata": map[string]any{
				"title":    out.Title,
				"duration": out.Duration,
				"client":   out.Client,
				"date":     out.Date,
			},
		}
	}
}
