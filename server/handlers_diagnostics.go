package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dgtlunion/konspekt/pipeline"
	"github.com/dgtlunion/konspekt/webhook"
)

const (
	testSession = "Це тестова психологічна сесія. Клієнт розповідав про стрес на роботі та проблеми зі сном. " +
		"Обговорювали техніки релаксації та важливість режиму дня."
	testClient = "Тестовий Клієнт"
)

// testFirefliesEvent is a delivery in the older inline format.
const testFirefliesEvent = `{
	"transcript": {"sentences": [
		{"text": "Клієнт: Я відчуваю постійну тривогу через роботу."},
		{"text": "Психолог: Давайте обговоримо, що саме викликає цю тривогу."},
		{"text": "Клієнт: Великий обсяг задач та дедлайни."},
		{"text": "Психолог: Спробуємо розробити план управління часом."}
	]},
	"meeting_attendees": [{"name": "Іван Петренко"}],
	"title": "Сесія з управління стресом",
	"duration": 3600
}`

func (s *Server) handleEchoStatus(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Vapi test endpoint is working",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"endpoints": map[string]string{
			"POST": "/api/vapi/test - echoes and logs the request",
			"GET":  "/api/vapi/test - liveness check",
		},
	})
}

// handleEcho logs and returns whatever it receives. A body that is not JSON
// is echoed as a string.
func (s *Server) handleEcho(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.failure(w, r, "Invalid request body", &pipeline.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	var body any = string(raw)
	if json.Valid(raw) {
		body = json.RawMessage(raw)
	}
	s.requestLogger(r).Info("echo request",
		"method", r.Method, "url", r.URL.RequestURI(), "remote", r.RemoteAddr,
		"user_agent", r.UserAgent(), "bytes", len(raw))

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Data received and logged successfully",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"receivedData": map[string]any{
			"headers": r.Header,
			"body":    body,
			"query":   r.URL.Query(),
			"method":  r.Method,
			"url":     r.URL.RequestURI(),
		},
	})
}

// handleTestN8N forwards a canned session to the automation workflow.
func (s *Server) handleTestN8N(w http.ResponseWriter, r *http.Request) {
	reply, err := s.svc.ForwardSession(r.Context(), pipeline.ForwardRequest{Session: testSession, Client: testClient})
	if err != nil {
		s.failure(w, r, "Test failed", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Test data sent to n8n",
		"response": reply,
	})
}

// handleTestFireflies runs a canned inline delivery through the webhook flow
// without a signature.
func (s *Server) handleTestFireflies(w http.ResponseWriter, r *http.Request) {
	var ev webhook.Event
	if err := json.Unmarshal([]byte(testFirefliesEvent), &ev); err != nil {
		s.failure(w, r, "Test failed", err)
		return
	}
	outcome, out, err := s.svc.HandleEvent(r.Context(), ev)
	if err != nil {
		s.requestLogger(r).Error("test delivery failed", "err", err)
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":  err == nil,
		"message":  "Test Fireflies webhook sent",
		"response": eventReply(r, ev, outcome, out, err),
	})
}
