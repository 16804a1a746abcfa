package webhook

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// EventTranscriptionCompleted is the event type Fireflies sends when a
// transcript is ready to fetch.
const EventTranscriptionCompleted = "Transcription completed"

// Defaults used when a delivery lacks the field.
const (
	DefaultClient = "Клієнт"
	DefaultTitle  = "Психологічна сесія"
	DateLayout    = "02.01.2006"
)

// Event is a Fireflies webhook delivery. Newer deliveries only carry
// MeetingID and EventType; older ones inline the transcript.
type Event struct {
	MeetingID  string          `json:"meetingId"`
	EventType  string          `json:"eventType"`
	Transcript json.RawMessage `json:"transcript,omitempty"`
	Attendees  []struct {
		Name string `json:"name"`
	} `json:"meeting_attendees,omitempty"`
	Title    string  `json:"title,omitempty"`
	Date     string  `json:"date,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// Session is a transcript ready to summarize.
type Session struct {
	Text      string  `json:"session"`
	Client    string  `json:"client"`
	Date      string  `json:"date"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration,omitempty"`
	MeetingID string  `json:"meetingId,omitempty"`
	Timestamp string  `json:"timestamp"`
}

// NeedsFetch reports whether the transcript must be fetched by meeting id.
func (e Event) NeedsFetch() bool {
	return e.MeetingID != "" && e.EventType == EventTranscriptionCompleted
}

// HasInline reports whether the delivery carries its own transcript.
func (e Event) HasInline() bool {
	t := strings.TrimSpace(string(e.Transcript))
	return t != "" && t != "null" && t != `""`
}

// InlineSession builds a session from an inline transcript: either a plain
// string or an object with sentences whose texts are joined by spaces. A
// missing date is taken from now in its own location.
func (e Event) InlineSession(now time.Time) Session {
	var text string
	var asString string
	if err := json.Unmarshal(e.Transcript, &asString); err == nil {
		text = asString
	} else {
		var obj struct {
			Sentences []Sentence `json:"sentences"`
		}
		if err := json.Unmarshal(e.Transcript, &obj); err == nil {
			parts := make([]string, 0, len(obj.Sentences))
			for _, s := range obj.Sentences {
				parts = append(parts, s.Text)
			}
			text = strings.Join(parts, " ")
		}
	}

	s := Session{
		Text:      CleanText(text),
		Client:    DefaultClient,
		Date:      e.Date,
		Title:     e.Title,
		Duration:  e.Duration,
		MeetingID: e.MeetingID,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	if len(e.Attendees) > 0 && strings.TrimSpace(e.Attendees[0].Name) != "" {
		s.Client = strings.TrimSpace(e.Attendees[0].Name)
	}
	if s.Date == "" {
		s.Date = now.Format(DateLayout)
	}
	if s.Title == "" {
		s.Title = DefaultTitle
	}
	return s
}

var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F-\x9F]`)

// CleanText replaces C0 and C1 control characters with spaces and trims.
func CleanText(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, " "))
}
