package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultGraphQLURL is the Fireflies API endpoint.
const DefaultGraphQLURL = "https://api.fireflies.ai/graphql"

// ErrNoTranscript is returned when Fireflies has no transcript for a meeting,
// usually because it is still processing.
var ErrNoTranscript = errors.New("webhook: no transcript found")

const transcriptQuery = `query GetTranscript($meetingId: String!) {
  transcript(id: $meetingId) {
    id
    title
    date
    duration
    sentences { text speaker_name }
    summary { overview action_items }
    participants
    organizer_email
  }
}`

// Sentence is one utterance of a transcript.
type Sentence struct {
	Text        string `json:"text"`
	SpeakerName string `json:"speaker_name"`
}

// Transcript is the subset of a Fireflies transcript the service uses.
type Transcript struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Date         float64    `json:"date"` // epoch milliseconds
	Duration     float64    `json:"duration"`
	Sentences    []Sentence `json:"sentences"`
	Participants []string   `json:"participants"`
	Organizer    string     `json:"organizer_email"`
	Summary      *struct {
		Overview    string `json:"overview"`
		ActionItems string `json:"action_items"`
	} `json:"summary"`
}

// Session converts the transcript into "Speaker: text" lines.
func (t Transcript) Session(meetingID string, now time.Time, loc *time.Location) Session {
	lines := make([]string, 0, len(t.Sentences))
	for _, s := range t.Sentences {
		speaker := CleanText(s.SpeakerName)
		if speaker == "" {
			speaker = "Speaker"
		}
		lines = append(lines, speaker+": "+CleanText(s.Text))
	}
	if loc == nil {
		loc = time.Local
	}

	s := Session{
		Text:      strings.Join(lines, "\n"),
		Client:    DefaultClient,
		Date:      now.In(loc).Format(DateLayout),
		Title:     t.Title,
		Duration:  t.Duration,
		MeetingID: meetingID,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	if len(t.Participants) > 0 && strings.TrimSpace(t.Participants[0]) != "" {
		s.Client = strings.TrimSpace(t.Participants[0])
	}
	if t.Date > 0 {
		s.Date = time.UnixMilli(int64(t.Date)).In(loc).Format(DateLayout)
	}
	if s.Title == "" {
		s.Title = DefaultTitle
	}
	return s
}

// TranscriptFetcher retrieves a transcript by meeting id.
type TranscriptFetcher interface {
	Transcript(ctx context.Context, meetingID string) (*Transcript, error)
}

// TranscriptClient queries the Fireflies GraphQL API.
type TranscriptClient struct {
	http    *http.Client
	url     string
	apiKey  string
	backoff time.Duration
}

// NewTranscriptClient creates a client. An empty url uses DefaultGraphQLURL.
func NewTranscriptClient(url, apiKey string, timeout time.Duration) *TranscriptClient {
	if url == "" {
		url = DefaultGraphQLURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TranscriptClient{http: &http.Client{Timeout: timeout}, url: url, apiKey: apiKey, backoff: time.Second}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		Transcript *Transcript `json:"transcript"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Transcript implements TranscriptFetcher.
func (c *TranscriptClient) Transcript(ctx context.Context, meetingID string) (*Transcript, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("webhook: fireflies API key is not configured")
	}
	body, err := json.Marshal(graphQLRequest{
		Query:     transcriptQuery,
		Variables: map[string]any{"meetingId": meetingID},
	})
	if err != nil {
		return nil, err
	}

	var out graphQLResponse
	err = retry(ctx, 3, c.backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return &retryableError{err}
		}
		defer resp.Body.Close()
		if err := checkStatus(resp.StatusCode); err != nil {
			return err
		}
		out = graphQLResponse{}
		return json.NewDecoder(resp.Body).Decode(&out)
	})
	if err != nil {
		return nil, fmt.Errorf("webhook: fetch transcript %s: %w", meetingID, err)
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("webhook: fetch transcript %s: %s", meetingID, out.Errors[0].Message)
	}
	if out.Data.Transcript == nil {
		return nil, ErrNoTranscript
	}
	return out.Data.Transcript, nil
}
