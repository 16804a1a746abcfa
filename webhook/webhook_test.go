package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"meetingId":"m1","eventType":"Transcription completed"}`)
	sig := Sign(body, "secret")

	assert.NoError(t, VerifySignature(body, sig, "secret"))
	assert.NoError(t, VerifySignature(body, "sha256="+sig, "secret"))
	assert.NoError(t, VerifySignature(body, "", ""), "verification disabled without a secret")

	assert.ErrorIs(t, VerifySignature(body, sig, "other"), ErrBadSignature)
	assert.ErrorIs(t, VerifySignature(append(body, ' '), sig, "secret"), ErrBadSignature)
	assert.ErrorIs(t, VerifySignature(body, "", "secret"), ErrBadSignature)
	assert.ErrorIs(t, VerifySignature(body, "zz", "secret"), ErrBadSignature)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b  c", CleanText("\x00a\tb\n\u0085c\x7f"))
	assert.Equal(t, "", CleanText("\x01\x02"))
}

var now = time.Date(2025, time.June, 3, 9, 30, 0, 0, time.UTC)

func TestEventInlineSessionFromSentences(t *testing.T) {
	var e Event
	require.NoError(t, json.Unmarshal([]byte(`{
		"transcript": {"sentences": [{"text": "Клієнт: тривога"}, {"text": "Психолог: чому?"}]},
		"meeting_attendees": [{"name": "Іван Петренко"}],
		"title": "Сесія",
		"duration": 3600
	}`), &e))

	assert.False(t, e.NeedsFetch())
	require.True(t, e.HasInline())
	s := e.InlineSession(now)
	assert.Equal(t, "Клієнт: тривога Психолог: чому?", s.Text)
	assert.Equal(t, "Іван Петренко", s.Client)
	assert.Equal(t, "03.06.2025", s.Date)
	assert.Equal(t, "Сесія", s.Title)
	assert.Equal(t, 3600.0, s.Duration)
}

func TestEventInlineSessionFromString(t *testing.T) {
	e := Event{Transcript: json.RawMessage(`"plain text"`), Date: "01.02.2025"}
	s := e.InlineSession(now)
	assert.Equal(t, "plain text", s.Text)
	assert.Equal(t, DefaultClient, s.Client)
	assert.Equal(t, DefaultTitle, s.Title)
	assert.Equal(t, "01.02.2025", s.Date)
}

func TestEventKinds(t *testing.T) {
	assert.True(t, Event{MeetingID: "m", EventType: EventTranscriptionCompleted}.NeedsFetch())
	assert.False(t, Event{MeetingID: "m", EventType: "Meeting started"}.NeedsFetch())
	assert.False(t, Event{Transcript: json.RawMessage(`null`)}.HasInline())
	assert.False(t, Event{}.HasInline())
}

func TestTranscriptSession(t *testing.T) {
	tr := Transcript{
		Title:        "",
		Date:         float64(time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC).UnixMilli()),
		Sentences:    []Sentence{{Text: "Добрий день", SpeakerName: "Олена"}, {Text: "Привіт\x00"}},
		Participants: []string{"olena@example.com"},
	}
	s := tr.Session("m1", now, time.UTC)
	assert.Equal(t, "Олена: Добрий день\nSpeaker: Привіт", s.Text)
	assert.Equal(t, "olena@example.com", s.Client)
	assert.Equal(t, "15.01.2025", s.Date)
	assert.Equal(t, DefaultTitle, s.Title)
	assert.Equal(t, "m1", s.MeetingID)
}

func TestTranscriptClient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		var req graphQLRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "m1", req.Variables["meetingId"])
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"transcript":{"id":"m1","title":"T","sentences":[{"text":"hi","speaker_name":"A"}],"participants":["c"]}}}`)
	}))
	defer srv.Close()

	c := NewTranscriptClient(srv.URL, "key", time.Second)
	c.backoff = time.Millisecond
	tr, err := c.Transcript(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "T", tr.Title)
	assert.Equal(t, int32(2), calls.Load(), "5xx is retried")
}

func TestTranscriptClientMissingTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"transcript":null}}`)
	}))
	defer srv.Close()

	_, err := NewTranscriptClient(srv.URL, "key", time.Second).Transcript(context.Background(), "m1")
	assert.ErrorIs(t, err, ErrNoTranscript)

	_, err = NewTranscriptClient(srv.URL, "", time.Second).Transcript(context.Background(), "m1")
	assert.Error(t, err)
}

func TestTranscriptClientGraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"errors":[{"message":"Object not found"}]}`)
	}))
	defer srv.Close()

	_, err := NewTranscriptClient(srv.URL, "key", time.Second).Transcript(context.Background(), "m1")
	assert.ErrorContains(t, err, "Object not found")
}

func TestRelay(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	r := NewRelay(srv.URL, time.Second)
	require.True(t, r.Enabled())
	reply, err := r.Send(context.Background(), Session{Text: "x", Client: "c"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(reply))
	assert.Equal(t, "x", got["session"])
}

func TestRelayPlainTextReplyAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "Workflow was started")
	}))
	defer srv.Close()

	reply, err := NewRelay(srv.URL, time.Second).Send(context.Background(), map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, `"Workflow was started"`, string(reply))

	_, err = NewRelay(srv.URL+"/bad", time.Second).Send(context.Background(), map[string]string{})
	assert.ErrorContains(t, err, "status 404")

	assert.False(t, NewRelay("", 0).Enabled())
	_, err = NewRelay("", 0).Send(context.Background(), nil)
	assert.Error(t, err)
}

func TestMemoryDeduper(t *testing.T) {
	d := NewMemoryDeduper(time.Minute)
	clock := now
	d.now = func() time.Time { return clock }
	ctx := context.Background()

	ok, err := d.Claim(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = d.Claim(ctx, "m1")
	assert.False(t, ok)
	ok, _ = d.Claim(ctx, "m2")
	assert.True(t, ok)

	clock = clock.Add(2 * time.Minute)
	ok, _ = d.Claim(ctx, "m1")
	assert.True(t, ok, "claim expires after the TTL")

	require.NoError(t, d.Release(ctx, "m2"))
	ok, _ = d.Claim(ctx, "m2")
	assert.True(t, ok, "released key can be claimed again")
	require.NoError(t, d.Release(ctx, "unknown"))
}

type fakeRedis struct {
	keys map[string]bool
	ttl  time.Duration
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, _ any, exp time.Duration) *redis.BoolCmd {
	f.ttl = exp
	if f.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = true
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if f.keys[k] {
			delete(f.keys, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisDeduper(t *testing.T) {
	fake := &fakeRedis{keys: map[string]bool{}}
	d := &RedisDeduper{client: fake, prefix: "konspekt:meeting:", ttl: time.Hour}
	ctx := context.Background()

	ok, err := d.Claim(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = d.Claim(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, fake.keys["konspekt:meeting:m1"])
	assert.Equal(t, time.Hour, fake.ttl)

	require.NoError(t, d.Release(ctx, "m1"))
	assert.False(t, fake.keys["konspekt:meeting:m1"])
	ok, err = d.Claim(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, ok, "released key can be claimed again")
}
