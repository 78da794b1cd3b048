package curriculum

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neuralnexus/backend/apperr"
	"neuralnexus/backend/config"
)

func newClient(url string) *WebhookClient {
	return NewWebhookClient(config.CurriculumConfig{WebhookURL: url, Timeout: 2 * time.Second}, zap.NewNop())
}

func TestWebhookClientJSONResponse(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"curriculum":"  Week 1: variables  "}`))
	}))
	defer srv.Close()

	text, err := newClient(srv.URL).Generate(context.Background(), Request{
		GoalID: 3, GoalDescription: "Learn Go", Category: "web-development", Priority: "high", UserID: 9, UserName: "Ada",
	})

	require.NoError(t, err)
	assert.Equal(t, "  Week 1: variables  ", text)
	assert.Equal(t, uint(3), got.GoalID)
	assert.Equal(t, "Learn Go", got.GoalDescription)
	assert.Equal(t, "Ada", got.UserName)
}

func TestWebhookClientPlainTextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("1. Read the tour\n2. Build a CLI\n"))
	}))
	defer srv.Close()

	text, err := newClient(srv.URL).Generate(context.Background(), Request{GoalID: 1})

	require.NoError(t, err)
	assert.Equal(t, "1. Read the tour\n2. Build a CLI\n", text)
}

func TestWebhookClientFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Generate(context.Background(), Request{GoalID: 1})
	assert.ErrorIs(t, err, apperr.ErrUpstream)

	_, err = newClient("").Generate(context.Background(), Request{GoalID: 1})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestWebhookClientBlankBodyIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  \n\t "))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Generate(context.Background(), Request{GoalID: 1})
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}

type fakeGenerator struct {
	fail map[uint]bool
}

func (f fakeGenerator) Generate(_ context.Context, req Request) (string, error) {
	if f.fail[req.GoalID] {
		return "", errors.New("webhook down")
	}
	return "plan for " + req.GoalDescription, nil
}

type recordingSink struct {
	mu    sync.Mutex
	texts map[uint]string
}

func (s *recordingSink) CurriculumGenerated(_ context.Context, _ uint, goalID uint, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[goalID] = text
	return nil
}

func TestDispatcherDeliversAndSurvivesFailures(t *testing.T) {
	sink := &recordingSink{texts: map[uint]string{}}
	d := NewDispatcher(fakeGenerator{fail: map[uint]bool{2: true}}, 2, 8, zap.NewNop())
	d.Start(context.Background(), sink)

	assert.True(t, d.Enqueue(Request{GoalID: 1, GoalDescription: "Go"}))
	assert.True(t, d.Enqueue(Request{GoalID: 2, GoalDescription: "Rust"}))
	assert.True(t, d.Enqueue(Request{GoalID: 3, GoalDescription: "SQL"}))
	d.Stop()

	assert.Equal(t, map[uint]string{1: "plan for Go", 3: "plan for SQL"}, sink.texts)
	assert.False(t, d.Enqueue(Request{GoalID: 4}))
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	d := NewDispatcher(fakeGenerator{}, 1, 1, zap.NewNop())

	assert.True(t, d.Enqueue(Request{GoalID: 1}))
	assert.False(t, d.Enqueue(Request{GoalID: 2}))

	d.Stop()
}
