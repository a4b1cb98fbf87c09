package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haruplan/haruplan/internal/model"
)

func TestEventCreatedPostsPayload(t *testing.T) {
	received := make(chan Message, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		received <- msg
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, zerolog.Nop())
	start := time.Date(2025, 6, 3, 15, 0, 0, 0, time.UTC)
	n.EventCreated(context.Background(), &model.Event{UserID: "u1", Title: "회의", StartTime: start})

	select {
	case msg := <-received:
		assert.Equal(t, "event", msg.Kind)
		assert.Equal(t, "회의", msg.Title)
		require.NotNil(t, msg.StartTime)
		assert.True(t, msg.StartTime.Equal(start))
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not called")
	}
}

func TestEventCreatedDoesNotBlockOnSlowWebhook(t *testing.T) {
	received := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		received <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, zerolog.Nop())
	start := time.Now()
	n.EventCreated(context.Background(), &model.Event{UserID: "u1", Title: "회의", StartTime: start})
	assert.Less(t, time.Since(start), 200*time.Millisecond, "creation must not wait on delivery")

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not called")
	}
}

func TestEventCreatedSurvivesRequestCancellation(t *testing.T) {
	received := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	n := New(srv.URL, zerolog.Nop())
	n.EventCreated(ctx, &model.Event{UserID: "u1", Title: "회의", StartTime: time.Now()})
	cancel()

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery was cancelled with the request")
	}
}

func TestDisabledWithoutURL(t *testing.T) {
	n := New("", zerolog.Nop())
	assert.False(t, n.Enabled())
	// Must be a no-op, not a panic or network call.
	n.TaskCreated(context.Background(), &model.Task{UserID: "u1", Title: "보고서"})
}

func TestServerErrorIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := New(srv.URL, zerolog.Nop())
	n.EventCreated(context.Background(), &model.Event{UserID: "u1", Title: "회의", StartTime: time.Now()})
}
