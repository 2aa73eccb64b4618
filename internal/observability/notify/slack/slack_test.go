package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentwire/autoapply/internal/observability/notify"
)

func TestNewClientRequiresWebhookURL(t *testing.T) {
	_, err := NewClient(Config{WebhookURL: "  "})
	require.Error(t, err)
}

func TestSendPollFailurePostsFormattedMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		WebhookURL: srv.URL,
		Channel:    "#poller-alerts",
		Username:   "poll-watch",
		Client:     srv.Client(),
	})
	require.NoError(t, err)

	err = client.SendPollFailure(context.Background(), notify.PollFailurePayload{
		Error:       "hh api status 503",
		ErrorClass:  "upstream",
		Consecutive: 3,
		Metadata:    map[string]string{"user_id": "u-1"},
		OccurredAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "poll-watch", got["username"])
	assert.Equal(t, "#poller-alerts", got["channel"])
	text, ok := got["text"].(string)
	require.True(t, ok)
	assert.Contains(t, text, "hh api status 503")
	assert.Contains(t, text, "*Class:* upstream")
	assert.Contains(t, text, "*Consecutive failures:* 3")
	assert.Contains(t, text, "*user_id:* u-1")
	assert.Contains(t, text, "2025-06-01T12:00:00Z")
}

func TestSendPollFailureOmitsChannelWhenUnset(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL, Client: srv.Client()})
	require.NoError(t, err)

	require.NoError(t, client.SendPollFailure(context.Background(), notify.PollFailurePayload{Error: "boom"}))
	_, hasChannel := got["channel"]
	assert.False(t, hasChannel)
	assert.Equal(t, "autoapply", got["username"])
}

func TestSendPollFailureRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL, RetryLimit: 2, Client: srv.Client()})
	require.NoError(t, err)

	require.NoError(t, client.SendPollFailure(context.Background(), notify.PollFailurePayload{Error: "boom"}))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendPollFailureReturnsLastErrorWhenExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL, RetryLimit: 1, Client: srv.Client()})
	require.NoError(t, err)

	err = client.SendPollFailure(context.Background(), notify.PollFailurePayload{Error: "boom"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, int32(2), calls.Load())
}
