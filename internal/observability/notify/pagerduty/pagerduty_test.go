package pagerduty

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

func TestNewClientRequiresRoutingKey(t *testing.T) {
	_, err := NewClient(Config{RoutingKey: ""})
	require.Error(t, err)
}

func TestSendPollFailureSubmitsTriggerEvent(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		RoutingKey: "rk-123",
		Source:     "autoapply-prod",
		Endpoint:   srv.URL,
		Client:     srv.Client(),
	})
	require.NoError(t, err)

	err = client.SendPollFailure(context.Background(), notify.PollFailurePayload{
		Error:       "credential expired",
		ErrorClass:  "auth",
		Severity:    notify.SeverityWarning,
		Consecutive: 2,
		Metadata:    map[string]string{"user_id": "u-9"},
		OccurredAt:  time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "rk-123", got["routing_key"])
	assert.Equal(t, "trigger", got["event_action"])

	payload, ok := got["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "auto-apply poll cycle failed: credential expired", payload["summary"])
	assert.Equal(t, "autoapply-prod", payload["source"])
	assert.Equal(t, notify.SeverityWarning, payload["severity"])
	assert.Equal(t, "poller", payload["component"])
	assert.Equal(t, "2025-06-01T08:30:00Z", payload["timestamp"])

	custom, ok := payload["custom_details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "auth", custom["error_class"])
	assert.Equal(t, float64(2), custom["consecutive_failures"])
	assert.Equal(t, "u-9", custom["user_id"])
}

func TestSendPollFailureDefaultsSeverityToCritical(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(Config{RoutingKey: "rk-123", Endpoint: srv.URL, Client: srv.Client()})
	require.NoError(t, err)

	require.NoError(t, client.SendPollFailure(context.Background(), notify.PollFailurePayload{Error: "boom"}))
	payload, ok := got["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, notify.SeverityCritical, payload["severity"])
	assert.Equal(t, "autoapply", payload["source"])
}

func TestSendPollFailureRetriesUntilAccepted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(Config{RoutingKey: "rk-123", Endpoint: srv.URL, RetryLimit: 3, Client: srv.Client()})
	require.NoError(t, err)

	require.NoError(t, client.SendPollFailure(context.Background(), notify.PollFailurePayload{Error: "boom"}))
	assert.Equal(t, int32(3), calls.Load())
}
