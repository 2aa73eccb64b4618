// Package notify defines the payload and sink contract for operational
// failure notifications.
package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// PollFailurePayload captures the canonical data emitted when a poll cycle
// fails outright.
type PollFailurePayload struct {
	Error       string
	ErrorClass  string
	Severity    string
	Consecutive int
	OccurredAt  time.Time
	Metadata    map[string]string
}

// Sink describes a destination capable of consuming poll failure
// notifications.
type Sink interface {
	SendPollFailure(ctx context.Context, payload PollFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload PollFailurePayload) error

// SendPollFailure implements the Sink interface.
func (f SinkFunc) SendPollFailure(ctx context.Context, payload PollFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
