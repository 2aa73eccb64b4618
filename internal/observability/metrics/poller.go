// Package metrics defines the standardised metric shapes the poller emits.
package metrics

import (
	"time"

	"github.com/talentwire/autoapply/internal/observability/statsd"

	obserrors "github.com/talentwire/autoapply/internal/observability/errors"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// CycleMetric captures one completed poll cycle for metric emission.
type CycleMetric struct {
	Result           string
	Duration         time.Duration
	ConfigsProcessed int
	ApplicationsSent int
	Err              error
}

// EmitCycle emits the standard metrics for a completed poll cycle.
func EmitCycle(sink statsd.Sink, in CycleMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": in.Result}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("poll.cycle", 1, tags)
	if in.Duration > 0 {
		sink.Timing("poll.cycle_duration", in.Duration, tags)
	}
	if in.Result == ResultSuccess {
		sink.Count("poll.job_searches", int64(in.ConfigsProcessed), nil)
		sink.Count("poll.applications", int64(in.ApplicationsSent), nil)
	}
}

// EmitRunning reports whether the poll loop is active.
func EmitRunning(sink statsd.Sink, running bool) {
	if sink == nil {
		return
	}
	value := 0.0
	if running {
		value = 1
	}
	sink.Gauge("poll.running", value, nil)
}
