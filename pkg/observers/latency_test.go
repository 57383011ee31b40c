package observers

import (
	"testing"
	"time"

	"github.com/moodmora/edge/pkg/metrics"
)

func event(name, requestID string, at time.Time) metrics.MetricsEvent {
	return metrics.MetricsEvent{
		Name: name,
		Time: at,
		Tags: map[string]string{"request_id": requestID},
	}
}

func TestLatencyObserverDropsTraceOnDone(t *testing.T) {
	o := NewLatencyObserver(nil)
	now := time.Now()

	o.RecordEvent(event(metrics.EventRequestIn, "req_a", now))
	o.RecordEvent(event(metrics.EventRiskDone, "req_a", now.Add(time.Millisecond)))
	if len(o.traces) != 1 {
		t.Fatalf("in-flight traces = %d", len(o.traces))
	}

	o.RecordEvent(event(metrics.EventRequestDone, "req_a", now.Add(5*time.Millisecond)))
	if len(o.traces) != 0 {
		t.Fatalf("trace must be dropped after request_done, have %d", len(o.traces))
	}
}

func TestLatencyObserverClosesRejectedRequests(t *testing.T) {
	o := NewLatencyObserver(nil)
	now := time.Now()

	// A request rejected before the risk stage still terminates.
	o.RecordEvent(event(metrics.EventRequestIn, "req_b", now))
	o.RecordEvent(event(metrics.EventRequestDone, "req_b", now.Add(time.Millisecond)))
	if len(o.traces) != 0 {
		t.Fatalf("rejected request leaked a trace")
	}

	o.RecordEvent(event(metrics.EventRequestIn, "", now))
	if len(o.traces) != 0 {
		t.Fatalf("events without a request_id must be ignored")
	}
}
