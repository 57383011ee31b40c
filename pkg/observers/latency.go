package observers

import (
	"log/slog"
	"sync"
	"time"

	"github.com/moodmora/edge/pkg/metrics"
)

// LatencyObserver tracks per-request stage timestamps and logs one
// latency line when the request finishes.
type LatencyObserver struct {
	mu     sync.Mutex
	traces map[string]*trace
	log    *slog.Logger
}

type trace struct {
	requestIn time.Time
	riskDone  time.Time
	llmFirst  time.Time
	llmDone   time.Time
	attempts  int
}

func NewLatencyObserver(log *slog.Logger) *LatencyObserver {
	if log == nil {
		log = slog.Default()
	}
	return &LatencyObserver{
		traces: make(map[string]*trace),
		log:    log,
	}
}

func (o *LatencyObserver) RecordEvent(ev metrics.MetricsEvent) {
	requestID := ""
	if ev.Tags != nil {
		requestID = ev.Tags["request_id"]
	}
	if requestID == "" {
		return
	}
	o.mu.Lock()
	t := o.traces[requestID]
	if t == nil {
		t = &trace{}
		o.traces[requestID] = t
	}
	switch ev.Name {
	case metrics.EventRequestIn:
		if t.requestIn.IsZero() {
			t.requestIn = ev.Time
		}
	case metrics.EventRiskDone:
		if t.riskDone.IsZero() {
			t.riskDone = ev.Time
		}
	case metrics.EventLLMAttempt:
		t.attempts++
		if t.llmFirst.IsZero() {
			t.llmFirst = ev.Time
		}
	case metrics.EventLLMDone:
		t.llmDone = ev.Time
	case metrics.EventRequestDone:
		o.logLatencyLocked(requestID, t, ev.Time)
		delete(o.traces, requestID)
	}
	o.mu.Unlock()
}

func (o *LatencyObserver) logLatencyLocked(requestID string, t *trace, done time.Time) {
	riskMs := durationMs(t.requestIn, t.riskDone)
	llmMs := durationMs(t.llmFirst, t.llmDone)
	totalMs := durationMs(t.requestIn, done)
	o.log.Info("latency",
		"request_id", requestID,
		"risk_ms", riskMs,
		"llm_ms", llmMs,
		"llm_attempts", t.attempts,
		"total_ms", totalMs,
	)
}

func durationMs(a, b time.Time) int64 {
	if a.IsZero() || b.IsZero() {
		return -1
	}
	return b.Sub(a).Milliseconds()
}
