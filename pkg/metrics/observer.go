package metrics

import "time"

// Event names emitted by the request pipeline.
const (
	EventRequestIn     = "request_in"
	EventRiskDone      = "risk_done"
	EventLLMAttempt    = "llm_attempt"
	EventLLMDone       = "llm_done"
	EventRequestDone   = "request_done"
	EventRateLimit     = "rate_limit"
	EventBreakerOpen   = "breaker_open"
	EventBreakerClose  = "breaker_close"
	EventBreakerDenied = "breaker_denied"
)

type MetricsEvent struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

type Observer interface {
	RecordEvent(ev MetricsEvent)
}

// NoopObserver is the default sink when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) RecordEvent(MetricsEvent) {}
