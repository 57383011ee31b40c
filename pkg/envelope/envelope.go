// Package envelope defines the uniform response wrapper shared by
// every route.
package envelope

import (
	"time"

	"github.com/google/uuid"
)

// ContractVersion is stamped into every envelope's meta.
const ContractVersion = "1.0.0"

type Status string

const (
	StatusOK      Status = "ok"
	StatusBlocked Status = "blocked"
	StatusError   Status = "error"
)

type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type Envelope struct {
	Status      Status         `json:"status"`
	RequestID   string         `json:"request_id"`
	TimestampMS int64          `json:"timestamp_ms"`
	Data        map[string]any `json:"data"`
	Error       *ErrorBody     `json:"error"`
	Meta        map[string]any `json:"meta"`
}

// NewRequestID mints the id used across the envelope, logs, and
// metrics for one request.
func NewRequestID() string {
	return "req_" + uuid.NewString()
}

func newEnvelope(status Status, requestID string) Envelope {
	if requestID == "" {
		requestID = NewRequestID()
	}
	return Envelope{
		Status:      status,
		RequestID:   requestID,
		TimestampMS: time.Now().UnixMilli(),
		Meta:        map[string]any{"contract_version": ContractVersion},
	}
}

func OK(requestID string, data map[string]any, meta map[string]any) Envelope {
	env := newEnvelope(StatusOK, requestID)
	env.Data = data
	mergeMeta(env.Meta, meta)
	return env
}

// Blocked reports a refused generation. It is a normal outcome, not a
// fault: data stays null, error explains the block, and it travels
// with HTTP 200.
func Blocked(requestID, code, message string, details map[string]any, meta map[string]any) Envelope {
	env := newEnvelope(StatusBlocked, requestID)
	env.Error = &ErrorBody{Code: code, Message: message, Details: details}
	mergeMeta(env.Meta, meta)
	return env
}

func Err(requestID, code, message string, details map[string]any, meta map[string]any) Envelope {
	env := newEnvelope(StatusError, requestID)
	env.Error = &ErrorBody{Code: code, Message: message, Details: details}
	mergeMeta(env.Meta, meta)
	return env
}

func mergeMeta(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}
