package envelope

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestOKEnvelope(t *testing.T) {
	env := OK("req_1", map[string]any{"mode": "IMPROVE"}, map[string]any{"model": "m"})
	if env.Status != StatusOK || env.Error != nil {
		t.Fatalf("envelope = %+v", env)
	}
	if env.RequestID != "req_1" {
		t.Fatalf("request id = %q", env.RequestID)
	}
	if env.Meta["contract_version"] != ContractVersion {
		t.Fatalf("meta = %v", env.Meta)
	}
	if env.Meta["model"] != "m" {
		t.Fatalf("caller meta lost: %v", env.Meta)
	}
	if env.TimestampMS == 0 {
		t.Fatalf("missing timestamp")
	}
}

func TestBlockedCarriesErrorNullData(t *testing.T) {
	env := Blocked("req_1", "SAFETY_BLOCK", "blocked", map[string]any{"reasons": []string{"self_harm_signal"}}, nil)
	if env.Status != StatusBlocked {
		t.Fatalf("status = %s", env.Status)
	}
	if env.Data != nil {
		t.Fatalf("blocked data must be null, got %v", env.Data)
	}
	if env.Error == nil || env.Error.Code != "SAFETY_BLOCK" {
		t.Fatalf("error = %+v", env.Error)
	}
	b, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"data":null`) {
		t.Fatalf("serialized form = %s", b)
	}
}

func TestErrEnvelope(t *testing.T) {
	env := Err("", "VALIDATION_ERROR", "input.draft_text is required", map[string]any{"path": "input.draft_text"}, nil)
	if env.Status != StatusError || env.Error == nil {
		t.Fatalf("envelope = %+v", env)
	}
	if !strings.HasPrefix(env.RequestID, "req_") {
		t.Fatalf("request id = %q", env.RequestID)
	}
	if env.Error.Details["path"] != "input.draft_text" {
		t.Fatalf("details = %v", env.Error.Details)
	}
}

func TestNewRequestIDUnique(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	if a == b {
		t.Fatalf("ids collided: %s", a)
	}
}
