package contract

import (
	"testing"

	"github.com/moodmora/edge/pkg/envelope"
)

func TestCheckValidEnvelopes(t *testing.T) {
	v := NewValidator(true, nil)

	ok := envelope.OK("req_1", map[string]any{"mode": "IMPROVE"}, nil)
	if !v.Check(ok) {
		t.Fatalf("ok envelope rejected")
	}

	blocked := envelope.Blocked("req_2", "SAFETY_BLOCK", "blocked", map[string]any{"reasons": []string{"self_harm_signal"}}, nil)
	if !v.Check(blocked) {
		t.Fatalf("blocked envelope rejected")
	}

	errEnv := envelope.Err("req_3", "VALIDATION_ERROR", "bad input", nil, nil)
	if !v.Check(errEnv) {
		t.Fatalf("error envelope rejected")
	}
}

func TestCheckRejectsBrokenEnvelope(t *testing.T) {
	v := NewValidator(true, nil)

	// ok status with a populated error violates the contract
	bad := envelope.OK("req_1", map[string]any{}, nil)
	bad.Error = &envelope.ErrorBody{Code: "X", Message: "y"}
	if v.Check(bad) {
		t.Fatalf("contradictory envelope passed")
	}

	wrongVersion := envelope.OK("req_1", map[string]any{}, nil)
	wrongVersion.Meta["contract_version"] = "9.9.9"
	if v.Check(wrongVersion) {
		t.Fatalf("wrong contract version passed")
	}
}

func TestDisabledValidatorAlwaysPasses(t *testing.T) {
	v := NewValidator(false, nil)
	bad := envelope.Envelope{}
	if !v.Check(bad) {
		t.Fatalf("disabled validator must pass everything")
	}
}
