package runner

import (
	"testing"
	"time"
)

func TestStopDrainsOnce(t *testing.T) {
	drains := 0
	r := NewLifecycleRunner(DrainerFunc(func() error {
		drains++
		return nil
	}), Hooks{}, time.Second)

	if err := r.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if drains != 1 {
		t.Fatalf("drains = %d", drains)
	}
	if r.State() != StateStopped {
		t.Fatalf("state = %v", r.State())
	}
}

func TestStopReportsDrainTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	r := NewLifecycleRunner(DrainerFunc(func() error {
		<-block
		return nil
	}), Hooks{}, 10*time.Millisecond)

	if err := r.Stop(); err == nil {
		t.Fatalf("expected drain timeout")
	}
}

func TestHooksFireAroundStop(t *testing.T) {
	stopped := false
	r := NewLifecycleRunner(nil, Hooks{OnStop: func() { stopped = true }}, time.Second)
	if err := r.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !stopped {
		t.Fatalf("OnStop did not fire")
	}
}
