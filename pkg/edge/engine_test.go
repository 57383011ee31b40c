package edge

import (
	"testing"

	"github.com/moodmora/edge/pkg/api"
)

func TestNewEngineWithMockVendor(t *testing.T) {
	cfg := Config{
		Vendors: VendorsConfig{LLM: VendorConfig{Provider: "mock"}},
		Server:  api.ServerConfig{Addr: "127.0.0.1:0"},
	}
	engine, err := NewEngine(EngineOptions{Config: cfg})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := engine.Health(); err != nil {
		t.Fatalf("health: %v", err)
	}
	if err := engine.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestNewEngineRejectsBadVendor(t *testing.T) {
	cfg := Config{Vendors: VendorsConfig{LLM: VendorConfig{Provider: "nope"}}}
	if _, err := NewEngine(EngineOptions{Config: cfg}); err == nil {
		t.Fatalf("unknown vendor must fail")
	}
}
