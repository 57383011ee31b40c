package edge

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Vendors.LLM.Provider != "groq" {
		t.Fatalf("provider = %q", cfg.Vendors.LLM.Provider)
	}
	if cfg.Generation.Suggestions != 3 || cfg.Generation.HardModeSuggestions != 2 {
		t.Fatalf("generation = %+v", cfg.Generation)
	}
	if cfg.PromptVersion != "3.2.0" {
		t.Fatalf("prompt_version = %q", cfg.PromptVersion)
	}
	if !cfg.Privacy.RedactPII {
		t.Fatalf("redact_pii should default on")
	}
	if cfg.Contract.Enabled {
		t.Fatalf("contract check should default off")
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("TEST_GROQ_KEY", "gsk_test123")
	path := writeConfig(t, `
vendors:
  llm:
    provider: groq
    settings:
      api_key: ${TEST_GROQ_KEY}
      model: llama-3.3-70b-versatile
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Vendors.LLM.Settings["api_key"]; got != "gsk_test123" {
		t.Fatalf("api_key = %v", got)
	}
}

func TestLoadConfigRejectsEmptyProvider(t *testing.T) {
	path := writeConfig(t, `
vendors:
  llm:
    provider: "  "
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("blank provider must fail validation")
	}
}

func TestBuildLLMVendors(t *testing.T) {
	cfg := Config{Vendors: VendorsConfig{LLM: VendorConfig{
		Provider: "groq",
		Settings: map[string]any{"model": "custom-model", "timeout_ms": 5000},
	}}}
	client, model, err := buildLLM(cfg, nil)
	if err != nil {
		t.Fatalf("groq: %v", err)
	}
	if client == nil || model != "custom-model" {
		t.Fatalf("client=%v model=%q", client, model)
	}

	cfg.Vendors.LLM = VendorConfig{Provider: "mock", Settings: map[string]any{"content": `{"suggestions": []}`}}
	client, model, err = buildLLM(cfg, nil)
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	if client.Name() != "mock_llm" || model != "mock" {
		t.Fatalf("name=%q model=%q", client.Name(), model)
	}

	cfg.Vendors.LLM = VendorConfig{Provider: "nope"}
	if _, _, err := buildLLM(cfg, nil); err == nil {
		t.Fatalf("unknown provider must fail")
	}
}

func TestBuildLLMCircuitBreaker(t *testing.T) {
	cfg := Config{Vendors: VendorsConfig{LLM: VendorConfig{
		Provider: "groq",
		Settings: map[string]any{"use_circuit_breaker": true},
	}}}
	client, model, err := buildLLM(cfg, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if model != defaultModel {
		t.Fatalf("model = %q", model)
	}
	if client.Name() != "groq" {
		t.Fatalf("breaker must keep the inner name, got %q", client.Name())
	}
}

func TestBuildLLMRejectsUnknownSetting(t *testing.T) {
	cfg := Config{Vendors: VendorsConfig{LLM: VendorConfig{
		Provider: "groq",
		Settings: map[string]any{"api-key": "x", "bogus": true},
	}}}
	if _, _, err := buildLLM(cfg, nil); err == nil {
		t.Fatalf("unknown setting must fail schema validation")
	}
}
