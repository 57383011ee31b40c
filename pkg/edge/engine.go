// Package edge assembles the service: config, provider wiring,
// observers, HTTP transport, and the lifecycle runner.
package edge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/moodmora/edge/pkg/api"
	"github.com/moodmora/edge/pkg/configutil"
	"github.com/moodmora/edge/pkg/contract"
	"github.com/moodmora/edge/pkg/generate"
	"github.com/moodmora/edge/pkg/llm"
	"github.com/moodmora/edge/pkg/logging"
	"github.com/moodmora/edge/pkg/metrics"
	"github.com/moodmora/edge/pkg/observers"
	"github.com/moodmora/edge/pkg/providers/groq"
	"github.com/moodmora/edge/pkg/providers/mock"
	"github.com/moodmora/edge/pkg/redact"
	"github.com/moodmora/edge/pkg/resilience"
	"github.com/moodmora/edge/pkg/runner"
)

const defaultModel = "llama-3.3-70b-versatile"

type Engine struct {
	cfg      Config
	server   *api.Server
	asyncObs *metrics.AsyncObserver
	usageObs *observers.UsageObserver
	events   *os.File
	runner   *runner.LifecycleRunner
	ctx      context.Context
	cancel   context.CancelFunc
}

type EngineOptions struct {
	Config Config
	// Client overrides the configured LLM vendor when set.
	Client llm.Client
	// ExtraObservers join the engine's observer chain.
	ExtraObservers []metrics.Observer
}

type groqSettings struct {
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	BaseURL           string `mapstructure:"base_url"`
	TimeoutMS         int    `mapstructure:"timeout_ms"`
	UseCircuitBreaker *bool  `mapstructure:"use_circuit_breaker"`
	CircuitThreshold  int    `mapstructure:"circuit_threshold"`
	CircuitCooldownMS int    `mapstructure:"circuit_cooldown_ms"`
}

var groqSettingsSchema = configutil.Schema{
	Optional: []string{
		"api_key", "model", "base_url", "timeout_ms",
		"use_circuit_breaker", "circuit_threshold", "circuit_cooldown_ms",
	},
}

type mockLLMSettings struct {
	Content string `mapstructure:"content"`
	Model   string `mapstructure:"model"`
}

func NewEngine(opts EngineOptions) (*Engine, error) {
	cfg := opts.Config
	logging.SetDefault(cfg.LogLevel, cfg.LogFormat)
	redact.SetEnabled(cfg.Privacy.RedactPII)

	client, model, err := buildLLM(cfg, opts.Client)
	if err != nil {
		return nil, err
	}

	slog.Info("edge_init",
		"environment", cfg.Environment,
		"llm_provider", cfg.Vendors.LLM.Provider,
		"model", model,
		"prompt_version", cfg.PromptVersion,
	)

	latencyObs := observers.NewLatencyObserver(slog.Default())
	logObs := observers.NewLoggerObserver(slog.Default())
	obsList := []metrics.Observer{latencyObs, logObs}
	obsList = append(obsList, opts.ExtraObservers...)

	var usageObs *observers.UsageObserver
	var events *os.File
	if dir := strings.TrimSpace(cfg.Observability.ArtifactsDir); dir != "" {
		if cfg.Observability.RetentionDays > 0 {
			_, _ = observers.PurgeArtifacts(dir, time.Duration(cfg.Observability.RetentionDays)*24*time.Hour)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("artifacts dir: %w", err)
		}
		usageObs = observers.NewUsageObserver(dir)
		obsList = append(obsList, usageObs)
		f, err := os.OpenFile(filepath.Join(dir, "events.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("events log: %w", err)
		}
		events = f
		obsList = append(obsList, metrics.NewJSONLObserver(f))
	}
	asyncObs := metrics.NewAsyncObserver(observers.NewMultiObserver(obsList...), 2048)

	if cb, ok := client.(*llm.CircuitBreakerClient); ok {
		cb.SetObserver(asyncObs)
	}

	gen := generate.New(client, generate.Config{
		Model:               model,
		Suggestions:         cfg.Generation.Suggestions,
		HardModeSuggestions: cfg.Generation.HardModeSuggestions,
	}, generate.WithObserver(asyncObs))

	validator := contract.NewValidator(cfg.Contract.Enabled, slog.Default())
	handler := api.NewHandler(gen,
		api.HandlerConfig{Model: model, PromptVersion: cfg.PromptVersion},
		api.WithValidator(validator),
		api.WithObserver(asyncObs),
	)
	server := api.NewServer(cfg.Server, handler, slog.Default())

	hooks := runner.Hooks{
		OnStart: func() {
			fields := []any{"message", "MoodMora Edge Ready"}
			for k, v := range server.ReadyFields() {
				fields = append(fields, k, v)
			}
			slog.Info("engine_ready", fields...)
		},
		OnStop: func() {
			asyncObs.Close()
			if usageObs != nil {
				_ = usageObs.Close()
			}
			if events != nil {
				_ = events.Close()
			}
			slog.Info("shutdown", "goroutines", runtime.NumGoroutine())
		},
	}

	drainer := runner.DrainerFunc(func() error {
		return server.Stop()
	})
	lr := runner.NewLifecycleRunner(drainer, hooks, 30*time.Second)

	ctx, cancel := context.WithCancel(context.Background())

	return &Engine{
		cfg:      cfg,
		server:   server,
		asyncObs: asyncObs,
		usageObs: usageObs,
		events:   events,
		runner:   lr,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

func buildLLM(cfg Config, override llm.Client) (llm.Client, string, error) {
	if override != nil {
		return override, defaultModel, nil
	}
	vendor := cfg.Vendors.LLM
	switch strings.ToLower(strings.TrimSpace(vendor.Provider)) {
	case "groq":
		if err := configutil.ValidateSettings(vendor.Settings, groqSettingsSchema); err != nil {
			return nil, "", fmt.Errorf("vendors.llm.settings: %w", err)
		}
		var s groqSettings
		if err := configutil.DecodeSettings(vendor.Settings, &s); err != nil {
			return nil, "", fmt.Errorf("vendors.llm.settings: %w", err)
		}
		model := strings.TrimSpace(s.Model)
		if model == "" {
			model = defaultModel
		}
		client := groq.New(s.APIKey, time.Duration(s.TimeoutMS)*time.Millisecond)
		if base := strings.TrimSpace(s.BaseURL); base != "" {
			client.BaseURL = base
		}
		if configutil.BoolValue(s.UseCircuitBreaker, false) {
			threshold := s.CircuitThreshold
			if threshold <= 0 {
				threshold = 3
			}
			cooldown := time.Duration(s.CircuitCooldownMS) * time.Millisecond
			if cooldown <= 0 {
				cooldown = 30 * time.Second
			}
			return llm.NewCircuitBreakerClient(client, resilience.NewCircuitBreaker(threshold, cooldown)), model, nil
		}
		return client, model, nil
	case "mock":
		var s mockLLMSettings
		if err := configutil.DecodeSettings(vendor.Settings, &s); err != nil {
			return nil, "", fmt.Errorf("vendors.llm.settings: %w", err)
		}
		model := strings.TrimSpace(s.Model)
		if model == "" {
			model = "mock"
		}
		if strings.TrimSpace(s.Content) != "" {
			return mock.NewClient(mock.Step{Content: s.Content}), model, nil
		}
		return mock.NewClient(), model, nil
	default:
		return nil, "", fmt.Errorf("unknown llm provider %q", vendor.Provider)
	}
}

func (e *Engine) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := e.server.Start(ctx); err != nil {
		return err
	}
	go func() {
		_ = e.runner.Run(ctx)
	}()
	return nil
}

func (e *Engine) Stop() error {
	if e.cancel != nil {
		e.cancel()
	}
	return e.runner.Stop()
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Health() error {
	if e.server == nil {
		return fmt.Errorf("missing http server")
	}
	return nil
}
