// Package generate runs the LLM attempt ladder: one base attempt, one
// repair attempt for parse/schema failures, and a final ultra-strict
// attempt in hard mode. Transport failures are terminal immediately;
// the ladder exists only for malformed output of otherwise successful
// calls.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/moodmora/edge/pkg/errorsx"
	"github.com/moodmora/edge/pkg/llm"
	"github.com/moodmora/edge/pkg/metrics"
	"github.com/moodmora/edge/pkg/prompt"
	"github.com/moodmora/edge/pkg/resilience"
	"github.com/moodmora/edge/pkg/voice"
)

const (
	baseTemperature   = 0.4
	repairTemperature = 0.2
	strictTemperature = 0.0

	baseMaxTokens   = 700
	strictMaxTokens = 500

	defaultWhyItWorks = "Clear, respectful, and low pressure."
	maxEmotionEntries = 3
)

type Config struct {
	Model string
	// Suggestion counts per mode. Zero values pick 3 and 2.
	Suggestions         int
	HardModeSuggestions int
}

func (c Config) count(hardMode bool) int {
	if hardMode {
		if c.HardModeSuggestions > 0 {
			return c.HardModeSuggestions
		}
		return 2
	}
	if c.Suggestions > 0 {
		return c.Suggestions
	}
	return 3
}

type Args struct {
	RequestID     string
	Mode          prompt.Mode
	InputText     string
	OutputVariant string
	HardMode      bool

	FlirtMode   prompt.FlirtMode
	DatingStage string
	DatingVibe  string

	SafetyHints []string
	Voice       *voice.Input
	Contact     *voice.Contact
}

type Usage struct {
	PromptTokens     int   `json:"prompt_tokens"`
	CompletionTokens int   `json:"completion_tokens"`
	TotalTokens      int   `json:"total_tokens"`
	LatencyMS        int64 `json:"latency_ms"`
}

type Result struct {
	Suggestions      []llm.Suggestion
	Usage            Usage
	ParseOK          bool
	SchemaOK         bool
	ExtractedFromRaw bool
	RepairAttempted  bool
	Attempts         int
	SafetyLine       string
	BestQuestion     string
}

// OutputError carries the diagnostics of an exhausted attempt ladder.
type OutputError struct {
	Failure          llm.ParseFailure
	ExtractedFromRaw bool
	RawPreview       string
	Issues           []llm.Issue
	Attempts         int
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("%s after %d attempts (extracted_from_raw=%t): %s", e.Failure, e.Attempts, e.ExtractedFromRaw, e.RawPreview)
}

type Orchestrator struct {
	client   llm.Client
	cfg      Config
	logger   *slog.Logger
	observer metrics.Observer
}

type Option func(*Orchestrator)

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func WithObserver(obs metrics.Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observer = obs
		}
	}
}

func New(client llm.Client, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{client: client, cfg: cfg, logger: slog.Default(), observer: metrics.NoopObserver{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type attemptStep struct {
	temperature float64
	maxTokens   int
	reminders   int
}

// Generate runs the ladder and returns the first validated result.
func (o *Orchestrator) Generate(ctx context.Context, args Args) (Result, error) {
	count := o.cfg.count(args.HardMode)

	flirt := args.FlirtMode
	if args.HardMode {
		// hard mode and flirtation are mutually exclusive
		flirt = prompt.FlirtOff
	}

	base := prompt.BuildMessages(prompt.BuildArgs{
		Mode:            args.Mode,
		InputText:       args.InputText,
		SuggestionCount: count,
		OutputVariant:   args.OutputVariant,
		HardMode:        args.HardMode,
		FlirtMode:       flirt,
		DatingStage:     args.DatingStage,
		DatingVibe:      args.DatingVibe,
		SafetyHints:     args.SafetyHints,
		Voice:           args.Voice,
		Contact:         args.Contact,
	})

	ladder := []attemptStep{
		{temperature: baseTemperature, maxTokens: baseMaxTokens},
		{temperature: repairTemperature, maxTokens: baseMaxTokens, reminders: 1},
	}
	if args.HardMode {
		ladder = append(ladder, attemptStep{temperature: strictTemperature, maxTokens: strictMaxTokens, reminders: 2})
	}

	reminder := strictReminder(count, args.HardMode)

	var lastParse llm.ParseResult
	for i, step := range ladder {
		attempt := i + 1
		o.emit(metrics.MetricsEvent{
			Name:  metrics.EventLLMAttempt,
			Value: float64(attempt),
			Tags:  map[string]string{"request_id": args.RequestID, "mode": string(args.Mode)},
		})

		messages := base
		if step.reminders > 0 {
			messages = make([]llm.Message, 0, len(base)+step.reminders)
			for j := 0; j < step.reminders; j++ {
				messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: reminder})
			}
			messages = append(messages, base...)
		}

		start := time.Now()
		resp, err := o.client.Complete(ctx, llm.Request{
			Model:          o.cfg.Model,
			Messages:       messages,
			Temperature:    step.temperature,
			MaxTokens:      step.maxTokens,
			ResponseFormat: "json_object",
		})
		latency := time.Since(start)
		if err != nil {
			return Result{}, o.terminalCallError(args, attempt, err)
		}

		parse := llm.ParseAndValidate(resp.Content, count, llm.ValidateOptions{
			RequireHardModeFields: args.HardMode,
		})
		if !parse.OK {
			lastParse = parse
			o.logger.Warn("llm_output_invalid",
				"request_id", args.RequestID,
				"attempt", attempt,
				"failure", parse.Failure,
				"extracted_from_raw", parse.ExtractedFromRaw,
				"issues", len(parse.Issues),
			)
			continue
		}

		suggestions := normalizeSuggestions(parse.Parsed.Suggestions)
		for _, s := range suggestions {
			if strings.TrimSpace(s.Text) == "" {
				return Result{}, errorsx.Wrap(errors.New("model returned a suggestion with empty text"), errorsx.ReasonLLMEmptyText)
			}
		}

		usage := Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
			LatencyMS:        latency.Milliseconds(),
		}
		o.emit(metrics.MetricsEvent{
			Name:  metrics.EventLLMDone,
			Value: float64(latency.Milliseconds()),
			Tags: map[string]string{
				"request_id": args.RequestID,
				"mode":       string(args.Mode),
				"model":      o.cfg.Model,
			},
			Fields: map[string]any{
				"prompt_tokens": resp.Usage.PromptTokens,
				"total_tokens":  resp.Usage.TotalTokens,
				"attempt":       attempt,
			},
		})

		return Result{
			Suggestions:      suggestions,
			Usage:            usage,
			ParseOK:          true,
			SchemaOK:         true,
			ExtractedFromRaw: parse.ExtractedFromRaw,
			RepairAttempted:  attempt > 1,
			Attempts:         attempt,
			SafetyLine:       strings.TrimSpace(parse.Parsed.SafetyLine),
			BestQuestion:     strings.TrimSpace(parse.Parsed.BestQuestion),
		}, nil
	}

	outErr := &OutputError{
		Failure:          lastParse.Failure,
		ExtractedFromRaw: lastParse.ExtractedFromRaw,
		RawPreview:       lastParse.RawPreview,
		Issues:           lastParse.Issues,
		Attempts:         len(ladder),
	}
	reason := errorsx.ReasonLLMParse
	if lastParse.Failure == llm.FailureSchema {
		reason = errorsx.ReasonLLMSchema
	}
	return Result{}, errorsx.Wrap(outErr, reason)
}

func (o *Orchestrator) terminalCallError(args Args, attempt int, err error) error {
	o.logger.Error("llm_call_failed",
		"request_id", args.RequestID,
		"attempt", attempt,
		"provider", o.client.Name(),
		"error", err,
	)
	if resilience.IsRateLimit(err) {
		o.emit(metrics.MetricsEvent{
			Name: metrics.EventRateLimit,
			Tags: map[string]string{"request_id": args.RequestID, "provider": o.client.Name()},
		})
		return errorsx.Wrap(err, errorsx.ReasonLLMRateLimit)
	}
	if llm.IsTransport(err) {
		return errorsx.Wrap(err, errorsx.ReasonLLMTransport)
	}
	if errorsx.Reason(err) != errorsx.ReasonUnknown {
		return err
	}
	// Anything else from the client (timeouts, connection resets) is a
	// transport failure too.
	return errorsx.Wrap(err, errorsx.ReasonLLMTransport)
}

func (o *Orchestrator) emit(ev metrics.MetricsEvent) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	o.observer.RecordEvent(ev)
}

func normalizeSuggestions(in []llm.Suggestion) []llm.Suggestion {
	out := make([]llm.Suggestion, len(in))
	for i, s := range in {
		if strings.TrimSpace(s.Label) == "" {
			s.Label = fmt.Sprintf("Option %d", i+1)
		}
		if strings.TrimSpace(s.WhyItWorks) == "" {
			s.WhyItWorks = defaultWhyItWorks
		}
		s.EmotionPreview = normalizeEmotions(s.EmotionPreview)
		out[i] = s
	}
	return out
}

func normalizeEmotions(in llm.FlexStrings) llm.FlexStrings {
	out := make(llm.FlexStrings, 0, maxEmotionEntries)
	for _, e := range in {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		out = append(out, e)
		if len(out) == maxEmotionEntries {
			break
		}
	}
	if len(out) == 0 {
		return llm.FlexStrings{"calm"}
	}
	return out
}

func strictReminder(count int, hardMode bool) string {
	lines := []string{
		"REMINDER: your previous output was not valid.",
		"Return ONLY one valid JSON object. No markdown, no code fences, no commentary.",
		fmt.Sprintf("The object must contain a \"suggestions\" array with exactly %d items.", count),
		"Each item must have exactly these keys: label, text, why_it_works, emotion_preview.",
		"label, text and why_it_works are non-empty strings; emotion_preview is a non-empty array of strings.",
	}
	if hardMode {
		lines = append(lines,
			"You MUST also include top-level \"hard_mode_applied\" set to exactly true,",
			"a non-empty \"safety_line\" string and a non-empty \"best_question\" string.")
	}
	return strings.Join(lines, "\n")
}
