package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/moodmora/edge/pkg/contract"
	"github.com/moodmora/edge/pkg/envelope"
	"github.com/moodmora/edge/pkg/errorsx"
	"github.com/moodmora/edge/pkg/generate"
	"github.com/moodmora/edge/pkg/metrics"
	"github.com/moodmora/edge/pkg/prompt"
	"github.com/moodmora/edge/pkg/redact"
	"github.com/moodmora/edge/pkg/risk"
	"github.com/moodmora/edge/pkg/safety"
	"github.com/moodmora/edge/pkg/voice"
)

// Envelope error codes.
const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeRiskBlock        = "RISK_BLOCK"
	CodeSafetyBlock      = "SAFETY_BLOCK"
	CodeMissingAPIKey    = "MISSING_API_KEY"
	CodeRateLimited      = "RATE_LIMITED"
	CodeLLMTransport     = "LLM_TRANSPORT_ERROR"
	CodeLLMOutputInvalid = "LLM_OUTPUT_INVALID"
	CodeLLMEmptyText     = "LLM_EMPTY_TEXT"
	CodeInternal         = "INTERNAL_ERROR"
	CodeNotFound         = "NOT_FOUND"
)

type HandlerConfig struct {
	Model         string
	PromptVersion string
}

type Handler struct {
	gen       *generate.Orchestrator
	cfg       HandlerConfig
	validator *contract.Validator
	observer  metrics.Observer
	logger    *slog.Logger
}

type HandlerOption func(*Handler)

func WithValidator(v *contract.Validator) HandlerOption {
	return func(h *Handler) { h.validator = v }
}

func WithObserver(obs metrics.Observer) HandlerOption {
	return func(h *Handler) {
		if obs != nil {
			h.observer = obs
		}
	}
}

func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

func NewHandler(gen *generate.Orchestrator, cfg HandlerConfig, opts ...HandlerOption) *Handler {
	h := &Handler{gen: gen, cfg: cfg, logger: slog.Default(), observer: metrics.NoopObserver{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type requestInput struct {
	DraftText     string `json:"draft_text"`
	ReceivedText  string `json:"received_text"`
	HardMode      bool   `json:"hard_mode"`
	OutputVariant string `json:"output_variant"`
	FlirtMode     string `json:"flirt_mode"`
	DatingStage   string `json:"dating_stage"`
	DatingVibe    string `json:"dating_vibe"`
}

type requestBody struct {
	Input   requestInput   `json:"input"`
	Voice   map[string]any `json:"voice"`
	Contact map[string]any `json:"contact"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	env := envelope.OK(envelope.NewRequestID(),
		map[string]any{"service": "moodmora-edge", "ok": true},
		map[string]any{
			"model":          h.cfg.Model,
			"prompt_version": h.cfg.PromptVersion,
		})
	h.write(w, http.StatusOK, env)
}

func (h *Handler) Improve(w http.ResponseWriter, r *http.Request) {
	h.handleGenerate(w, r, prompt.ModeImprove)
}

func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	h.handleGenerate(w, r, prompt.ModeReply)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request, mode prompt.Mode) {
	requestID := envelope.NewRequestID()
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("handler_panic", "request_id", requestID, "panic", rec)
			h.finish(w, http.StatusInternalServerError, requestID, start, mode,
				envelope.Err(requestID, CodeInternal, "internal error", nil, nil))
		}
	}()

	h.emit(metrics.MetricsEvent{
		Name: metrics.EventRequestIn,
		Tags: map[string]string{"request_id": requestID, "mode": string(mode)},
	})

	var body requestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.finish(w, http.StatusBadRequest, requestID, start, mode,
			envelope.Err(requestID, CodeValidationError, "Invalid JSON body", nil, nil))
		return
	}

	text, fieldPath := inputText(body.Input, mode)
	if strings.TrimSpace(text) == "" {
		h.finish(w, http.StatusBadRequest, requestID, start, mode,
			envelope.Err(requestID, CodeValidationError, fieldPath+" is required",
				map[string]any{"path": fieldPath}, nil))
		return
	}

	decision := risk.Precheck(text)
	h.emit(metrics.MetricsEvent{
		Name:  metrics.EventRiskDone,
		Value: float64(decision.Risk.Score),
		Tags:  map[string]string{"request_id": requestID, "mode": string(mode), "level": string(decision.Risk.Level)},
	})

	hardMode := body.Input.HardMode || decision.Risk.HardModeRecommended

	meta := func(extra map[string]any) map[string]any {
		m := map[string]any{
			"mode":               string(mode),
			"hard_mode":          hardMode,
			"output_variant":     body.Input.OutputVariant,
			"request_latency_ms": time.Since(start).Milliseconds(),
			"safety_blocked":     false,
			"risk":               riskPayload(decision.Risk),
		}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}

	if decision.Action == risk.ActionBlock {
		h.logger.Info("risk_block",
			"request_id", requestID,
			"level", decision.Risk.Level,
			"score", decision.Risk.Score,
		)
		h.finish(w, http.StatusOK, requestID, start, mode,
			envelope.Blocked(requestID, CodeRiskBlock, decision.Message,
				map[string]any{"reasons": decision.Risk.Reasons}, meta(nil)))
		return
	}

	saf := safety.Classify(text)
	if saf.Action == safety.ActionBlock {
		h.logger.Info("safety_block",
			"request_id", requestID,
			"reasons", saf.Reasons,
			"text", redact.Text(text),
		)
		h.finish(w, http.StatusOK, requestID, start, mode,
			envelope.Blocked(requestID, CodeSafetyBlock, "This message can't be assisted with.",
				map[string]any{"reasons": saf.Reasons},
				meta(map[string]any{"safety_blocked": true})))
		return
	}

	voiceInput := voice.ParseVoice(body.Voice)
	contactInput := voice.ParseContact(body.Contact)
	merged := voice.ApplyContactToVoice(voiceInput, contactInput)
	styleApplied := voice.StyleAppliedSummary(contactInput)

	res, err := h.gen.Generate(r.Context(), generate.Args{
		RequestID:     requestID,
		Mode:          mode,
		InputText:     text,
		OutputVariant: body.Input.OutputVariant,
		HardMode:      hardMode,
		FlirtMode:     prompt.FlirtMode(body.Input.FlirtMode),
		DatingStage:   body.Input.DatingStage,
		DatingVibe:    body.Input.DatingVibe,
		SafetyHints:   saf.Reasons,
		Voice:         merged.EffectiveVoice,
		Contact:       contactInput,
	})
	if err != nil {
		h.logger.Error("generation_failed",
			"request_id", requestID,
			"reason_code", string(errorsx.Reason(err)),
			"error", err,
		)
		code, details := generationFailure(err)
		h.finish(w, http.StatusBadGateway, requestID, start, mode,
			envelope.Err(requestID, code, "Could not generate suggestions.", details, meta(nil)))
		return
	}

	matchScore := voice.MatchScore(merged.EffectiveVoice, res.Suggestions)

	data := map[string]any{
		"mode":              string(mode),
		"voice_match_score": matchScore,
		"risk":              riskPayload(decision.Risk),
		"suggestions":       res.Suggestions,
	}
	if hardMode {
		data["hard_mode_applied"] = true
		data["safety_line"] = res.SafetyLine
		data["best_question"] = res.BestQuestion
	}
	if styleApplied != "" {
		data["style_applied"] = styleApplied
	}

	h.finish(w, http.StatusOK, requestID, start, mode,
		envelope.OK(requestID, data, meta(map[string]any{
			"model":              h.cfg.Model,
			"prompt_version":     h.cfg.PromptVersion,
			"usage":              res.Usage,
			"parse_ok":           res.ParseOK,
			"schema_ok":          res.SchemaOK,
			"extracted_from_raw": res.ExtractedFromRaw,
			"repair_attempted":   res.RepairAttempted,
		})))
}

// finish emits the terminal metrics event, runs the dev-only contract
// check, and writes the envelope.
func (h *Handler) finish(w http.ResponseWriter, status int, requestID string, start time.Time, mode prompt.Mode, env envelope.Envelope) {
	h.emit(metrics.MetricsEvent{
		Name:  metrics.EventRequestDone,
		Value: float64(time.Since(start).Milliseconds()),
		Tags: map[string]string{
			"request_id": requestID,
			"mode":       string(mode),
			"status":     string(env.Status),
		},
	})
	h.validator.Check(env)
	h.write(w, status, env)
}

func (h *Handler) write(w http.ResponseWriter, status int, env envelope.Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.logger.Error("envelope_encode_failed", "request_id", env.RequestID, "error", err)
	}
}

func (h *Handler) emit(ev metrics.MetricsEvent) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	h.observer.RecordEvent(ev)
}

func inputText(in requestInput, mode prompt.Mode) (string, string) {
	if mode == prompt.ModeReply {
		return in.ReceivedText, "input.received_text"
	}
	return in.DraftText, "input.draft_text"
}

func riskPayload(r risk.Result) map[string]any {
	return map[string]any{
		"level":   string(r.Level),
		"score":   r.Score,
		"reasons": r.Reasons,
	}
}

func generationFailure(err error) (string, map[string]any) {
	var details map[string]any
	var oe *generate.OutputError
	if errors.As(err, &oe) {
		details = map[string]any{
			"failure":            string(oe.Failure),
			"extracted_from_raw": oe.ExtractedFromRaw,
			"raw_preview":        oe.RawPreview,
			"attempts":           oe.Attempts,
		}
	}
	switch errorsx.Reason(err) {
	case errorsx.ReasonLLMMissingAPIKey:
		return CodeMissingAPIKey, details
	case errorsx.ReasonLLMRateLimit:
		return CodeRateLimited, details
	case errorsx.ReasonLLMTransport:
		return CodeLLMTransport, details
	case errorsx.ReasonLLMParse, errorsx.ReasonLLMSchema:
		return CodeLLMOutputInvalid, details
	case errorsx.ReasonLLMEmptyText:
		return CodeLLMEmptyText, details
	default:
		return CodeInternal, details
	}
}
