package observers

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/moodmora/edge/pkg/metrics"
)

// UsageSummary aggregates LLM token spending for one request.
type UsageSummary struct {
	RequestID     string `json:"request_id"`
	Mode          string `json:"mode,omitempty"`
	Model         string `json:"model,omitempty"`
	LLMCalls      int    `json:"llm_calls"`
	PromptTokens  int    `json:"prompt_tokens"`
	TotalTokens   int    `json:"total_tokens"`
	RecordedAtUTC string `json:"recorded_at_utc"`
}

// UsageObserver accumulates per-request token usage from llm_done
// events and writes one summary file per request to the artifacts dir
// on Close. With an empty dir it is inert.
type UsageObserver struct {
	dir   string
	mu    sync.Mutex
	stats map[string]*UsageSummary
}

func NewUsageObserver(dir string) *UsageObserver {
	return &UsageObserver{dir: dir, stats: make(map[string]*UsageSummary)}
}

func (o *UsageObserver) RecordEvent(ev metrics.MetricsEvent) {
	if strings.TrimSpace(o.dir) == "" {
		return
	}
	if ev.Name != metrics.EventLLMDone || ev.Tags == nil {
		return
	}
	requestID := ev.Tags["request_id"]
	if requestID == "" {
		return
	}
	o.mu.Lock()
	stat := o.stats[requestID]
	if stat == nil {
		stat = &UsageSummary{RequestID: requestID}
		o.stats[requestID] = stat
	}
	stat.LLMCalls++
	if mode := ev.Tags["mode"]; mode != "" {
		stat.Mode = mode
	}
	if model := ev.Tags["model"]; model != "" {
		stat.Model = model
	}
	stat.PromptTokens += intField(ev.Fields, "prompt_tokens")
	stat.TotalTokens += intField(ev.Fields, "total_tokens")
	o.mu.Unlock()
}

func (o *UsageObserver) Close() error {
	if strings.TrimSpace(o.dir) == "" {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return err
	}
	var errOut error
	for id, stat := range o.stats {
		stat.RecordedAtUTC = time.Now().UTC().Format(time.RFC3339)
		b, err := json.MarshalIndent(stat, "", "  ")
		if err != nil {
			errOut = errors.Join(errOut, err)
			continue
		}
		path := filepath.Join(o.dir, sanitizeID(id)+".usage.json")
		if err := os.WriteFile(path, b, 0o644); err != nil {
			errOut = errors.Join(errOut, err)
		}
	}
	return errOut
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch v := fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}

var _ metrics.Observer = (*UsageObserver)(nil)
