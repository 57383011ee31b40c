package llm

import (
	"context"
	"errors"
	"fmt"
)

// Role values for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Request is one chat-completion call. ResponseFormat, when set to
// "json_object", asks the provider for JSON-object output mode.
type Request struct {
	Model          string
	Messages       []Message
	Temperature    float64
	MaxTokens      int
	ResponseFormat string
}

type Response struct {
	Content string
	Usage   Usage
}

// Client is the outbound chat-completion boundary. Implementations
// honor ctx cancellation and return TransportError for non-2xx
// responses, resilience.RateLimitError for 429.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Name() string
}

// Suggestion is one generated message variant.
type Suggestion struct {
	Label          string      `json:"label"`
	Text           string      `json:"text"`
	WhyItWorks     string      `json:"why_it_works"`
	EmotionPreview FlexStrings `json:"emotion_preview"`
}

// ParsedOutput is the validated shape of a model response. The hard
// mode fields are only present when that shape was requested.
type ParsedOutput struct {
	Suggestions     []Suggestion `json:"suggestions"`
	HardModeApplied *bool        `json:"hard_mode_applied,omitempty"`
	SafetyLine      string       `json:"safety_line,omitempty"`
	BestQuestion    string       `json:"best_question,omitempty"`
}

// TransportError is a non-2xx HTTP outcome from the provider. It is
// deliberately distinct from parse/schema failures: the repair ladder
// never runs for it.
type TransportError struct {
	Provider string
	Status   int
	Body     string
}

func (e TransportError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s http %d: %s", e.Provider, e.Status, e.Body)
	}
	return fmt.Sprintf("%s http %d", e.Provider, e.Status)
}

// IsTransport returns true when err is a provider transport failure.
func IsTransport(err error) bool {
	var te TransportError
	return errors.As(err, &te)
}
