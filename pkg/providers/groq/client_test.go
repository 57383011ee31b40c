package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moodmora/edge/pkg/errorsx"
	"github.com/moodmora/edge/pkg/llm"
	"github.com/moodmora/edge/pkg/resilience"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New("test-key", 5*time.Second)
	c.BaseURL = srv.URL
	return c
}

func TestCompleteSuccess(t *testing.T) {
	var gotBody map[string]any
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Fatalf("bad auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"suggestions\":[]}"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	})

	resp, err := c.Complete(context.Background(), llm.Request{
		Model:          "llama-3.3-70b-versatile",
		Messages:       []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		Temperature:    0.4,
		MaxTokens:      700,
		ResponseFormat: "json_object",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Content != `{"suggestions":[]}` {
		t.Fatalf("content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Fatalf("usage = %+v", resp.Usage)
	}
	rf, _ := gotBody["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Fatalf("response_format not forwarded: %v", gotBody["response_format"])
	}
	if gotBody["max_tokens"] != float64(700) {
		t.Fatalf("max_tokens = %v", gotBody["max_tokens"])
	}
}

func TestCompleteRateLimited(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	})
	_, err := c.Complete(context.Background(), llm.Request{Model: "m"})
	if !resilience.IsRateLimit(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestCompleteTransportError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broke"))
	})
	_, err := c.Complete(context.Background(), llm.Request{Model: "m"})
	if !llm.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	var te llm.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if te.Status != http.StatusBadGateway || te.Body != "upstream broke" {
		t.Fatalf("transport error = %+v", te)
	}
}

func TestCompleteMissingAPIKey(t *testing.T) {
	c := New("", 0)
	_, err := c.Complete(context.Background(), llm.Request{Model: "m"})
	if !errorsx.HasReason(err, errorsx.ReasonLLMMissingAPIKey) {
		t.Fatalf("expected missing api key reason, got %v", err)
	}
}

func TestTimeoutClamp(t *testing.T) {
	if got := clampTimeout(0); got != defaultTimeout {
		t.Fatalf("default = %v", got)
	}
	if got := clampTimeout(100 * time.Millisecond); got != minTimeout {
		t.Fatalf("min = %v", got)
	}
	if got := clampTimeout(5 * time.Minute); got != maxTimeout {
		t.Fatalf("max = %v", got)
	}
}

func TestCompleteHonorsContext(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Complete(ctx, llm.Request{Model: "m"}); err == nil {
		t.Fatalf("expected context error")
	}
}
