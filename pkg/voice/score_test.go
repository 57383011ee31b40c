package voice

import (
	"testing"

	"github.com/moodmora/edge/pkg/llm"
)

func sugg(texts ...string) []llm.Suggestion {
	out := make([]llm.Suggestion, len(texts))
	for i, t := range texts {
		out[i] = llm.Suggestion{Label: "Option", Text: t}
	}
	return out
}

func TestMatchScoreDisabledIsNeutral(t *testing.T) {
	if got := MatchScore(nil, sugg("hey", "hello")); got != 50 {
		t.Fatalf("nil voice score = %d, want 50", got)
	}
	v := &Input{Enabled: false, Profile: &Profile{Warmth: f64(1)}}
	if got := MatchScore(v, sugg("hey")); got != 50 {
		t.Fatalf("disabled voice score = %d, want 50", got)
	}
}

func TestMatchScoreUnsetDialsNeutralComponents(t *testing.T) {
	// Every component falls back to 0.7, so the score is exactly 70.
	v := &Input{Enabled: true}
	if got := MatchScore(v, sugg("short note", "another short note")); got != 70 {
		t.Fatalf("score = %d, want 70", got)
	}
}

func TestMatchScoreRewardsShortWhenBrevityHigh(t *testing.T) {
	v := &Input{Enabled: true, Profile: &Profile{Brevity: f64(1)}}
	short := MatchScore(v, sugg("ok", "sounds good", "see you there"))
	long := MatchScore(v, sugg(
		"I was thinking that perhaps we could possibly try to find some time to talk about all of this at length sometime soon if that works",
	))
	if short <= long {
		t.Fatalf("short = %d should beat long = %d for high brevity target", short, long)
	}
}

func TestMatchScoreFormalityProxy(t *testing.T) {
	v := &Input{Enabled: true, Profile: &Profile{Formality: f64(1)}}
	formal := MatchScore(v, sugg("Dear Sam, kindly let me know. Regards"))
	casual := MatchScore(v, sugg("yo what's up"))
	if formal <= casual {
		t.Fatalf("formal = %d should beat casual = %d", formal, casual)
	}
}

func TestMatchScoreDoNotUsePenalty(t *testing.T) {
	clean := &Input{Enabled: true}
	dirty := &Input{Enabled: true, Profile: &Profile{DoNotUse: []string{"whatever"}}}
	texts := sugg("whatever works for you", "sounds fine")
	base := MatchScore(clean, texts)
	penalized := MatchScore(dirty, texts)
	if base-penalized != 20 {
		t.Fatalf("penalty = %d, want 20 (base %d, penalized %d)", base-penalized, base, penalized)
	}
}

func TestMatchScorePenaltyCap(t *testing.T) {
	v := &Input{
		Enabled: true,
		Profile: &Profile{DoNotUse: []string{"alpha", "beta", "gamma", "delta"}},
	}
	got := MatchScore(v, sugg("alpha beta gamma delta all in one"))
	base := MatchScore(&Input{Enabled: true}, sugg("alpha beta gamma delta all in one"))
	if base-got != 60 {
		t.Fatalf("penalty = %d, want cap 60", base-got)
	}
}

func TestMatchScoreEmojiCounting(t *testing.T) {
	v := &Input{Enabled: true, Profile: &Profile{EmojiRate: f64(1)}}
	withEmoji := MatchScore(v, sugg("thanks 🙏🙏"))
	without := MatchScore(v, sugg("thanks"))
	if withEmoji <= without {
		t.Fatalf("emoji = %d should beat plain = %d for high emoji target", withEmoji, without)
	}
}

func TestMatchScoreBounds(t *testing.T) {
	v := &Input{
		Enabled: true,
		Profile: &Profile{
			Warmth:     f64(0),
			Directness: f64(1),
			Brevity:    f64(1),
			Formality:  f64(0),
			EmojiRate:  f64(0),
			DoNotUse:   []string{"ok", "sure", "fine"},
		},
	}
	got := MatchScore(v, sugg("ok sure fine"))
	if got < 0 || got > 100 {
		t.Fatalf("score %d out of range", got)
	}
}
