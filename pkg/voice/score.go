package voice

import (
	"math"
	"strings"

	"github.com/moodmora/edge/pkg/llm"
)

// Proxy tokens for formality, hedging, and warmth. Deliberately cover
// both English and common Finglish markers so the heuristic does not
// collapse on mixed-language output.
var (
	formalTokens = []string{"please", "kindly", "regards", "sincerely", "dear", "with respect", "ba ehteram", "lotfan"}
	hedgeTokens  = []string{"maybe", "if you want", "up to you", "no worries if", "whenever you can", "agar ok", "age ok", "har vaght"}
	warmTokens   = []string{"thanks", "thank you", "appreciate", "khoshal", "mersi", "mamnoon", "dost", "❤️", "🙏"}
)

// MatchScore measures how well the generated suggestions fit the
// effective voice, as an integer in [0,100]. A disabled or absent voice
// yields the neutral baseline 50. Dials without a target contribute a
// fixed 0.7 component; set dials score by distance from the measured
// value. Phrases from do_not_use found in any suggestion cost 20 points
// each, capped at 60.
func MatchScore(v *Input, suggestions []llm.Suggestion) int {
	if v == nil || !v.Enabled {
		return 50
	}

	var profile Profile
	if v.Profile != nil {
		profile = *v.Profile
	}

	texts := make([]string, len(suggestions))
	for i, s := range suggestions {
		texts[i] = s.Text
	}

	avgWords := avgFloat(mapInts(texts, countWords))
	brevityNorm := measuredBrevity(avgWords)

	avgEmoji := avgFloat(mapInts(texts, countEmojis))
	emojiNorm := clamp01(avgEmoji / 2)

	formalHit := tokenHitRate(texts, formalTokens)
	hedgeHit := tokenHitRate(texts, hedgeTokens)
	warmHit := tokenHitRate(texts, warmTokens)
	directnessNorm := clamp01(1 - hedgeHit)

	compBrevity := component(profile.Brevity, brevityNorm)
	compEmoji := component(profile.EmojiRate, emojiNorm)
	compFormality := component(profile.Formality, formalHit)
	compDirectness := component(profile.Directness, directnessNorm)
	compWarmth := component(profile.Warmth, warmHit)

	score := (compBrevity*0.25 + compEmoji*0.15 + compFormality*0.20 + compDirectness*0.20 + compWarmth*0.20) * 100

	penalty := 0.0
	for _, phrase := range profile.DoNotUse {
		p := strings.TrimSpace(phrase)
		if p == "" {
			continue
		}
		if anyContains(texts, p) {
			penalty += 20
		}
		if penalty >= 60 {
			break
		}
	}
	score -= penalty

	return clampIntRange(int(math.Round(score)), 0, 100)
}

func component(target *float64, measured float64) float64 {
	if target == nil {
		return 0.7
	}
	return clamp01(1 - math.Abs(measured-clamp01(*target)))
}

func measuredBrevity(avgWords float64) float64 {
	switch {
	case avgWords <= 8:
		return 1.0
	case avgWords <= 14:
		return 0.7
	case avgWords <= 22:
		return 0.4
	default:
		return 0.2
	}
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

// countEmojis approximates emoji density by rune ranges. Go's regexp
// has no Extended_Pictographic class, so the common blocks are checked
// directly: misc symbols and dingbats, and the SMP emoji planes.
func countEmojis(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r >= 0x2600 && r <= 0x27BF:
			n++
		case r >= 0x1F300 && r <= 0x1FAFF:
			n++
		}
	}
	return n
}

func tokenHitRate(texts []string, tokens []string) float64 {
	if len(texts) == 0 {
		return 0
	}
	hits := 0
	for _, t := range texts {
		low := strings.ToLower(t)
		for _, k := range tokens {
			if strings.Contains(low, k) {
				hits++
				break
			}
		}
	}
	return clamp01(float64(hits) / float64(len(texts)))
}

func anyContains(texts []string, phrase string) bool {
	p := strings.ToLower(phrase)
	for _, t := range texts {
		if strings.Contains(strings.ToLower(t), p) {
			return true
		}
	}
	return false
}

func mapInts(texts []string, f func(string) int) []float64 {
	out := make([]float64, len(texts))
	for i, t := range texts {
		out[i] = float64(f(t))
	}
	return out
}

func avgFloat(nums []float64) float64 {
	if len(nums) == 0 {
		return 0
	}
	sum := 0.0
	for _, n := range nums {
		sum += n
	}
	return sum / float64(len(nums))
}

func clampIntRange(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
