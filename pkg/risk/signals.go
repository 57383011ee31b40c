package risk

import "regexp"

// Signal is one immutable scoring rule. The table below is read-only
// after init; matching never mutates it.
type Signal struct {
	ID           string
	Reason       string
	Weight       int
	HardModeHint bool
	Pattern      *regexp.Regexp
}

// Reason tags referenced by level overrides and tests.
const (
	ReasonInsults    = "insults_or_namecalling"
	ReasonThreats    = "threats_or_ultimatums"
	ReasonSexual     = "sexual_explicit"
	ReasonSexualSlur = "sexual_profanity_or_slur"
)

var signals = []Signal{
	// Conflict / aggression
	{
		ID:           "insult_basic",
		Reason:       ReasonInsults,
		Weight:       20,
		HardModeHint: true,
		Pattern:      regexp.MustCompile(`(?i)\b(stupid|idiot|moron|loser|pathetic)\b`),
	},
	{
		ID:           "accusation_you_always",
		Reason:       "accusations_or_blame",
		Weight:       15,
		HardModeHint: true,
		Pattern:      regexp.MustCompile(`(?i)\byou (always|never)\b`),
	},
	{
		ID:      "absolute_words",
		Reason:  "absolutes_escalate_conflict",
		Weight:  10,
		Pattern: regexp.MustCompile(`(?i)\b(always|never|everyone|no one|nothing|everything)\b`),
	},
	{
		ID:           "threat_or_ultimatum",
		Reason:       ReasonThreats,
		Weight:       35,
		HardModeHint: true,
		Pattern:      regexp.MustCompile(`(?i)\b(or else|you'll regret|i swear|i will ruin|i'll ruin|i'll make sure|you are done)\b`),
	},
	{
		ID:      "excessive_punctuation",
		Reason:  "high_emotional_intensity",
		Weight:  8,
		Pattern: regexp.MustCompile(`[!?]{3,}`),
	},
	{
		ID:           "all_caps_shouting",
		Reason:       "shouting_all_caps",
		Weight:       10,
		HardModeHint: true,
		Pattern:      regexp.MustCompile(`\b[A-Z]{6,}\b`),
	},
	{
		ID:           "jealousy_possessive",
		Reason:       "possessive_or_controlling_tone",
		Weight:       12,
		HardModeHint: true,
		Pattern:      regexp.MustCompile(`(?i)\b(you can't|you are not allowed|don't talk to|i forbid)\b`),
	},
	{
		ID:      "high_stakes_work",
		Reason:  "high_stakes_context",
		Weight:  10,
		Pattern: regexp.MustCompile(`(?i)\b(hr|human resources|boss|manager|lawsuit|legal|court)\b`),
	},

	// Sexual explicit / NSFW
	{
		ID:           "sexual_explicit",
		Reason:       ReasonSexual,
		Weight:       60,
		HardModeHint: true,
		Pattern:      regexp.MustCompile(`(?i)\b(fuck|fucking|blowjob|bj|nudes?|naked|pussy|dick|cock|cum|sex|horny)\b`),
	},
	{
		ID:           "sexual_slur",
		Reason:       ReasonSexualSlur,
		Weight:       15,
		HardModeHint: true,
		Pattern:      regexp.MustCompile(`(?i)\b(bitch|slut|whore)\b`),
	},
}
