package safety

import "regexp"

// Action is the classifier verdict.
type Action string

const (
	ActionAllow Action = "allow"
	ActionBlock Action = "block"
)

// Reason tags surfaced to callers. Block reasons end the request;
// redirect reasons only shape the prompt.
const (
	ReasonSelfHarm        = "self_harm_signal"
	ReasonViolence        = "violence_signal"
	ReasonUnderage        = "underage_signal"
	ReasonConsentRedirect = "consent_redirect"
	ReasonSFWRedirect     = "sfw_redirect"
)

type Result struct {
	Action  Action   `json:"action"`
	Reasons []string `json:"reasons"`
}

// Hard blocks. Persian patterns cover the romanized (Finglish) forms
// the product mostly sees.
var selfHarmPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(khodkoshi|khod koshi|khodam ro mikosham|mikosham khodam ro)\b`),
	regexp.MustCompile(`(?i)\b(suicide|kill myself|end my life|self harm|self-harm)\b`),
}

var violencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(mikoshamet|to ro mikosham|mikosham to ro)\b`),
	regexp.MustCompile(`(?i)\b(kill you|murder you|shoot you)\b`),
}

// Underage / minor signals. Explicit ages 10-17 with a qualifier,
// minor/underage tokens, high-school references.
var underagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(im|i\s*am|i'?m)\s*(1[0-7])\b`),
	regexp.MustCompile(`(?i)\b(i\s*am|im|i'?m)\s*under\s*18\b`),
	regexp.MustCompile(`(?i)\b(under\s*18|minor|underage)\b`),
	regexp.MustCompile(`(?i)\b(1[0-7])\s*(years?\s*old|yo)\b`),
	regexp.MustCompile(`(?i)\b(1[0-7])\s*sal(e|eh)?\b`),
	regexp.MustCompile(`(?i)\b(dabirestan|high\s*school)\b`),
}

// Soft redirects: allowed through, surfaced as prompt hints.
var pressureCoercionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(if\s+you\s+don'?t|unless\s+you)\b`),
	regexp.MustCompile(`(?i)\b(you\s+owe\s+me|prove\s+you\s+love\s+me)\b`),
	regexp.MustCompile(`(?i)\b(send\s+me\s+nudes?|nudes?|sext)\b`),
	regexp.MustCompile(`(?i)\b(pressur(e|ing)|coerc(e|ion)|blackmail)\b`),
	regexp.MustCompile(`(?i)\b(majboor(et)?\s*mikonam|majboori|bede\s*be\s*man)\b`),
}

var explicitSexualPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(sex|seks|hook\s*up|one\s*night\s*stand)\b`),
	regexp.MustCompile(`(?i)\b(nudes?|naked|porn|blowjob|oral|anal)\b`),
	regexp.MustCompile(`(?i)\b(les|lakh?t|lokat|aks\s*lakh?t)\b`),
}

// Classify runs the hard-block gate first, then the soft redirects.
// Underage signals always block, even when redirect patterns also
// match; redirect reasons are never added to a block result.
func Classify(text string) Result {
	reasons := []string{}

	if matchesAny(text, selfHarmPatterns) {
		reasons = append(reasons, ReasonSelfHarm)
	}
	if matchesAny(text, violencePatterns) {
		reasons = append(reasons, ReasonViolence)
	}
	if matchesAny(text, underagePatterns) {
		reasons = append(reasons, ReasonUnderage)
	}
	if len(reasons) > 0 {
		return Result{Action: ActionBlock, Reasons: reasons}
	}

	if matchesAny(text, pressureCoercionPatterns) {
		reasons = append(reasons, ReasonConsentRedirect)
	}
	if matchesAny(text, explicitSexualPatterns) {
		reasons = append(reasons, ReasonSFWRedirect)
	}
	return Result{Action: ActionAllow, Reasons: reasons}
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
