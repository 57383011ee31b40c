package risk

// Action is the precheck outcome.
type Action string

const (
	ActionAllow Action = "allow"
	ActionBlock Action = "block"
)

// Decision carries the precheck outcome together with the computed
// risk, which downstream stages consume even on allow.
type Decision struct {
	Action  Action
	Risk    Result
	Message string
}

const severeScore = 80

// Precheck blocks severely escalated input before any LLM call.
// Severe means red level AND score >= 80; a red score below that still
// proceeds (hard mode picks it up downstream).
func Precheck(text string) Decision {
	r := Score(text)
	if r.Level == LevelRed && r.Score >= severeScore {
		return Decision{
			Action:  ActionBlock,
			Risk:    r,
			Message: "Message looks highly escalated. Hard stop before generating replies.",
		}
	}
	return Decision{Action: ActionAllow, Risk: r}
}
