// Package prompt renders the chat messages sent to the LLM. The system
// message is assembled from ordered blocks, each emitted only when its
// trigger condition holds, so tests can assert presence or absence of a
// block by inspecting the rendered text.
package prompt

import (
	"fmt"
	"strings"

	"github.com/moodmora/edge/pkg/llm"
	"github.com/moodmora/edge/pkg/voice"
)

// Mode selects between rewriting the user's own draft and drafting a
// reply to a received message.
type Mode string

const (
	ModeImprove Mode = "IMPROVE"
	ModeReply   Mode = "REPLY"
)

// FlirtMode tunes dating tone. Off suppresses the dating block.
type FlirtMode string

const (
	FlirtOff     FlirtMode = "off"
	FlirtSubtle  FlirtMode = "subtle"
	FlirtPlayful FlirtMode = "playful"
	FlirtDirect  FlirtMode = "direct"
)

// Output variant hints. VariantAuto (or empty) lets the model detect
// the input language, preferring Finglish for Persian input.
const (
	VariantAuto     = "AUTO"
	VariantFinglish = "FINGLISH"
	VariantFAScript = "FA_SCRIPT"
	VariantEN       = "EN"
)

// Soft safety redirect hints recognized by the safety block.
const (
	HintConsentRedirect = "consent_redirect"
	HintSFWRedirect     = "sfw_redirect"
)

type BuildArgs struct {
	Mode            Mode
	InputText       string
	SuggestionCount int
	OutputVariant   string

	HardMode bool

	FlirtMode   FlirtMode
	DatingStage string
	DatingVibe  string

	SafetyHints []string

	// Effective voice and contact from the resolver. Voice directives
	// render only when the voice is enabled; the contact block renders
	// whenever a contact is present.
	Voice   *voice.Input
	Contact *voice.Contact
}

// BuildMessages renders the system and user messages. Pure and
// deterministic for a given args value.
func BuildMessages(args BuildArgs) []llm.Message {
	blocks := []string{
		headerBlock(args.SuggestionCount),
		languageHint(resolveVariant(args)),
		contactBlock(args.Contact),
		voiceBlock(args.Voice),
		hardModeBlock(args.HardMode),
		datingBlock(args),
		safetyHintBlock(args.SafetyHints),
		shapeBlock(args.HardMode),
	}

	var parts []string
	for _, b := range blocks {
		if b != "" {
			parts = append(parts, b)
		}
	}
	system := strings.Join(parts, "\n")

	var user string
	if args.Mode == ModeReply {
		user = fmt.Sprintf("Write a reply to this received message:\n\n%s", args.InputText)
	} else {
		user = fmt.Sprintf("Rewrite/Improve this draft message:\n\n%s", args.InputText)
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}
}

// resolveVariant picks the effective output variant: an explicit
// non-AUTO voice variant wins over the caller's output_variant.
func resolveVariant(args BuildArgs) string {
	if args.Voice != nil {
		v := strings.TrimSpace(args.Voice.Variant)
		if v != "" && v != VariantAuto {
			return v
		}
	}
	return strings.TrimSpace(args.OutputVariant)
}

func headerBlock(count int) string {
	return strings.Join([]string{
		"You are MoodMora, an assistant that drafts emotionally intelligent, low-conflict messages.",
		"IMPORTANT OUTPUT RULES:",
		"- Return ONLY one valid JSON object.",
		"- No markdown, no code fences, no extra commentary.",
		fmt.Sprintf("- You must return exactly %d suggestions.", count),
		"- Keep the messages short, calm, and low-pressure.",
	}, "\n")
}

func languageHint(variant string) string {
	switch variant {
	case VariantFinglish:
		return "Write the suggested messages in Finglish (Persian written with Latin letters). Do NOT use Persian script."
	case VariantFAScript:
		return "Write the suggested messages in Persian script (Farsi)."
	case VariantEN:
		return "Write the suggested messages in English."
	default:
		return "Auto-detect: if the input text is Persian, answer in Persian; otherwise English. If Persian, prefer Finglish."
	}
}

func contactBlock(c *voice.Contact) string {
	if c == nil {
		return ""
	}
	lines := []string{"Recipient context:"}
	if c.RelationTag != "" {
		lines = append(lines, fmt.Sprintf("- You are writing to %s (%s).", c.DisplayName, c.RelationTag))
	} else {
		lines = append(lines, fmt.Sprintf("- You are writing to %s.", c.DisplayName))
	}
	switch c.RelationTag {
	case voice.RelationBoss, voice.RelationClient:
		lines = append(lines, "- Default tone: respectful and clear.")
	case voice.RelationPartner, voice.RelationFriend:
		lines = append(lines, "- Default tone: warm and relaxed.")
	}
	if s := c.Sensitivities; s != nil {
		if s.HatesSarcasm {
			lines = append(lines, "- No sarcasm.")
		}
		if s.HatesCommands {
			lines = append(lines, "- Avoid commanding or imperative phrasing.")
		}
		if s.SensitiveToAlwaysNever {
			lines = append(lines, "- Avoid absolute words like \"always\" and \"never\".")
		}
		if s.ConflictSensitive {
			lines = append(lines, "- This person is conflict-sensitive: keep it extra gentle and de-escalating.")
		}
	}
	if len(c.ForbiddenWords) > 0 {
		lines = append(lines, "- Never use these words/phrases: "+strings.Join(c.ForbiddenWords, ", "))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func voiceBlock(v *voice.Input) string {
	if v == nil || !v.Enabled || v.Profile == nil {
		return ""
	}
	p := v.Profile
	lines := []string{"Voice style (match the user's usual tone):"}

	lines = appendDial(lines, p.Warmth, 0.75, 0.25,
		"- Tone: warm, kind, supportive.",
		"- Tone: neutral and composed, not gushing.")
	lines = appendDial(lines, p.Directness, 0.75, 0.25,
		"- Be direct and clear; avoid hedging.",
		"- Keep it soft and suggestion-like, not demanding.")
	lines = appendDial(lines, p.Brevity, 0.75, 0.25,
		"- Keep each message very short (1-2 sentences).",
		"- A little more detail is fine, but stay focused.")
	lines = appendDial(lines, p.Formality, 0.75, 0.25,
		"- Use polite, formal phrasing.",
		"- Use casual, relaxed phrasing.")
	if p.EmojiRate != nil {
		switch {
		case *p.EmojiRate >= 0.6:
			lines = append(lines, "- Emojis: allowed, 0-2 per message.")
		case *p.EmojiRate <= 0.2:
			lines = append(lines, "- Emojis: avoid.")
		}
	}
	if len(p.DoNotUse) > 0 {
		lines = append(lines, "- Never use these words/phrases: "+strings.Join(p.DoNotUse, ", "))
	}

	// Nothing crossed a threshold; skip the block entirely.
	if len(lines) == 1 {
		return ""
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func appendDial(lines []string, dial *float64, hi, lo float64, hiLine, loLine string) []string {
	if dial == nil {
		return lines
	}
	if *dial >= hi {
		return append(lines, hiLine)
	}
	if *dial <= lo {
		return append(lines, loLine)
	}
	return lines
}

func hardModeBlock(hard bool) string {
	if !hard {
		return ""
	}
	return strings.Join([]string{
		"HARD MODE is active. The situation is escalated.",
		"- Suggestions must de-escalate: no blame, no threats, no ultimatums.",
		"- You MUST include these extra top-level JSON fields:",
		"  - \"hard_mode_applied\": must be exactly true",
		"  - \"safety_line\": one short grounding sentence the user can send first",
		"  - \"best_question\": one calm question that reopens the conversation",
		"",
	}, "\n")
}

func datingBlock(args BuildArgs) string {
	mode := args.FlirtMode
	if mode == "" || mode == FlirtOff {
		return ""
	}
	lines := []string{
		"Dating Add-on (tone settings):",
		fmt.Sprintf("- flirt_mode: %s", mode),
	}
	if args.DatingStage != "" {
		lines = append(lines, fmt.Sprintf("- dating_stage: %s", args.DatingStage))
	}
	if args.DatingVibe != "" {
		lines = append(lines, fmt.Sprintf("- dating_vibe: %s", args.DatingVibe))
	}
	lines = append(lines,
		"",
		"Apply these tone constraints while staying respectful and low-pressure:",
		"- Keep it non-explicit and safe-for-work.",
		"- No manipulation, guilt, or pressure. Prefer consent-forward wording.",
		"- If flirt_mode=subtle: light warmth, minimal teasing.",
		"- If flirt_mode=playful: friendly banter, mild teasing, still respectful.",
		"- If flirt_mode=direct: clear interest, but still polite and not sexual.",
		"",
	)
	return strings.Join(lines, "\n")
}

func safetyHintBlock(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	has := func(h string) bool {
		for _, x := range hints {
			if x == h {
				return true
			}
		}
		return false
	}
	lines := []string{"Safety guidance (soft constraints):"}
	if has(HintConsentRedirect) {
		lines = append(lines,
			"- Use consent-forward, non-pressuring language. No guilt, no coercion, no threats, no ultimatums.",
			"- If the user is pressuring for intimacy/nudes/sex, gently redirect to boundaries and respect.")
	}
	if has(HintSFWRedirect) {
		lines = append(lines,
			"- Keep it safe-for-work and non-explicit. Avoid sexual details or requests for nudes.",
			"- Redirect toward respectful, normal conversation.")
	}
	if len(lines) == 1 {
		return ""
	}
	lines = append(lines, "- Do not mention policies. Just write a good, respectful message.", "")
	return strings.Join(lines, "\n")
}

func shapeBlock(hard bool) string {
	if hard {
		return strings.Join([]string{
			"JSON Schema (shape):",
			`{`,
			`  "suggestions": [`,
			`    {`,
			`      "label": "short label",`,
			`      "text": "the message to send",`,
			`      "why_it_works": "1 sentence",`,
			`      "emotion_preview": ["calm" | "warm" | "confident" | "friendly" | "neutral"]`,
			`    }`,
			`  ],`,
			`  "hard_mode_applied": true,`,
			`  "safety_line": "one grounding sentence",`,
			`  "best_question": "one calm question"`,
			`}`,
		}, "\n")
	}
	return strings.Join([]string{
		"JSON Schema (shape):",
		`{`,
		`  "suggestions": [`,
		`    {`,
		`      "label": "short label",`,
		`      "text": "the message to send",`,
		`      "why_it_works": "1 sentence",`,
		`      "emotion_preview": ["calm" | "warm" | "confident" | "friendly" | "neutral"]`,
		`    }`,
		`  ]`,
		`}`,
	}, "\n")
}
