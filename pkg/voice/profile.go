package voice

import (
	"log/slog"
	"math"
	"strings"

	"github.com/moodmora/edge/pkg/configutil"
)

// Profile is the five-dial style description. Dials are fractions in
// [0,1]; nil means "not set" (merge substitutes the 0.5 midpoint,
// scoring a neutral component).
type Profile struct {
	Warmth     *float64 `mapstructure:"warmth" json:"warmth,omitempty"`
	Directness *float64 `mapstructure:"directness" json:"directness,omitempty"`
	Brevity    *float64 `mapstructure:"brevity" json:"brevity,omitempty"`
	Formality  *float64 `mapstructure:"formality" json:"formality,omitempty"`
	EmojiRate  *float64 `mapstructure:"emoji_rate" json:"emoji_rate,omitempty"`
	DoNotUse   []string `mapstructure:"do_not_use" json:"do_not_use,omitempty"`
}

// Input is the request-level voice object. Only meaningful when
// Enabled is true; a disabled voice still contributes its profile to
// contact merging but never activates scoring.
type Input struct {
	Enabled bool     `mapstructure:"enabled" json:"enabled"`
	Variant string   `mapstructure:"variant" json:"variant,omitempty"`
	Profile *Profile `mapstructure:"profile" json:"profile,omitempty"`
}

// RelationTag classifies the contact relationship.
type RelationTag string

const (
	RelationBoss     RelationTag = "boss"
	RelationCoworker RelationTag = "coworker"
	RelationFriend   RelationTag = "friend"
	RelationFamily   RelationTag = "family"
	RelationPartner  RelationTag = "partner"
	RelationClient   RelationTag = "client"
	RelationOther    RelationTag = "other"
)

// StyleOffsets shift the five dials per contact, each an integer in
// [-30,30] mapped onto [-0.30,+0.30] at merge time.
type StyleOffsets struct {
	Warmth     *int `mapstructure:"warmth_offset" json:"warmth_offset,omitempty"`
	Directness *int `mapstructure:"directness_offset" json:"directness_offset,omitempty"`
	Brevity    *int `mapstructure:"brevity_offset" json:"brevity_offset,omitempty"`
	Formality  *int `mapstructure:"formality_offset" json:"formality_offset,omitempty"`
	EmojiRate  *int `mapstructure:"emoji_rate_offset" json:"emoji_rate_offset,omitempty"`
}

type Sensitivities struct {
	HatesSarcasm           bool `mapstructure:"hates_sarcasm" json:"hates_sarcasm,omitempty"`
	HatesCommands          bool `mapstructure:"hates_commands" json:"hates_commands,omitempty"`
	SensitiveToAlwaysNever bool `mapstructure:"sensitive_to_always_never" json:"sensitive_to_always_never,omitempty"`
	ConflictSensitive      bool `mapstructure:"conflict_sensitive" json:"conflict_sensitive,omitempty"`
}

// Contact is the per-recipient style snapshot.
type Contact struct {
	ID             string         `mapstructure:"id" json:"id"`
	DisplayName    string         `mapstructure:"display_name" json:"display_name"`
	RelationTag    RelationTag    `mapstructure:"relation_tag" json:"relation_tag,omitempty"`
	StyleOffsets   *StyleOffsets  `mapstructure:"style_offsets" json:"style_offsets,omitempty"`
	Sensitivities  *Sensitivities `mapstructure:"sensitivities" json:"sensitivities,omitempty"`
	ForbiddenWords []string       `mapstructure:"forbidden_words" json:"forbidden_words,omitempty"`
}

const maxListEntries = 50

var contactSchema = configutil.Schema{
	Required: []string{"id", "display_name"},
	Optional: []string{"relation_tag", "style_offsets", "sensitivities", "forbidden_words"},
}

// ParseVoice decodes a free-form voice object. Returns nil when the
// map is empty or undecodable.
func ParseVoice(m map[string]any) *Input {
	if len(m) == 0 {
		return nil
	}
	var in Input
	if err := configutil.DecodeSettings(m, &in); err != nil {
		slog.Debug("voice_decode_failed", "error", err)
		return nil
	}
	in.Variant = strings.TrimSpace(in.Variant)
	if in.Profile != nil {
		in.Profile.DoNotUse = cleanStringList(in.Profile.DoNotUse, maxListEntries)
	}
	return &in
}

// ParseContact decodes a free-form contact object. A contact without a
// non-blank id and display_name is invalid and dropped. Offsets are
// rounded and clamped to [-30,30]; forbidden words capped at 50.
func ParseContact(m map[string]any) *Contact {
	if len(m) == 0 {
		return nil
	}
	if err := configutil.ValidateSettings(m, contactSchema); err != nil {
		slog.Debug("contact_unexpected_shape", "error", err)
	}
	var c Contact
	if err := configutil.DecodeSettings(m, &c); err != nil {
		slog.Debug("contact_decode_failed", "error", err)
		return nil
	}
	c.ID = strings.TrimSpace(c.ID)
	c.DisplayName = strings.TrimSpace(c.DisplayName)
	if c.ID == "" || c.DisplayName == "" {
		return nil
	}
	c.RelationTag = RelationTag(strings.TrimSpace(string(c.RelationTag)))
	if c.StyleOffsets != nil {
		clampOffset(c.StyleOffsets.Warmth)
		clampOffset(c.StyleOffsets.Directness)
		clampOffset(c.StyleOffsets.Brevity)
		clampOffset(c.StyleOffsets.Formality)
		clampOffset(c.StyleOffsets.EmojiRate)
	}
	c.ForbiddenWords = cleanStringList(c.ForbiddenWords, maxListEntries)
	return &c
}

func clampOffset(p *int) {
	if p == nil {
		return
	}
	if *p < -30 {
		*p = -30
	}
	if *p > 30 {
		*p = 30
	}
}

func cleanStringList(in []string, max int) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) >= max {
			break
		}
	}
	return out
}

func clamp01(n float64) float64 {
	return math.Max(0, math.Min(1, n))
}
