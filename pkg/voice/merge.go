package voice

import "strings"

// Merged is the outcome of folding a contact's offsets into a voice
// profile. EffectiveVoice is nil only when neither input exists.
type Merged struct {
	EffectiveVoice *Input
	DoNotUse       []string
}

// ApplyContactToVoice builds the effective style: each dial starts at
// the base value (0.5 when unset), shifted by the contact offset over
// 100 and clamped back into [0,1]. The effective voice is enabled only
// when the request voice was explicitly enabled; a contact alone never
// turns scoring on.
func ApplyContactToVoice(v *Input, c *Contact) Merged {
	var base Profile
	if v != nil && v.Profile != nil {
		base = *v.Profile
	}
	baseDoNotUse := cleanStringList(base.DoNotUse, maxListEntries)

	var contactForbidden []string
	if c != nil {
		contactForbidden = cleanStringList(c.ForbiddenWords, maxListEntries)
	}
	merged := mergeUnique(baseDoNotUse, contactForbidden, maxListEntries)

	if v == nil && c == nil {
		return Merged{DoNotUse: []string{}}
	}

	enabled := v != nil && v.Enabled
	variant := ""
	if v != nil {
		variant = strings.TrimSpace(v.Variant)
	}

	var off StyleOffsets
	if c != nil && c.StyleOffsets != nil {
		off = *c.StyleOffsets
	}

	profile := &Profile{
		Warmth:     dial(base.Warmth, off.Warmth),
		Directness: dial(base.Directness, off.Directness),
		Brevity:    dial(base.Brevity, off.Brevity),
		Formality:  dial(base.Formality, off.Formality),
		EmojiRate:  dial(base.EmojiRate, off.EmojiRate),
		DoNotUse:   merged,
	}

	return Merged{
		EffectiveVoice: &Input{Enabled: enabled, Variant: variant, Profile: profile},
		DoNotUse:       merged,
	}
}

func dial(base *float64, off *int) *float64 {
	b := 0.5
	if base != nil {
		b = clamp01(*base)
	}
	d := 0.0
	if off != nil {
		o := *off
		if o < -30 {
			o = -30
		}
		if o > 30 {
			o = 30
		}
		d = float64(o) / 100
	}
	v := clamp01(b + d)
	return &v
}

func mergeUnique(a, b []string, max int) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if len(out) >= max {
			break
		}
	}
	return out
}

// StyleAppliedSummary renders a short human summary of how the contact
// shifted the style, for the response meta. Offsets within (-10,10)
// say nothing; with no offsets the relation tag picks a soft default.
func StyleAppliedSummary(c *Contact) string {
	if c == nil {
		return ""
	}
	var off StyleOffsets
	if c.StyleOffsets != nil {
		off = *c.StyleOffsets
	}

	var bits []string
	push := func(cond bool, s string) {
		if cond {
			bits = append(bits, s)
		}
	}
	w, d, b, f, e := offOr0(off.Warmth), offOr0(off.Directness), offOr0(off.Brevity), offOr0(off.Formality), offOr0(off.EmojiRate)

	push(f >= 10, "More formal")
	push(f <= -10, "More casual")
	push(w >= 10, "Warmer")
	push(w <= -10, "More neutral")
	push(d >= 10, "More direct")
	push(d <= -10, "Softer")
	push(b >= 10, "Shorter")
	push(b <= -10, "More detailed")
	push(e >= 10, "More emoji")
	push(e <= -10, "Less emoji")

	if len(bits) == 0 {
		switch c.RelationTag {
		case RelationBoss, RelationClient:
			return "Respectful, clear"
		case RelationPartner, RelationFriend:
			return "Warm, relaxed"
		}
		return ""
	}
	if len(bits) > 4 {
		bits = bits[:4]
	}
	return strings.Join(bits, ", ")
}

func offOr0(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
