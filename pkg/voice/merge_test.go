package voice

import "testing"

func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }

func TestApplyContactToVoiceNilBoth(t *testing.T) {
	m := ApplyContactToVoice(nil, nil)
	if m.EffectiveVoice != nil {
		t.Fatalf("expected no effective voice, got %+v", m.EffectiveVoice)
	}
	if len(m.DoNotUse) != 0 {
		t.Fatalf("expected empty merged list, got %v", m.DoNotUse)
	}
}

func TestApplyContactToVoiceOffsets(t *testing.T) {
	v := &Input{Enabled: true, Profile: &Profile{Warmth: f64(0.5), Formality: f64(0.2)}}
	c := &Contact{
		ID:          "c1",
		DisplayName: "Sam",
		StyleOffsets: &StyleOffsets{
			Warmth:    iptr(20),
			Formality: iptr(-30),
		},
	}
	m := ApplyContactToVoice(v, c)
	p := m.EffectiveVoice.Profile
	if got := *p.Warmth; got != 0.7 {
		t.Fatalf("warmth = %v, want 0.7", got)
	}
	if got := *p.Formality; got != 0 {
		t.Fatalf("formality = %v, want 0 after clamp", got)
	}
	// unset dials start at the midpoint
	if got := *p.Brevity; got != 0.5 {
		t.Fatalf("brevity = %v, want 0.5", got)
	}
	if !m.EffectiveVoice.Enabled {
		t.Fatalf("expected enabled to carry over")
	}
}

func TestApplyContactClampsAtBounds(t *testing.T) {
	v := &Input{Enabled: true, Profile: &Profile{Warmth: f64(0.1)}}
	c := &Contact{ID: "c1", DisplayName: "Sam", StyleOffsets: &StyleOffsets{Warmth: iptr(-30)}}
	m := ApplyContactToVoice(v, c)
	if got := *m.EffectiveVoice.Profile.Warmth; got != 0 {
		t.Fatalf("warmth = %v, want 0", got)
	}
}

func TestContactAloneDoesNotEnable(t *testing.T) {
	c := &Contact{ID: "c1", DisplayName: "Sam", StyleOffsets: &StyleOffsets{Directness: iptr(15)}}
	m := ApplyContactToVoice(nil, c)
	if m.EffectiveVoice == nil {
		t.Fatalf("expected effective voice from contact")
	}
	if m.EffectiveVoice.Enabled {
		t.Fatalf("contact alone must not enable voice scoring")
	}
	if got := *m.EffectiveVoice.Profile.Directness; got != 0.65 {
		t.Fatalf("directness = %v, want 0.65", got)
	}
}

func TestMergedDoNotUseDedupesCaseInsensitive(t *testing.T) {
	v := &Input{Enabled: true, Profile: &Profile{DoNotUse: []string{"Bro", "whatever"}}}
	c := &Contact{ID: "c1", DisplayName: "Sam", ForbiddenWords: []string{"bro", "Dude"}}
	m := ApplyContactToVoice(v, c)
	want := []string{"Bro", "whatever", "Dude"}
	if len(m.DoNotUse) != len(want) {
		t.Fatalf("merged = %v, want %v", m.DoNotUse, want)
	}
	for i := range want {
		if m.DoNotUse[i] != want[i] {
			t.Fatalf("merged[%d] = %q, want %q", i, m.DoNotUse[i], want[i])
		}
	}
}

func TestStyleAppliedSummary(t *testing.T) {
	c := &Contact{
		ID:          "c1",
		DisplayName: "Sam",
		StyleOffsets: &StyleOffsets{
			Formality: iptr(15),
			Warmth:    iptr(-10),
		},
	}
	if got := StyleAppliedSummary(c); got != "More formal, More neutral" {
		t.Fatalf("summary = %q", got)
	}
}

func TestStyleAppliedSummaryCapsAtFour(t *testing.T) {
	c := &Contact{
		ID:          "c1",
		DisplayName: "Sam",
		StyleOffsets: &StyleOffsets{
			Warmth:     iptr(10),
			Directness: iptr(10),
			Brevity:    iptr(10),
			Formality:  iptr(10),
			EmojiRate:  iptr(10),
		},
	}
	if got := StyleAppliedSummary(c); got != "More formal, Warmer, More direct, Shorter" {
		t.Fatalf("summary = %q", got)
	}
}

func TestStyleAppliedSummaryRelationFallback(t *testing.T) {
	boss := &Contact{ID: "c1", DisplayName: "Sam", RelationTag: RelationBoss}
	if got := StyleAppliedSummary(boss); got != "Respectful, clear" {
		t.Fatalf("boss summary = %q", got)
	}
	friend := &Contact{ID: "c2", DisplayName: "Ali", RelationTag: RelationFriend}
	if got := StyleAppliedSummary(friend); got != "Warm, relaxed" {
		t.Fatalf("friend summary = %q", got)
	}
	other := &Contact{ID: "c3", DisplayName: "X", RelationTag: RelationOther}
	if got := StyleAppliedSummary(other); got != "" {
		t.Fatalf("other summary = %q, want empty", got)
	}
}

func TestParseContactRequiresIdentity(t *testing.T) {
	if c := ParseContact(map[string]any{"id": "  ", "display_name": "Sam"}); c != nil {
		t.Fatalf("expected nil for blank id, got %+v", c)
	}
	if c := ParseContact(map[string]any{"id": "c1"}); c != nil {
		t.Fatalf("expected nil for missing display_name, got %+v", c)
	}
	c := ParseContact(map[string]any{
		"id":            "c1",
		"display_name":  "Sam",
		"style_offsets": map[string]any{"warmth_offset": 90},
	})
	if c == nil {
		t.Fatalf("expected contact")
	}
	if got := *c.StyleOffsets.Warmth; got != 30 {
		t.Fatalf("warmth offset = %d, want clamped 30", got)
	}
}
