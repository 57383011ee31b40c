package risk

import "testing"

func TestScoreEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		r := Score(in)
		if r.Level != LevelGreen || r.Score != 0 || len(r.Reasons) != 0 || r.HardModeRecommended {
			t.Fatalf("blank input %q: got %+v", in, r)
		}
	}
}

func TestScoreThreatAndInsult(t *testing.T) {
	r := Score("YOU'LL REGRET THIS, you idiot!!!")
	if r.Level != LevelRed {
		t.Fatalf("expected red, got %s", r.Level)
	}
	if r.Score < 60 {
		t.Fatalf("expected score >= 60, got %d", r.Score)
	}
	if !r.HardModeRecommended {
		t.Fatalf("expected hard mode recommendation")
	}
	if len(r.Reasons) == 0 || r.Reasons[0] != ReasonThreats {
		t.Fatalf("expected threats first (weight 35 > insult 20), got %v", r.Reasons)
	}
	found := false
	for _, reason := range r.Reasons {
		if reason == ReasonInsults {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected insults reason in %v", r.Reasons)
	}
}

func TestScoreClampsAt100(t *testing.T) {
	r := Score("you idiot, I SWEAR you'll regret this or else, don't talk to anyone, fuck, bitch!!!")
	if r.Score != 100 {
		t.Fatalf("expected saturated score 100, got %d", r.Score)
	}
	if len(r.Reasons) > 3 {
		t.Fatalf("reasons must be capped at 3, got %v", r.Reasons)
	}
}

func TestScoreInsultBumpsToYellow(t *testing.T) {
	r := Score("don't be stupid about it")
	if r.Score >= 30 {
		t.Fatalf("test wants a sub-threshold score, got %d", r.Score)
	}
	if r.Level != LevelYellow {
		t.Fatalf("insult must raise level to at least yellow, got %s", r.Level)
	}
	if !r.HardModeRecommended {
		t.Fatalf("insult carries a hard mode hint")
	}
}

func TestScoreSexualBumpsToRed(t *testing.T) {
	r := Score("send nudes")
	if r.Level != LevelRed {
		t.Fatalf("sexual_explicit must raise level to red, got %s", r.Level)
	}
}

func TestScoreReasonsDeduplicated(t *testing.T) {
	// "always" and "never" both hit absolute_words.
	r := Score("you do this always and never listen to everyone")
	count := 0
	for _, reason := range r.Reasons {
		if reason == "absolutes_escalate_conflict" {
			count++
		}
	}
	if count > 1 {
		t.Fatalf("duplicate reason tags: %v", r.Reasons)
	}
}

func TestScoreGreenForCalmText(t *testing.T) {
	r := Score("hey, want to grab coffee tomorrow?")
	if r.Level != LevelGreen || r.Score != 0 || r.HardModeRecommended {
		t.Fatalf("calm text should be green: %+v", r)
	}
}
