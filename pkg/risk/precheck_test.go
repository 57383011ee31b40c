package risk

import "testing"

func TestPrecheckBlocksSevere(t *testing.T) {
	// Threats + sexual content saturate the score well past 80.
	d := Precheck("fuck you, I swear you'll regret this or else, you idiot")
	if d.Action != ActionBlock {
		t.Fatalf("expected block, got %s (risk %+v)", d.Action, d.Risk)
	}
	if d.Message == "" {
		t.Fatalf("block decisions carry a message")
	}
	if d.Risk.Level != LevelRed || d.Risk.Score < severeScore {
		t.Fatalf("severe means red and score >= %d: %+v", severeScore, d.Risk)
	}
}

func TestPrecheckAllowsRedBelowSevere(t *testing.T) {
	// Red via override with a modest numeric score: proceeds to the
	// LLM, hard mode forced downstream. This gap is policy, not a bug.
	d := Precheck("come on bitch")
	if d.Risk.Level != LevelRed {
		t.Fatalf("expected red level, got %s", d.Risk.Level)
	}
	if d.Risk.Score >= severeScore {
		t.Fatalf("test wants a sub-severe score, got %d", d.Risk.Score)
	}
	if d.Action != ActionAllow {
		t.Fatalf("red below %d must still be allowed, got %s", severeScore, d.Action)
	}
	if !d.Risk.HardModeRecommended {
		t.Fatalf("red level always recommends hard mode")
	}
}

func TestPrecheckAllowsCalmText(t *testing.T) {
	d := Precheck("thanks for the update, talk soon")
	if d.Action != ActionAllow {
		t.Fatalf("expected allow, got %s", d.Action)
	}
	if d.Risk.Level != LevelGreen {
		t.Fatalf("expected green risk, got %+v", d.Risk)
	}
}
