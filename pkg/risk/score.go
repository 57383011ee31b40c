package risk

import (
	"sort"
	"strings"
)

type Level string

const (
	LevelGreen  Level = "green"
	LevelYellow Level = "yellow"
	LevelRed    Level = "red"
)

// Result is computed fresh per input text.
type Result struct {
	Level               Level    `json:"level"`
	Score               int      `json:"score"`
	Reasons             []string `json:"reasons"`
	HardModeRecommended bool     `json:"hard_mode_recommended"`
}

// Score matches the input against the signal table and derives a level.
// Weights of all matching signals are summed and clamped to [0,100];
// reasons keep at most the 3 heaviest distinct tags.
func Score(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Level: LevelGreen, Score: 0, Reasons: []string{}, HardModeRecommended: false}
	}

	var matched []Signal
	for _, s := range signals {
		if s.Pattern.MatchString(text) {
			matched = append(matched, s)
		}
	}

	raw := 0
	for _, s := range matched {
		raw += s.Weight
	}
	score := clampInt(raw, 0, 100)

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Weight > matched[j].Weight
	})
	reasons := make([]string, 0, 3)
	seen := make(map[string]bool)
	for _, s := range matched {
		if seen[s.Reason] {
			continue
		}
		seen[s.Reason] = true
		reasons = append(reasons, s.Reason)
		if len(reasons) == 3 {
			break
		}
	}

	// Overrides look at the surfaced reasons, never downgrade.
	surfaced := make(map[string]bool, len(reasons))
	for _, r := range reasons {
		surfaced[r] = true
	}
	level := baseLevelFromScore(score)
	if surfaced[ReasonInsults] {
		level = bumpAtLeast(level, LevelYellow)
	}
	if surfaced[ReasonSexual] || surfaced[ReasonSexualSlur] {
		level = bumpAtLeast(level, LevelRed)
	}
	if surfaced[ReasonThreats] {
		level = bumpAtLeast(level, LevelRed)
	}

	hardMode := level == LevelRed
	for _, s := range matched {
		if s.HardModeHint {
			hardMode = true
			break
		}
	}

	return Result{Level: level, Score: score, Reasons: reasons, HardModeRecommended: hardMode}
}

func baseLevelFromScore(score int) Level {
	switch {
	case score >= 60:
		return LevelRed
	case score >= 30:
		return LevelYellow
	}
	return LevelGreen
}

func bumpAtLeast(current, target Level) Level {
	if levelRank(current) >= levelRank(target) {
		return current
	}
	return target
}

func levelRank(l Level) int {
	switch l {
	case LevelYellow:
		return 1
	case LevelRed:
		return 2
	}
	return 0
}

func clampInt(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
