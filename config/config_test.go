package config

import "testing"

func TestNormalizeSpinRange(t *testing.T) {
	cases := []struct {
		name             string
		min, max         int
		wantMin, wantMax int
	}{
		{"valid range kept", 2, 8, 2, 8},
		{"single value kept", 3, 3, 3, 3},
		{"inverted range reset", 5, 1, 1, 5},
		{"min below one reset", 0, 5, 1, 5},
		{"negative min reset", -3, 4, 1, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := AppConfig{SpinMinPoints: tc.min, SpinMaxPoints: tc.max}
			normalizeSpinRange(&c)
			if c.SpinMinPoints != tc.wantMin || c.SpinMaxPoints != tc.wantMax {
				t.Fatalf("normalized range = [%d,%d], want [%d,%d]",
					c.SpinMinPoints, c.SpinMaxPoints, tc.wantMin, tc.wantMax)
			}
		})
	}
}

func TestApplyDefaultsBackfillsRewards(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)
	if c.CheckInBasePoints != 5 || c.CheckInBonusPoints != 10 {
		t.Fatalf("check-in defaults = %d/%d, want 5/10", c.CheckInBasePoints, c.CheckInBonusPoints)
	}
	if c.SpinMinPoints != 1 || c.SpinMaxPoints != 5 {
		t.Fatalf("spin defaults = [%d,%d], want [1,5]", c.SpinMinPoints, c.SpinMaxPoints)
	}
	if c.RewardCooldownHours != 24 {
		t.Fatalf("cooldown default = %d, want 24", c.RewardCooldownHours)
	}
}
