package tropism_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/tropism"
)

func TestParseDifficulty(t *testing.T) {
	cases := []struct {
		in   string
		want tropism.Difficulty
	}{
		{"easy", tropism.DifficultyEasy},
		{"medium", tropism.DifficultyMedium},
		{"hard", tropism.DifficultyHard},
		{"extreme", tropism.DifficultyExtreme},
		{"deadly", tropism.DifficultyDeadly},
		{"", tropism.DifficultyMedium},
	}

	for _, tc := range cases {
		got, err := tropism.ParseDifficulty(tc.in)
		if err != nil {
			t.Fatalf("ParseDifficulty(%q) failed: %v", tc.in, err)
		}

		if got != tc.want {
			t.Fatalf("ParseDifficulty(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDifficultyUnknown(t *testing.T) {
	_, err := tropism.ParseDifficulty("brutal")

	if !errors.Is(err, fault.ErrInvalidArgument) {
		t.Fatalf("unknown difficulty returned %v, want ErrInvalidArgument", err)
	}
}

func TestDifficultyStringUnknown(t *testing.T) {
	if got := tropism.Difficulty(42).String(); got != "unknown" {
		t.Fatalf("out-of-range difficulty renders as %q", got)
	}
}

func TestDifficultiesAscending(t *testing.T) {
	tiers := tropism.Difficulties()

	if len(tiers) != 5 {
		t.Fatalf("got %d tiers, want 5", len(tiers))
	}

	for i := 1; i < len(tiers); i++ {
		if tiers[i] <= tiers[i-1] {
			t.Fatalf("tiers out of order at %d: %v then %v", i, tiers[i-1], tiers[i])
		}
	}
}

func TestProfilesScaleMonotonically(t *testing.T) {
	tiers := tropism.Difficulties()

	for i := 1; i < len(tiers); i++ {
		lo, hi := tiers[i-1].Profile(), tiers[i].Profile()

		if hi.Sensitivity < lo.Sensitivity {
			t.Errorf("%v sensitivity drops below %v", tiers[i], tiers[i-1])
		}

		if hi.MinOnsetGap > lo.MinOnsetGap {
			t.Errorf("%v onset gap widens over %v", tiers[i], tiers[i-1])
		}

		if hi.MinLaneGap > lo.MinLaneGap {
			t.Errorf("%v lane gap widens over %v", tiers[i], tiers[i-1])
		}

		if hi.MaxChordSize < lo.MaxChordSize {
			t.Errorf("%v chord size shrinks below %v", tiers[i], tiers[i-1])
		}

		if hi.DensityFactor < lo.DensityFactor {
			t.Errorf("%v density drops below %v", tiers[i], tiers[i-1])
		}

		if hi.ActiveLanes < lo.ActiveLanes {
			t.Errorf("%v active lanes shrink below %v", tiers[i], tiers[i-1])
		}

		if hi.StrengthFloor > lo.StrengthFloor {
			t.Errorf("%v strength floor rises over %v", tiers[i], tiers[i-1])
		}

		if hi.HoldFraction < lo.HoldFraction {
			t.Errorf("%v hold fraction drops below %v", tiers[i], tiers[i-1])
		}

		if hi.MinSustainDuration > lo.MinSustainDuration {
			t.Errorf("%v sustain requirement rises over %v", tiers[i], tiers[i-1])
		}

		if hi.MinHoldRatio < lo.MinHoldRatio {
			t.Errorf("%v hold ratio drops below %v", tiers[i], tiers[i-1])
		}
	}
}

func TestProfileOutOfRangeFallsBack(t *testing.T) {
	if tropism.Difficulty(99).Profile() != tropism.DifficultyMedium.Profile() {
		t.Fatal("out-of-range difficulty should use the medium profile")
	}
}

func TestDifficultyJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(tropism.DifficultyExtreme)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if string(data) != `"extreme"` {
		t.Fatalf("marshaled to %s, want \"extreme\"", data)
	}

	var back tropism.Difficulty
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if back != tropism.DifficultyExtreme {
		t.Fatalf("round trip produced %v", back)
	}
}

func TestDifficultyUnmarshalRejectsJunk(t *testing.T) {
	var d tropism.Difficulty

	if err := json.Unmarshal([]byte(`"impossible"`), &d); !errors.Is(err, fault.ErrInvalidArgument) {
		t.Fatalf("unknown name returned %v, want ErrInvalidArgument", err)
	}

	if err := json.Unmarshal([]byte(`5`), &d); !errors.Is(err, fault.ErrInvalidArgument) {
		t.Fatalf("non-string returned %v, want ErrInvalidArgument", err)
	}
}
