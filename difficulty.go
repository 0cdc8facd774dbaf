package tropism

import (
	"encoding/json"
	"fmt"

	"github.com/farcloser/primordium/fault"
)

// Difficulty selects a generation profile. Higher tiers keep more
// onsets, pack notes tighter, and allow larger chords.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
	DifficultyExtreme
	DifficultyDeadly
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	case DifficultyExtreme:
		return "extreme"
	case DifficultyDeadly:
		return "deadly"
	}

	return "unknown"
}

// ParseDifficulty converts a string to a Difficulty value. The empty
// string maps to medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "easy":
		return DifficultyEasy, nil
	case "medium", "":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	case "extreme":
		return DifficultyExtreme, nil
	case "deadly":
		return DifficultyDeadly, nil
	default:
		return 0, fmt.Errorf(
			"%w: unknown difficulty %q (valid: easy, medium, hard, extreme, deadly)",
			fault.ErrInvalidArgument, s)
	}
}

// Difficulties returns all difficulty tiers in ascending order.
func Difficulties() []Difficulty {
	return []Difficulty{
		DifficultyEasy,
		DifficultyMedium,
		DifficultyHard,
		DifficultyExtreme,
		DifficultyDeadly,
	}
}

// MarshalJSON renders the difficulty as its name.
func (d Difficulty) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses a difficulty name.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %w", fault.ErrInvalidArgument, err)
	}

	parsed, err := ParseDifficulty(s)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// Profile bundles the tuning knobs one difficulty tier feeds into
// detection and synthesis.
type Profile struct {
	Sensitivity        float64 // onset picking sensitivity, 0-1
	MinOnsetGap        float64 // seconds between kept onsets
	MinLaneGap         float64 // seconds between same-lane notes
	MaxChordSize       int     // simultaneous notes per onset; 1 = no chords
	DensityFactor      float64 // share of detected onsets kept, 0-1
	ActiveLanes        int     // lanes in play, capped by the lane count
	StrengthFloor      float64 // onsets below this never become notes
	HoldFraction       float64 // chance a sustained note becomes a hold
	MinSustainDuration float64 // seconds of sustain required for a hold
	MinHoldRatio       float64 // minimum share of holds in the map
	HoldBackfillMin    float64 // manufactured hold duration range, seconds
	HoldBackfillMax    float64
}

// Profile returns the tuning profile for the difficulty. Values scale
// monotonically across tiers: every knob gets denser, tighter, or more
// permissive as difficulty rises, never the reverse.
func (d Difficulty) Profile() Profile {
	switch d {
	case DifficultyEasy:
		return Profile{
			Sensitivity:        0.30,
			MinOnsetGap:        0.40,
			MinLaneGap:         0.50,
			MaxChordSize:       1,
			DensityFactor:      0.35,
			ActiveLanes:        3,
			StrengthFloor:      0.30,
			HoldFraction:       0.25,
			MinSustainDuration: 0.80,
			MinHoldRatio:       0.04,
			HoldBackfillMin:    0.30,
			HoldBackfillMax:    0.50,
		}
	case DifficultyMedium:
		return Profile{
			Sensitivity:        0.45,
			MinOnsetGap:        0.28,
			MinLaneGap:         0.35,
			MaxChordSize:       1,
			DensityFactor:      0.55,
			ActiveLanes:        4,
			StrengthFloor:      0.22,
			HoldFraction:       0.35,
			MinSustainDuration: 0.65,
			MinHoldRatio:       0.04,
			HoldBackfillMin:    0.30,
			HoldBackfillMax:    0.55,
		}
	case DifficultyHard:
		return Profile{
			Sensitivity:        0.60,
			MinOnsetGap:        0.18,
			MinLaneGap:         0.25,
			MaxChordSize:       2,
			DensityFactor:      0.75,
			ActiveLanes:        4,
			StrengthFloor:      0.15,
			HoldFraction:       0.45,
			MinSustainDuration: 0.50,
			MinHoldRatio:       0.07,
			HoldBackfillMin:    0.30,
			HoldBackfillMax:    0.60,
		}
	case DifficultyExtreme:
		return Profile{
			Sensitivity:        0.80,
			MinOnsetGap:        0.12,
			MinLaneGap:         0.18,
			MaxChordSize:       3,
			DensityFactor:      0.90,
			ActiveLanes:        4,
			StrengthFloor:      0.08,
			HoldFraction:       0.55,
			MinSustainDuration: 0.40,
			MinHoldRatio:       0.10,
			HoldBackfillMin:    0.28,
			HoldBackfillMax:    0.65,
		}
	case DifficultyDeadly:
		return Profile{
			Sensitivity:        0.95,
			MinOnsetGap:        0.09,
			MinLaneGap:         0.14,
			MaxChordSize:       4,
			DensityFactor:      1.0,
			ActiveLanes:        4,
			StrengthFloor:      0.04,
			HoldFraction:       0.65,
			MinSustainDuration: 0.30,
			MinHoldRatio:       0.10,
			HoldBackfillMin:    0.25,
			HoldBackfillMax:    0.70,
		}
	}

	return DifficultyMedium.Profile()
}
