package types

import (
	"encoding/json"
	"fmt"
)

type BitDepth uint

const (
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
	// DepthFloat32 marks IEEE float little-endian PCM (ffmpeg pcm_f32le).
	DepthFloat32 BitDepth = 33
)

// PCMFormat describes a raw PCM stream handed to the decode edge.
// The analysis core never sees this; it consumes float samples only.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}

/*
Onset Strength Interpretation

Strength is spectral flux normalized against the loudest attack in the
track, so it is comparable within a track but not across tracks.

| Strength  | Typical source                          |
|-----------|-----------------------------------------|
| > 0.85    | Full-mix hit: kick+snare+bass together  |
| 0.6-0.85  | Strong single attack (snare, stab)      |
| 0.3-0.6   | Ordinary note attacks, hi-hats          |
| 0.1-0.3   | Ghost notes, soft attacks               |
| < 0.1     | Flux noise; usually filtered out        |

The synthesizer's strength floor sits in the 0.04-0.30 range depending on
difficulty; everything below it is discarded before lane assignment.
*/

// An Onset is a detected attack: the moment new spectral energy appears.
type Onset struct {
	Time     float64 // seconds from track start
	Strength float64 // flux normalized to track max, 0-1
}

// Detection is the onset detector's full output for a track.
type Detection struct {
	Onsets   []Onset
	BPM      int     // dominant tempo estimate; 120 when too few onsets
	Duration float64 // mono track length in seconds
}

/*
Band Profile Interpretation

One entry per lane, cumulative magnitude over the whole track, normalized
so the loudest band is 1.0. A static fingerprint of where the energy
lives, not a time-localized spectrogram.

| Shape                   | Typical material                    |
|-------------------------|-------------------------------------|
| [1.0, 0.4, 0.2, 0.1]    | Bass-heavy electronic               |
| [0.6, 1.0, 0.8, 0.3]    | Guitar rock, energy in the mids     |
| [0.3, 0.7, 1.0, 0.9]    | Bright pop, vocals and cymbals      |
| [0, 0, 0, 0]            | Silence (normalization guarded)     |
*/

// BandProfile is the whole-track per-band energy fingerprint.
type BandProfile struct {
	Energy []float64 // one entry per lane, 0-1
	Edges  []float64 // band boundaries in Hz, len = lanes+1
}

/*
Sustain Segment Interpretation

A segment is a run of frames where something keeps sounding without a new
attack: held chords, pad washes, sung vowels, feedback.

| Duration   | Candidate hold class                   |
|------------|----------------------------------------|
| < 0.25 s   | Too short; never converted             |
| 0.25-0.7 s | Short hold                             |
| 0.7-1.5 s  | Medium hold                            |
| > 1.5 s    | Long hold (capped at 4 s when carved)  |

Energy is the mean normalized RMS across the segment's frames.
DominantBand indexes the lane whose frequency range carried the most
magnitude during the segment, biasing hold placement toward the
sustaining instrument.
*/

// A Segment is a contiguous sustained region.
type Segment struct {
	Start        float64 // seconds
	End          float64 // seconds; End > Start
	Duration     float64 // End - Start
	Energy       float64 // mean normalized RMS, 0-1
	DominantBand int     // lane index of the loudest band
}

// HoldClass buckets a hold note's duration for scoring and rendering.
type HoldClass int

const (
	HoldNone HoldClass = iota
	HoldShort
	HoldMedium
	HoldLong
)

func (h HoldClass) String() string {
	switch h {
	case HoldNone:
		return "none"
	case HoldShort:
		return "short"
	case HoldMedium:
		return "medium"
	case HoldLong:
		return "long"
	}

	return "unknown"
}

// ParseHoldClass converts a wire string to a HoldClass value.
func ParseHoldClass(s string) (HoldClass, error) {
	switch s {
	case "", "none":
		return HoldNone, nil
	case "short":
		return HoldShort, nil
	case "medium":
		return HoldMedium, nil
	case "long":
		return HoldLong, nil
	default:
		return 0, fmt.Errorf("unknown hold class %q (valid: short, medium, long)", s)
	}
}

// MarshalJSON renders the class as its wire string.
func (h HoldClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON parses the wire string form.
func (h *HoldClass) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseHoldClass(s)
	if err != nil {
		return err
	}

	*h = parsed

	return nil
}

// A Note is one playable lane event. A tap has zero HoldDuration and
// HoldNone; a hold requires sustained input for HoldDuration seconds.
// Field names follow the hand-off contract the game engine consumes.
type Note struct {
	Time         float64   `json:"time"`
	Lane         int       `json:"lane"`
	HoldDuration float64   `json:"holdDuration,omitempty"`
	Hold         HoldClass `json:"holdType,omitempty"`
}

// IsHold reports whether the note requires sustained input.
func (n Note) IsHold() bool {
	return n.HoldDuration > 0
}
