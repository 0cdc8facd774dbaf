//nolint:tagliatelle
package main

import (
	"encoding/json"

	"github.com/farcloser/tropism"
)

// Record is a single line in the JSONL report file.
type Record struct {
	File    string           `json:"file,omitempty"`
	Beatmap *tropism.Beatmap `json:"beatmap,omitempty"`
	Probe   json.RawMessage  `json:"probe,omitempty"`
	Error   string           `json:"error,omitempty"`
	Timing  *RecordTiming    `json:"timing,omitempty"`
}

// RecordTiming captures per-file processing durations in milliseconds.
type RecordTiming struct {
	ProbeMs    float64 `json:"probe_ms"`
	DecodeMs   float64 `json:"decode_ms"`
	GenerateMs float64 `json:"generate_ms"`
	TotalMs    float64 `json:"total_ms"`
}

// digestRecord holds the typed fields needed by the digest command.
// Beatmaps round-trip through the canonical wire contract.
type digestRecord struct {
	File    string           `json:"file,omitempty"`
	Beatmap *tropism.Beatmap `json:"beatmap,omitempty"`
	Error   string           `json:"error,omitempty"`
}
