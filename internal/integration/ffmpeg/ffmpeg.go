package ffmpeg

import "time"

const (
	name = "ffmpeg"
	// Decoding a full-length track can legitimately take a while on
	// slow hard-drives or network retrieved resources.
	timeout = 300 * time.Second
)
