package ffprobe

import "time"

const (
	name = "ffprobe"
	// Probing only reads headers, but slow hard-drives spinning up or
	// network retrieved resources still need some headroom.
	timeout = 60 * time.Second
)
