package ffmpeg

import (
	"strconv"

	"github.com/farcloser/tropism/internal/types"
)

func bitDepthToSpec(bitDepth types.BitDepth) string {
	// BitDepth 32 = s32le, 24 = s24le, 16 = s16le. Float samples use
	// the f32le muxer.
	if bitDepth == types.DepthFloat32 {
		return "f32le"
	}

	return "s" + strconv.Itoa(int(bitDepth)) + "le"
}

func bitDepthToCodec(bitDepth types.BitDepth) string {
	return "pcm_" + bitDepthToSpec(bitDepth)
}
