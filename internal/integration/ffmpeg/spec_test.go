package ffmpeg

import (
	"testing"

	"github.com/farcloser/tropism/internal/types"
)

func TestBitDepthToSpec(t *testing.T) {
	cases := map[types.BitDepth]string{
		types.Depth16:      "s16le",
		types.Depth24:      "s24le",
		types.Depth32:      "s32le",
		types.DepthFloat32: "f32le",
	}

	for depth, want := range cases {
		if got := bitDepthToSpec(depth); got != want {
			t.Fatalf("bitDepthToSpec(%d) = %q, want %q", depth, got, want)
		}
	}
}

func TestBitDepthToCodec(t *testing.T) {
	cases := map[types.BitDepth]string{
		types.Depth16:      "pcm_s16le",
		types.DepthFloat32: "pcm_f32le",
	}

	for depth, want := range cases {
		if got := bitDepthToCodec(depth); got != want {
			t.Fatalf("bitDepthToCodec(%d) = %q, want %q", depth, got, want)
		}
	}
}
