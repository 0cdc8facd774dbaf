// Package pcm decodes raw little-endian PCM streams into normalized
// float64 samples.
package pcm

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/tropism/internal/types"
)

const (
	maxValue16 = 32768.0      // 2^15, signed 16-bit normalization divisor
	maxValue24 = 8388608.0    // 2^23, signed 24-bit normalization divisor
	maxValue32 = 2147483648.0 // 2^31, signed 32-bit normalization divisor
)

// Decode reads an entire raw PCM stream and returns its samples
// normalized to [-1, 1], channels still interleaved. Reads are not
// assumed frame-aligned; bytes left over from one read carry into the
// next.
func Decode(r io.Reader, format types.PCMFormat) ([]float64, error) {
	if !supported(format.BitDepth) {
		return nil, fmt.Errorf("%w: bit depth %d", fault.ErrInvalidArgument, format.BitDepth)
	}

	if format.Channels < 1 {
		return nil, fmt.Errorf("%w: channel count %d", fault.ErrInvalidArgument, format.Channels)
	}

	// DepthFloat32 encodes as 33 so the byte width still divides out.
	bytesPerSample := int(format.BitDepth) / 8
	frameSize := bytesPerSample * int(format.Channels)
	buf := make([]byte, frameSize*4096)

	var (
		samples []float64
		rem     int
	)

	for {
		n, err := r.Read(buf[rem:])
		if n > 0 {
			avail := rem + n
			complete := (avail / frameSize) * frameSize
			samples = decodeFrames(samples, buf[:complete], format.BitDepth)

			copy(buf, buf[complete:avail])
			rem = avail - complete
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}
	}

	return samples, nil
}

func supported(depth types.BitDepth) bool {
	switch depth {
	case types.Depth16, types.Depth24, types.Depth32, types.DepthFloat32:
		return true
	}

	return false
}

func decodeFrames(samples []float64, data []byte, depth types.BitDepth) []float64 {
	switch depth {
	case types.Depth16:
		for i := 0; i+2 <= len(data); i += 2 {
			sample := float64(int16(binary.LittleEndian.Uint16(data[i:]))) / maxValue16
			samples = append(samples, sample)
		}
	case types.Depth24:
		for i := 0; i+3 <= len(data); i += 3 {
			raw := int32(data[i]) | int32(data[i+1])<<8 | int32(data[i+2])<<16
			if raw&0x800000 != 0 {
				raw |= ^0xFFFFFF
			}

			samples = append(samples, float64(raw)/maxValue24)
		}
	case types.Depth32:
		for i := 0; i+4 <= len(data); i += 4 {
			sample := float64(int32(binary.LittleEndian.Uint32(data[i:]))) / maxValue32
			samples = append(samples, sample)
		}
	case types.DepthFloat32:
		for i := 0; i+4 <= len(data); i += 4 {
			sample := float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i:])))
			samples = append(samples, sample)
		}
	default:
	}

	return samples
}
