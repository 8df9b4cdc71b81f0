// Package frames converts between interleaved device buffers and the planar
// float64 lanes the effects operate on.
package frames

import (
	"encoding/binary"
	"math"

	"golang.org/x/exp/constraints"
)

// Deinterleave splits interleaved frames from src into the planar lanes of
// dst and returns the number of frames copied. The copy stops at the
// shortest lane or at the last complete frame of src.
func Deinterleave[T constraints.Float](dst [][]float64, src []T) int {
	channels := len(dst)
	if channels == 0 {
		return 0
	}
	n := len(src) / channels
	for _, lane := range dst {
		n = min(n, len(lane))
	}
	for i := 0; i < n; i++ {
		frame := src[i*channels : (i+1)*channels]
		for ch, v := range frame {
			dst[ch][i] = float64(v)
		}
	}
	return n
}

// Interleave writes the first frames samples of every lane of src into dst
// as interleaved frames and returns the number of frames written.
func Interleave[T constraints.Float](dst []T, src [][]float64, frames int) int {
	channels := len(src)
	if channels == 0 {
		return 0
	}
	n := min(frames, len(dst)/channels)
	for _, lane := range src {
		n = min(n, len(lane))
	}
	for i := 0; i < n; i++ {
		frame := dst[i*channels : (i+1)*channels]
		for ch := range frame {
			frame[ch] = T(src[ch][i])
		}
	}
	return max(n, 0)
}

// DecodeFloat32LE decodes little-endian IEEE-754 samples from b into dst and
// returns the number of samples decoded.
func DecodeFloat32LE(dst []float32, b []byte) int {
	n := min(len(dst), len(b)/4)
	for i := 0; i < n; i++ {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return n
}

// EncodeFloat32LE encodes src as little-endian IEEE-754 samples into b and
// returns the number of samples encoded.
func EncodeFloat32LE(b []byte, src []float32) int {
	n := min(len(src), len(b)/4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(src[i]))
	}
	return n
}
