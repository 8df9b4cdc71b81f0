package delay

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-echo/dsp/core"
)

// Ring is a multichannel circular buffer with block access.
type Ring struct {
	lanes  [][]float64
	length int
}

// NewRing returns a zeroed ring with the given channel count and lane length.
func NewRing(channels, length int) (*Ring, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("delay: ring channels must be > 0: %d", channels)
	}
	if length <= 0 {
		return nil, fmt.Errorf("delay: ring length must be > 0: %d", length)
	}

	// One backing array keeps the lanes adjacent in memory.
	backing := make([]float64, channels*length)
	lanes := make([][]float64, channels)
	for ch := range lanes {
		lanes[ch] = backing[ch*length : (ch+1)*length : (ch+1)*length]
	}
	return &Ring{lanes: lanes, length: length}, nil
}

// Len returns the lane length in samples.
func (r *Ring) Len() int {
	return r.length
}

// Channels returns the number of lanes.
func (r *Ring) Channels() int {
	return len(r.lanes)
}

// Channel returns lane ch. The slice aliases ring storage.
func (r *Ring) Channel(ch int) []float64 {
	return r.lanes[ch]
}

// Reset zeroes every lane.
func (r *Ring) Reset() {
	for _, lane := range r.lanes {
		core.Zero(lane)
	}
}

// Wrap maps any position, including negative ones, into [0, Len).
func (r *Ring) Wrap(pos int) int {
	pos %= r.length
	if pos < 0 {
		pos += r.length
	}
	return pos
}

// WriteScaled overwrites lane ch starting at pos with src scaled by gain.
// When the block runs past the end of the lane, the part that lands at the
// start of the lane is scaled by wrapGain instead. It reports whether the
// write wrapped. Sources longer than the lane are truncated to Len samples.
func (r *Ring) WriteScaled(ch, pos int, src []float64, gain, wrapGain float64) bool {
	lane := r.lanes[ch]
	if len(src) > r.length {
		src = src[:r.length]
	}
	if len(src) == 0 {
		return false
	}
	pos = r.Wrap(pos)

	head := r.length - pos
	if len(src) <= head {
		vecmath.ScaleBlock(lane[pos:pos+len(src)], src, gain)
		return false
	}

	vecmath.ScaleBlock(lane[pos:], src[:head], gain)
	vecmath.ScaleBlock(lane[:len(src)-head], src[head:], wrapGain)
	return true
}

// AddTo accumulates len(dst) samples of lane ch, starting at pos, into dst.
// It reports whether the read wrapped. At most Len samples are added.
func (r *Ring) AddTo(ch, pos int, dst []float64) bool {
	lane := r.lanes[ch]
	if len(dst) > r.length {
		dst = dst[:r.length]
	}
	if len(dst) == 0 {
		return false
	}
	pos = r.Wrap(pos)

	head := r.length - pos
	if len(dst) <= head {
		vecmath.AddBlockInPlace(dst, lane[pos:pos+len(dst)])
		return false
	}

	vecmath.AddBlockInPlace(dst[:head], lane[pos:])
	vecmath.AddBlockInPlace(dst[head:], lane[:len(dst)-head])
	return true
}
