package live

import (
	"fmt"

	"github.com/cwbudde/algo-echo/dsp/effects"
	"github.com/cwbudde/algo-echo/internal/frames"
)

// processor adapts the device's interleaved float32 byte buffers to the
// engine's planar block interface. All scratch memory is allocated up front.
type processor struct {
	engine    *effects.DelayEngine
	channels  int
	blockSize int

	interleaved []float32
	planar      [][]float64
}

func newProcessor(engine *effects.DelayEngine, channels, blockSize int) (*processor, error) {
	if channels <= 0 || channels > engine.Channels() {
		return nil, fmt.Errorf("live: %d channels not supported by engine with %d", channels, engine.Channels())
	}
	if blockSize <= 0 || blockSize > engine.MaxBlockSize() {
		return nil, fmt.Errorf("live: block size %d outside engine maximum %d", blockSize, engine.MaxBlockSize())
	}

	planar := make([][]float64, channels)
	for ch := range planar {
		planar[ch] = make([]float64, blockSize)
	}
	return &processor{
		engine:      engine,
		channels:    channels,
		blockSize:   blockSize,
		interleaved: make([]float32, channels*blockSize),
		planar:      planar,
	}, nil
}

// data is the device data callback. Periods longer than the block size are
// processed in consecutive blocks.
func (p *processor) data(out, in []byte, framecount uint32) {
	frameBytes := 4 * p.channels
	total := int(framecount)
	total = min(total, len(out)/frameBytes)

	for start := 0; start < total; start += p.blockSize {
		n := min(p.blockSize, total-start)
		lo, hi := start*frameBytes, (start+n)*frameBytes

		samples := p.interleaved[:n*p.channels]
		if hi <= len(in) {
			frames.DecodeFloat32LE(samples, in[lo:hi])
		} else {
			clear(samples)
		}

		lanes := p.planar
		for ch := range lanes {
			lanes[ch] = lanes[ch][:n]
		}
		frames.Deinterleave(lanes, samples)

		p.engine.Process(lanes, n)

		frames.Interleave(samples, lanes, n)
		frames.EncodeFloat32LE(out[lo:hi], samples)

		for ch := range lanes {
			lanes[ch] = lanes[ch][:p.blockSize]
		}
	}
}
