package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/delay"
	"github.com/cwbudde/algo-echo/internal/assert"
)

// MaxRingLength bounds the per-channel ring length Prepare will allocate.
const MaxRingLength = 1 << 27

// DelayEngine is a block-based echo with one ring lane per channel and a
// single write cursor shared by all lanes.
//
// Prepare must be called before Process and whenever the sample rate or the
// maximum block size changes. Prepare and Process must not run concurrently;
// the parameters may be changed from any goroutine at any time.
type DelayEngine struct {
	cfg    engineConfig
	params *Params

	sampleRate      float64
	maxBlockSize    int
	maxDelaySamples int

	ring     *delay.Ring
	writePos int
}

// NewDelayEngine returns an unprepared engine.
func NewDelayEngine(opts ...EngineOption) *DelayEngine {
	cfg := applyEngineOptions(opts...)
	return &DelayEngine{cfg: cfg, params: cfg.params}
}

// Prepare allocates a zeroed ring large enough for maxDelaySeconds of delay
// plus one block of maxBlockSize samples, and rewinds the write cursor.
// Audio held from a previous Prepare is discarded.
func (e *DelayEngine) Prepare(sampleRate float64, maxBlockSize int, maxDelaySeconds float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("effects: delay sample rate must be > 0: %f", sampleRate)
	}
	if maxBlockSize <= 0 {
		return fmt.Errorf("effects: delay max block size must be > 0: %d", maxBlockSize)
	}
	if maxDelaySeconds < 0 || !core.IsFinite(maxDelaySeconds) {
		return fmt.Errorf("effects: delay max time must be >= 0: %f", maxDelaySeconds)
	}
	span := maxDelaySeconds * (sampleRate + float64(maxBlockSize))
	if span >= MaxRingLength || maxBlockSize >= MaxRingLength {
		return fmt.Errorf("effects: delay of %gs at %g Hz exceeds %d ring samples", maxDelaySeconds, sampleRate, MaxRingLength)
	}

	length := BufferLength(sampleRate, maxBlockSize, maxDelaySeconds)
	if e.ring != nil && e.ring.Len() == length && e.ring.Channels() == e.cfg.channels {
		e.ring.Reset()
	} else {
		ring, err := delay.NewRing(e.cfg.channels, length)
		if err != nil {
			return err
		}
		e.ring = ring
	}

	e.sampleRate = sampleRate
	e.maxBlockSize = maxBlockSize
	e.maxDelaySamples = core.ClampInt(int(math.Round(maxDelaySeconds*sampleRate)), 0, length-1)
	e.writePos = 0
	return nil
}

// BufferLength returns the ring lane length Prepare allocates.
//
// It is floor(maxDelay*(rate+block))+1, raised where needed so that the
// longest delay plus one block always fits.
func BufferLength(sampleRate float64, maxBlockSize int, maxDelaySeconds float64) int {
	length := int(math.Floor(maxDelaySeconds*(sampleRate+float64(maxBlockSize)))) + 1
	floor := maxBlockSize + int(math.Ceil(maxDelaySeconds*sampleRate))
	if length < floor {
		length = floor
	}
	return length
}

// Reset clears the ring and rewinds the write cursor without reallocating.
func (e *DelayEngine) Reset() {
	if e.ring == nil {
		return
	}
	e.ring.Reset()
	e.writePos = 0
}

// Process runs ProcessWith using the current parameter values. Each parameter
// is read once per call.
func (e *DelayEngine) Process(block [][]float64, numSamples int) {
	e.ProcessWith(block, numSamples, e.params.Time.Value(), e.params.Gain.Value())
}

// ProcessWith adds the delayed, gain-scaled echo to the first numSamples
// samples of every channel in block, in place.
//
// For each channel the dry block is first written into the ring scaled by
// feedbackGain, then the block starting delayTimeSeconds behind the write
// cursor is accumulated onto the caller's samples. The cursor advances by
// numSamples once, after all channels.
func (e *DelayEngine) ProcessWith(block [][]float64, numSamples int, delayTimeSeconds, feedbackGain float64) {
	if e.ring == nil {
		assert.That(false, "effects: Process called before Prepare")
		return
	}

	channels := len(block)
	if channels > e.ring.Channels() {
		assert.That(false, "effects: more channels than Prepare allocated")
		channels = e.ring.Channels()
	}

	n := e.blockLength(block[:channels], numSamples)
	if n == 0 {
		return
	}

	gain := feedbackGain
	if !core.IsFinite(gain) {
		gain = 0
	}
	gain = core.Clamp(gain, MinDelayGain, MaxDelayGain)

	wrapGain := gain
	if e.cfg.wrapDecay == LegacyWrapDecay {
		wrapGain = LegacyWrapGain
	}

	length := e.ring.Len()
	offset := e.OffsetSamples(delayTimeSeconds)
	readPos := (length + e.writePos - offset) % length

	for ch := 0; ch < channels; ch++ {
		samples := block[ch][:n]
		e.ring.WriteScaled(ch, e.writePos, samples, gain, wrapGain)
		e.ring.AddTo(ch, readPos, samples)
	}

	e.writePos = (e.writePos + n) % length
}

// blockLength clamps numSamples to what every channel and the ring can hold.
func (e *DelayEngine) blockLength(block [][]float64, numSamples int) int {
	assert.That(numSamples >= 0, "effects: negative sample count")
	assert.That(numSamples <= e.maxBlockSize, "effects: block larger than Prepare allowed")

	n := core.ClampInt(numSamples, 0, e.maxBlockSize)
	for _, samples := range block {
		if len(samples) < n {
			assert.That(false, "effects: channel shorter than sample count")
			n = len(samples)
		}
	}
	return n
}

// OffsetSamples converts a delay time to the read offset used by Process:
// round(sampleRate*seconds), clamped to the prepared maximum delay.
// Non-finite times map to 0.
func (e *DelayEngine) OffsetSamples(seconds float64) int {
	if !core.IsFinite(seconds) || seconds <= 0 {
		return 0
	}
	samples := seconds * e.sampleRate
	if samples >= float64(e.maxDelaySamples) {
		return e.maxDelaySamples
	}
	return int(math.Round(samples))
}

// Params returns the parameter set read by Process.
func (e *DelayEngine) Params() *Params { return e.params }

// Prepared reports whether Prepare has succeeded at least once.
func (e *DelayEngine) Prepared() bool { return e.ring != nil }

// SampleRate returns the prepared sample rate in Hz.
func (e *DelayEngine) SampleRate() float64 { return e.sampleRate }

// MaxBlockSize returns the prepared maximum block size.
func (e *DelayEngine) MaxBlockSize() int { return e.maxBlockSize }

// MaxDelaySamples returns the largest read offset in samples.
func (e *DelayEngine) MaxDelaySamples() int { return e.maxDelaySamples }

// Channels returns the number of lanes allocated by Prepare.
func (e *DelayEngine) Channels() int { return e.cfg.channels }

// WrapDecay returns the configured wrap mode.
func (e *DelayEngine) WrapDecay() WrapDecay { return e.cfg.wrapDecay }

// Len returns the ring lane length, or 0 before Prepare.
func (e *DelayEngine) Len() int {
	if e.ring == nil {
		return 0
	}
	return e.ring.Len()
}

// WritePosition returns the index the next block is written to.
func (e *DelayEngine) WritePosition() int { return e.writePos }

// Lane returns the ring contents for channel ch. The slice aliases engine
// storage and is only valid until the next Prepare.
func (e *DelayEngine) Lane(ch int) []float64 {
	if e.ring == nil {
		return nil
	}
	return e.ring.Channel(ch)
}
