package effects

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-echo/dsp/core"
)

// Parameter identifiers, also used as keys in the state document.
const (
	ParamDelayTime = "delayTime"
	ParamDelayGain = "delayGain"
)

// Parameter ranges and defaults.
const (
	MinDelayTime     = 0.0
	MaxDelayTime     = 2.0
	DefaultDelayTime = 0.15

	MinDelayGain     = 0.0
	MaxDelayGain     = 1.0
	DefaultDelayGain = 0.8
)

// ErrUnknownParameter is returned for identifiers that are not part of Params.
var ErrUnknownParameter = errors.New("effects: unknown parameter")

// Parameter is a ranged scalar that can be read from the audio thread while
// another goroutine writes it.
type Parameter struct {
	id  string
	min float64
	max float64
	def float64

	// float64 bits
	bits atomic.Uint64
}

// NewParameter returns a parameter holding def, which is clamped into [min, max].
func NewParameter(id string, min, max, def float64) *Parameter {
	if min > max {
		min, max = max, min
	}
	p := &Parameter{id: id, min: min, max: max, def: core.Clamp(def, min, max)}
	p.bits.Store(math.Float64bits(p.def))
	return p
}

// ID returns the parameter identifier.
func (p *Parameter) ID() string { return p.id }

// Min returns the lower bound.
func (p *Parameter) Min() float64 { return p.min }

// Max returns the upper bound.
func (p *Parameter) Max() float64 { return p.max }

// Default returns the default value.
func (p *Parameter) Default() float64 { return p.def }

// Value returns the current value.
func (p *Parameter) Value() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Set stores v clamped to the parameter range and returns the stored value.
// NaN restores the default.
func (p *Parameter) Set(v float64) float64 {
	if math.IsNaN(v) {
		v = p.def
	}
	v = core.Clamp(v, p.min, p.max)
	p.bits.Store(math.Float64bits(v))
	return v
}

// Reset restores the default value.
func (p *Parameter) Reset() {
	p.bits.Store(math.Float64bits(p.def))
}

// Normalized returns the current value mapped to [0, 1].
func (p *Parameter) Normalized() float64 {
	if p.max <= p.min {
		return 0
	}
	return (p.Value() - p.min) / (p.max - p.min)
}

// SetNormalized sets the value from a [0, 1] position in the range.
func (p *Parameter) SetNormalized(n float64) float64 {
	if math.IsNaN(n) {
		return p.Set(n)
	}
	n = core.Clamp(n, 0, 1)
	return p.Set(p.min + n*(p.max-p.min))
}

func (p *Parameter) String() string {
	return fmt.Sprintf("%s=%g", p.id, p.Value())
}

// State is a plain snapshot of the parameter values.
type State struct {
	DelayTime float64
	DelayGain float64
}

// DefaultState returns the factory parameter values.
func DefaultState() State {
	return State{DelayTime: DefaultDelayTime, DelayGain: DefaultDelayGain}
}

// Params is the parameter set of a DelayEngine.
type Params struct {
	Time *Parameter // delay time in seconds
	Gain *Parameter // feedback gain
}

// NewParams returns parameters at their defaults.
func NewParams() *Params {
	return &Params{
		Time: NewParameter(ParamDelayTime, MinDelayTime, MaxDelayTime, DefaultDelayTime),
		Gain: NewParameter(ParamDelayGain, MinDelayGain, MaxDelayGain, DefaultDelayGain),
	}
}

// All returns the parameters in a stable order.
func (ps *Params) All() []*Parameter {
	return []*Parameter{ps.Time, ps.Gain}
}

// Lookup returns the parameter with the given id, or nil.
func (ps *Params) Lookup(id string) *Parameter {
	for _, p := range ps.All() {
		if p.id == id {
			return p
		}
	}
	return nil
}

// Set stores v into the parameter with the given id and returns the clamped
// value.
func (ps *Params) Set(id string, v float64) (float64, error) {
	p := ps.Lookup(id)
	if p == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	return p.Set(v), nil
}

// Snapshot returns the current values.
func (ps *Params) Snapshot() State {
	return State{DelayTime: ps.Time.Value(), DelayGain: ps.Gain.Value()}
}

// Apply stores every value of s, clamping each to its range.
func (ps *Params) Apply(s State) {
	ps.Time.Set(s.DelayTime)
	ps.Gain.Set(s.DelayGain)
}

// Reset restores all defaults.
func (ps *Params) Reset() {
	for _, p := range ps.All() {
		p.Reset()
	}
}
