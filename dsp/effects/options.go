package effects

// WrapDecay selects the gain applied to the part of a block that wraps
// around the end of the ring during the write phase.
type WrapDecay int

const (
	// LegacyWrapDecay writes the wrapped part with a fixed LegacyWrapGain,
	// independent of the feedback gain. The read phase has no such special
	// case, so echoes of wrapped samples come back at 0.8.
	LegacyWrapDecay WrapDecay = iota
	// UniformWrapGain writes both parts of a split block with the feedback
	// gain.
	UniformWrapGain
)

// LegacyWrapGain is the fixed gain of LegacyWrapDecay.
const LegacyWrapGain = 0.8

func (w WrapDecay) String() string {
	switch w {
	case LegacyWrapDecay:
		return "legacy"
	case UniformWrapGain:
		return "uniform"
	default:
		return "unknown"
	}
}

const defaultChannels = 2

type engineConfig struct {
	channels  int
	params    *Params
	wrapDecay WrapDecay
}

// EngineOption mutates the engine configuration.
type EngineOption func(*engineConfig)

// WithChannels sets the number of ring lanes allocated by Prepare.
func WithChannels(channels int) EngineOption {
	return func(cfg *engineConfig) {
		if channels > 0 {
			cfg.channels = channels
		}
	}
}

// WithParams makes the engine read p instead of a private parameter set.
func WithParams(p *Params) EngineOption {
	return func(cfg *engineConfig) {
		if p != nil {
			cfg.params = p
		}
	}
}

// WithWrapDecay selects how the wrapped part of a split write is scaled.
func WithWrapDecay(mode WrapDecay) EngineOption {
	return func(cfg *engineConfig) {
		if mode == LegacyWrapDecay || mode == UniformWrapGain {
			cfg.wrapDecay = mode
		}
	}
}

func applyEngineOptions(opts ...EngineOption) engineConfig {
	cfg := engineConfig{
		channels:  defaultChannels,
		wrapDecay: LegacyWrapDecay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.params == nil {
		cfg.params = NewParams()
	}
	return cfg
}
