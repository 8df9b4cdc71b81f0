// Package live runs a DelayEngine on the default duplex audio device.
package live

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"

	"github.com/cwbudde/algo-echo/dsp/effects"
)

// Config describes the device stream.
type Config struct {
	SampleRate      uint32
	Channels        int
	BlockSize       int     // largest block handed to the engine
	PeriodFrames    uint32  // device period hint; 0 lets the backend decide
	MaxDelaySeconds float64 // ring sizing passed to Prepare
	// Logf receives backend diagnostics. May be nil.
	Logf func(format string, args ...any)
}

// DefaultConfig returns a stereo 48 kHz stream sized for the full delay range.
func DefaultConfig() Config {
	return Config{
		SampleRate:      48000,
		Channels:        2,
		BlockSize:       512,
		MaxDelaySeconds: effects.MaxDelayTime,
	}
}

func (c Config) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// Run prepares engine for cfg and processes the default capture device into
// the default playback device until ctx is cancelled.
func Run(ctx context.Context, engine *effects.DelayEngine, cfg Config) error {
	if cfg.SampleRate == 0 {
		return fmt.Errorf("live: sample rate must be > 0")
	}
	if err := engine.Prepare(float64(cfg.SampleRate), cfg.BlockSize, cfg.MaxDelaySeconds); err != nil {
		return err
	}
	proc, err := newProcessor(engine, cfg.Channels, cfg.BlockSize)
	if err != nil {
		return err
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		cfg.logf("malgo: %s", msg)
	})
	if err != nil {
		return fmt.Errorf("live: init context: %w", err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	devCfg := malgo.DefaultDeviceConfig(malgo.Duplex)
	devCfg.Capture.Format = malgo.FormatF32
	devCfg.Capture.Channels = uint32(cfg.Channels)
	devCfg.Playback.Format = malgo.FormatF32
	devCfg.Playback.Channels = uint32(cfg.Channels)
	devCfg.SampleRate = cfg.SampleRate
	devCfg.PeriodSizeInFrames = cfg.PeriodFrames

	device, err := malgo.InitDevice(mctx.Context, devCfg, malgo.DeviceCallbacks{
		Data: proc.data,
	})
	if err != nil {
		return fmt.Errorf("live: init device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("live: start device: %w", err)
	}
	cfg.logf("live: %d Hz, %d channels, ring %d samples", cfg.SampleRate, cfg.Channels, engine.Len())

	<-ctx.Done()

	if err := device.Stop(); err != nil {
		return fmt.Errorf("live: stop device: %w", err)
	}
	return nil
}
