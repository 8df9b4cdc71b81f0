// Command echoinfo renders an impulse through the delay engine and prints
// where the echo lands and how loud it is.
//
// Usage:
//
//	echoinfo [flags] [delay-seconds ...]
//
// Without arguments it probes a fixed set of delay times.
//
// Examples:
//
//	echoinfo 0.15 0.5
//	echoinfo -rate 44100 -block 256 -gain 0.5 1 2
//	echoinfo -at 97030 -wrap uniform 0.1
//	echoinfo -state preset.xml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-echo/dsp/effects"
	"github.com/cwbudde/algo-echo/measure/echo"
)

var defaultTimes = []float64{0.01, 0.05, 0.15, 0.5, 1, 2}

type probeConfig struct {
	sampleRate float64
	blockSize  int
	maxDelay   float64
	gain       float64
	at         int
	wrap       effects.WrapDecay
}

type probeResult struct {
	delayTime float64
	expected  int
	wrapped   bool
	estimate  echo.Estimate
	found     bool
}

func main() {
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	block := flag.Int("block", 512, "processing block size in samples")
	gain := flag.Float64("gain", effects.DefaultDelayGain, "feedback gain in [0, 1]")
	maxDelay := flag.Float64("max", effects.MaxDelayTime, "maximum delay in seconds used to size the ring")
	at := flag.Int("at", 0, "sample index of the probe impulse")
	wrap := flag.String("wrap", "legacy", "wrap segment gain: legacy (0.8) or uniform (feedback gain)")
	statePath := flag.String("state", "", "read delayTime and delayGain from a state document")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: echoinfo [flags] [delay-seconds ...]\n\n")
		fmt.Fprintf(os.Stderr, "Renders an impulse through the delay engine and reports the detected echo.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  echoinfo 0.15 0.5\n")
		fmt.Fprintf(os.Stderr, "  echoinfo -at 97030 -wrap uniform 0.1\n")
	}
	flag.Parse()

	mode, err := parseWrap(*wrap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	cfg := probeConfig{
		sampleRate: *rate,
		blockSize:  *block,
		maxDelay:   *maxDelay,
		gain:       *gain,
		at:         *at,
		wrap:       mode,
	}

	times, err := parseTimes(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if *statePath != "" {
		state, err := loadState(*statePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cfg.gain = state.DelayGain
		if len(flag.Args()) == 0 {
			times = []float64{state.DelayTime}
		}
	}

	results, err := probeAll(context.Background(), cfg, times)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := printResults(os.Stdout, cfg, results); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to write output: %v\n", err)
		os.Exit(1)
	}
}

func parseWrap(s string) (effects.WrapDecay, error) {
	switch s {
	case "legacy":
		return effects.LegacyWrapDecay, nil
	case "uniform":
		return effects.UniformWrapGain, nil
	default:
		return 0, fmt.Errorf("unknown wrap mode %q (want legacy or uniform)", s)
	}
}

func parseTimes(args []string) ([]float64, error) {
	if len(args) == 0 {
		return append([]float64(nil), defaultTimes...), nil
	}
	times := make([]float64, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid delay time %q: %w", arg, err)
		}
		times = append(times, v)
	}
	return times, nil
}

func loadState(path string) (effects.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return effects.State{}, err
	}
	defer f.Close()

	params := effects.NewParams()
	if err := params.ReadState(f); err != nil {
		return effects.State{}, fmt.Errorf("%s: %w", path, err)
	}
	return params.Snapshot(), nil
}

// probeAll runs one engine per delay time, in parallel.
func probeAll(ctx context.Context, cfg probeConfig, times []float64) ([]probeResult, error) {
	results := make([]probeResult, len(times))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, t := range times {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := probe(cfg, t)
			if err != nil {
				return fmt.Errorf("delay %gs: %w", t, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// probe renders a unit impulse at cfg.at through a fresh mono engine and
// measures the echo it produces.
func probe(cfg probeConfig, delayTime float64) (probeResult, error) {
	engine := effects.NewDelayEngine(effects.WithChannels(1), effects.WithWrapDecay(cfg.wrap))
	if err := engine.Prepare(cfg.sampleRate, cfg.blockSize, cfg.maxDelay); err != nil {
		return probeResult{}, err
	}
	if cfg.at < 0 {
		return probeResult{}, fmt.Errorf("impulse index must be >= 0: %d", cfg.at)
	}
	engine.Params().Time.Set(delayTime)
	engine.Params().Gain.Set(cfg.gain)

	res := probeResult{
		delayTime: engine.Params().Time.Value(),
		expected:  engine.OffsetSamples(engine.Params().Time.Value()),
		wrapped:   landsInWrappedSegment(cfg.at, cfg.blockSize, engine.Len()),
	}

	total := cfg.at + res.expected + cfg.blockSize
	dry := make([]float64, total)
	dry[cfg.at] = 1
	wet := append([]float64(nil), dry...)
	for start := 0; start < total; start += cfg.blockSize {
		end := min(start+cfg.blockSize, total)
		engine.Process([][]float64{wet[start:end]}, end-start)
	}

	// Only the tail after the impulse can hold its echo.
	detector := echo.NewDetector(cfg.sampleRate)
	detector.MaxLag = engine.MaxDelaySamples()
	est, err := detector.Detect(dry[cfg.at:], wet[cfg.at:])
	switch {
	case errors.Is(err, echo.ErrNoEcho):
		return res, nil
	case err != nil:
		return probeResult{}, err
	}
	res.estimate = est
	res.found = true
	return res, nil
}

// landsInWrappedSegment reports whether sample index at is written into the
// part of its block that wraps to the start of the ring.
func landsInWrappedSegment(at, blockSize, length int) bool {
	start := (at / blockSize) * blockSize
	return start%length+(at-start) >= length
}

func printResults(w io.Writer, cfg probeConfig, results []probeResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "# rate=%g block=%d gain=%g wrap=%s impulse@%d\n", cfg.sampleRate, cfg.blockSize, cfg.gain, cfg.wrap, cfg.at)
	fmt.Fprintf(tw, "Delay [s]\tExpected [samples]\tDetected [samples]\tGain\tWrapped\n")
	fmt.Fprintf(tw, "---------\t------------------\t------------------\t----\t-------\n")
	for _, r := range results {
		detected, gain := "-", "-"
		if r.found {
			detected = strconv.Itoa(r.estimate.Lag)
			gain = strconv.FormatFloat(r.estimate.Gain, 'f', 4, 64)
		}
		fmt.Fprintf(tw, "%.4f\t%d\t%s\t%s\t%t\n", r.delayTime, r.expected, detected, gain, r.wrapped)
	}
	return tw.Flush()
}
