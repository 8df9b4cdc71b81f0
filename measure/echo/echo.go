package echo

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Errors returned by Detect.
var (
	ErrEmptyInput        = errors.New("echo: input is empty")
	ErrLengthMismatch    = errors.New("echo: dry and wet lengths differ")
	ErrInvalidSampleRate = errors.New("echo: sample rate must be positive")
	ErrSilentInput       = errors.New("echo: dry signal is silent")
	ErrNoEcho            = errors.New("echo: wet signal equals dry signal")
)

// Estimate describes the strongest echo found.
type Estimate struct {
	Lag     int     // delay in samples
	Seconds float64 // delay in seconds
	Gain    float64 // least-squares echo gain at Lag
	Score   float64 // normalized correlation at Lag, in [-1, 1]
}

// Detector finds a single echo in a wet signal.
type Detector struct {
	SampleRate float64
	// MaxLag bounds the lag search; 0 searches every lag.
	MaxLag int
}

// NewDetector creates a detector for the given sample rate.
func NewDetector(sampleRate float64) *Detector {
	return &Detector{SampleRate: sampleRate}
}

// Detect locates the lag at which wet-dry correlates most strongly with dry.
func (d *Detector) Detect(dry, wet []float64) (Estimate, error) {
	if len(dry) == 0 || len(wet) == 0 {
		return Estimate{}, ErrEmptyInput
	}
	if len(dry) != len(wet) {
		return Estimate{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(dry), len(wet))
	}
	if d.SampleRate <= 0 {
		return Estimate{}, ErrInvalidSampleRate
	}

	n := len(dry)
	residual := make([]float64, n)
	for i := range residual {
		residual[i] = wet[i] - dry[i]
	}

	dryEnergy := energy(dry)
	if dryEnergy == 0 {
		return Estimate{}, ErrSilentInput
	}
	resEnergy := energy(residual)
	if resEnergy == 0 {
		return Estimate{}, ErrNoEcho
	}

	corr, err := crossCorrelate(residual, dry)
	if err != nil {
		return Estimate{}, err
	}

	maxLag := n - 1
	if d.MaxLag > 0 && d.MaxLag < maxLag {
		maxLag = d.MaxLag
	}

	lag := 0
	peak := math.Abs(corr[0])
	for k := 1; k <= maxLag; k++ {
		if v := math.Abs(corr[k]); v > peak {
			peak = v
			lag = k
		}
	}

	// Direct projection at the chosen lag avoids FFT scaling conventions.
	// Only the part of dry that can reach the window at this lag counts.
	var dot float64
	for i := 0; i+lag < n; i++ {
		dot += residual[i+lag] * dry[i]
	}
	overlap := energy(dry[:n-lag])
	if overlap == 0 {
		return Estimate{}, ErrNoEcho
	}

	return Estimate{
		Lag:     lag,
		Seconds: float64(lag) / d.SampleRate,
		Gain:    dot / overlap,
		Score:   dot / math.Sqrt(overlap*resEnergy),
	}, nil
}

// crossCorrelate returns c[k] = sum_i a[i+k]*b[i] for k in [0, len(a)),
// up to a constant scale factor.
func crossCorrelate(a, b []float64) ([]float64, error) {
	n := len(a)
	// Twice the length keeps the circular correlation free of wrap-around
	// for non-negative lags.
	fftSize := nextPowerOf2(2 * n)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("echo: failed to create FFT plan: %w", err)
	}

	aPadded := make([]complex128, fftSize)
	bPadded := make([]complex128, fftSize)
	for i := 0; i < n; i++ {
		aPadded[i] = complex(a[i], 0)
	}
	for i := range b {
		bPadded[i] = complex(b[i], 0)
	}

	aFreq := make([]complex128, fftSize)
	bFreq := make([]complex128, fftSize)
	if err := plan.Forward(aFreq, aPadded); err != nil {
		return nil, fmt.Errorf("echo: forward FFT failed: %w", err)
	}
	if err := plan.Forward(bFreq, bPadded); err != nil {
		return nil, fmt.Errorf("echo: forward FFT failed: %w", err)
	}

	for i := range aFreq {
		bConj := complex(real(bFreq[i]), -imag(bFreq[i]))
		aFreq[i] *= bConj
	}

	timeDomain := make([]complex128, fftSize)
	if err := plan.Inverse(timeDomain, aFreq); err != nil {
		return nil, fmt.Errorf("echo: inverse FFT failed: %w", err)
	}

	out := make([]float64, n)
	for k := range out {
		out[k] = real(timeDomain[k])
	}
	return out, nil
}

func energy(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
