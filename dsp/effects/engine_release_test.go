//go:build !debug

package effects

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-echo/internal/testutil"
)

func TestProcessBeforePrepareLeavesDry(t *testing.T) {
	e := NewDelayEngine()
	in := testutil.DeterministicNoise(1, 1, 16)
	buf := append([]float64(nil), in...)
	e.Process([][]float64{buf}, len(buf))
	testutil.RequireSliceNearlyEqual(t, buf, in, 0)
}

func TestProcessClampsMalformedCalls(t *testing.T) {
	e := mustPrepared(t, 1000, 32, 0.1, WithChannels(1))

	// Excess channels are ignored.
	extra := testutil.Impulse(32, 0)
	e.ProcessWith([][]float64{make([]float64, 32), extra}, 32, 0, 1)
	if extra[0] != 1 {
		t.Fatalf("extra channel touched: %v", extra[0])
	}

	// Sample count is clamped to the prepared block and the channel length.
	pos := e.WritePosition()
	e.ProcessWith([][]float64{make([]float64, 10)}, 1000, 0.01, 0.5)
	if got := e.WritePosition(); got != (pos+10)%e.Len() {
		t.Fatalf("WritePosition() = %d, want %d", got, (pos+10)%e.Len())
	}
	e.ProcessWith([][]float64{make([]float64, 64)}, 64, 0.01, 0.5)
	if got := e.WritePosition(); got != (pos+42)%e.Len() {
		t.Fatalf("WritePosition() = %d, want %d", got, (pos+42)%e.Len())
	}

	// Negative counts process nothing.
	pos = e.WritePosition()
	e.ProcessWith([][]float64{make([]float64, 8)}, -5, 0.01, 0.5)
	if e.WritePosition() != pos {
		t.Fatal("negative sample count moved the cursor")
	}

	// Non-finite parameters do not poison the ring.
	buf := testutil.DeterministicNoise(4, 1, 32)
	e.ProcessWith([][]float64{buf}, 32, math.NaN(), math.Inf(1))
	testutil.RequireFinite(t, buf)
	testutil.RequireFinite(t, e.Lane(0))
}
