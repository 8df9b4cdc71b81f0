package live

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cwbudde/algo-echo/dsp/effects"
)

func encode(samples []float32) []byte {
	b := make([]byte, 4*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

func decode(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out
}

func preparedEngine(t *testing.T, blockSize int) *effects.DelayEngine {
	t.Helper()
	e := effects.NewDelayEngine(effects.WithChannels(2))
	if err := e.Prepare(1000, blockSize, 0.1); err != nil {
		t.Fatal(err)
	}
	e.Params().Time.Set(0.003)
	e.Params().Gain.Set(0.5)
	return e
}

func TestNewProcessorValidation(t *testing.T) {
	e := preparedEngine(t, 8)
	if _, err := newProcessor(e, 3, 8); err == nil {
		t.Fatal("expected error for too many channels")
	}
	if _, err := newProcessor(e, 2, 16); err == nil {
		t.Fatal("expected error for block larger than engine maximum")
	}
	if _, err := newProcessor(e, 2, 0); err == nil {
		t.Fatal("expected error for zero block")
	}
}

// TestProcessorSplitsLongPeriods feeds a 20-frame stereo period through a
// processor with 8-frame blocks; the echo must cross block boundaries.
func TestProcessorSplitsLongPeriods(t *testing.T) {
	e := preparedEngine(t, 8)
	p, err := newProcessor(e, 2, 8)
	if err != nil {
		t.Fatal(err)
	}

	const frames = 20
	in := make([]float32, 2*frames)
	in[2*6] = 1    // left impulse at frame 6
	in[2*1+1] = -1 // right impulse at frame 1
	out := make([]byte, 4*len(in))

	p.data(out, encode(in), frames)
	got := decode(out)

	for i := 0; i < frames; i++ {
		wantL, wantR := float32(0), float32(0)
		switch i {
		case 6:
			wantL = 1
		case 9:
			wantL = 0.5
		}
		switch i {
		case 1:
			wantR = -1
		case 4:
			wantR = -0.5
		}
		if got[2*i] != wantL || got[2*i+1] != wantR {
			t.Fatalf("frame %d: got (%v, %v), want (%v, %v)", i, got[2*i], got[2*i+1], wantL, wantR)
		}
	}
	if e.WritePosition() != frames {
		t.Fatalf("WritePosition() = %d, want %d", e.WritePosition(), frames)
	}
}

func TestProcessorMissingInputIsSilence(t *testing.T) {
	e := preparedEngine(t, 8)
	p, err := newProcessor(e, 2, 8)
	if err != nil {
		t.Fatal(err)
	}
	out := encode([]float32{9, 9, 9, 9})
	p.data(out, nil, 2)
	for i, v := range decode(out) {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
}

func TestProcessorDataDoesNotAllocate(t *testing.T) {
	e := preparedEngine(t, 8)
	p, err := newProcessor(e, 2, 8)
	if err != nil {
		t.Fatal(err)
	}
	in := make([]float32, 2*20)
	for i := range in {
		in[i] = float32(i%7) / 7
	}
	inBytes := encode(in)
	out := make([]byte, len(inBytes))

	allocs := testing.AllocsPerRun(500, func() {
		p.data(out, inBytes, 20)
	})
	if allocs != 0 {
		t.Fatalf("data allocs/op = %v, want 0", allocs)
	}
}
