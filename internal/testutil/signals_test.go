package testutil

import "testing"

func TestImpulse(t *testing.T) {
	x := Impulse(5, 2)
	RequireSliceNearlyEqual(t, x, []float64{0, 0, 1, 0, 0}, 0)

	out := Impulse(3, 7)
	RequireSilent(t, out, 0)
}

func TestDeterministicNoiseRepeatable(t *testing.T) {
	a := DeterministicNoise(7, 0.5, 64)
	b := DeterministicNoise(7, 0.5, 64)
	RequireSliceNearlyEqual(t, a, b, 0)
	for i, v := range a {
		if v < -0.5 || v > 0.5 {
			t.Fatalf("index %d: %v outside amplitude", i, v)
		}
	}
}

func TestPlanarCopies(t *testing.T) {
	src := []float64{1, 2}
	p := Planar(src, 2)
	p[0][0] = 9
	RequireSliceNearlyEqual(t, p[1], src, 0)
	RequireSliceNearlyEqual(t, src, []float64{1, 2}, 0)
}

func TestBlocks(t *testing.T) {
	b := Blocks([]float64{1, 2, 3, 4, 5}, 2)
	if len(b) != 3 {
		t.Fatalf("got %d blocks, want 3", len(b))
	}
	RequireSliceNearlyEqual(t, b[2], []float64{5}, 0)
	if Blocks([]float64{1}, 0) != nil {
		t.Fatal("size 0 should yield nil")
	}
}

func TestNonZero(t *testing.T) {
	idx := NonZero([]float64{0, 1e-9, -0.5, 0, 2}, 1e-6)
	if len(idx) != 2 || idx[0] != 2 || idx[1] != 4 {
		t.Fatalf("NonZero = %v, want [2 4]", idx)
	}
}
