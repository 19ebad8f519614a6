package fingerprint

import (
	"math"
	"testing"
)

func TestPopcountXOR(t *testing.T) {
	cases := []struct {
		a, b uint32
		want int
	}{
		{0, 0, 0},
		{0xFFFFFFFF, 0, 32},
		{0xFFFFFFFF, 0xFFFFFFFF, 0},
		{0b1010, 0b0101, 4},
		{1, 0, 1},
	}
	for _, c := range cases {
		if got := PopcountXOR(c.a, c.b); got != c.want {
			t.Errorf("PopcountXOR(%#x, %#x) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestBandEdgesMonotonicAndBounded(t *testing.T) {
	edges := bandEdges(44100)
	if len(edges) != numBands+1 {
		t.Fatalf("len(edges) = %d, want %d", len(edges), numBands+1)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			t.Fatalf("edges not strictly increasing at %d: %v <= %v", i, edges[i], edges[i-1])
		}
	}
	if edges[0] != minBandHz {
		t.Errorf("edges[0] = %v, want %v", edges[0], minBandHz)
	}
	if edges[len(edges)-1] > maxBandHz+1e-9 {
		t.Errorf("edges[last] = %v, want <= %v", edges[len(edges)-1], maxBandHz)
	}
}

func TestBandEdgesClampsToNyquist(t *testing.T) {
	// A low sample rate pulls the Nyquist frequency below maxBandHz; the top
	// edge must clamp to it rather than exceed it.
	edges := bandEdges(8000)
	nyquist := 4000.0
	if edges[len(edges)-1] > nyquist+1e-9 {
		t.Errorf("top edge %v exceeds Nyquist %v", edges[len(edges)-1], nyquist)
	}
}

func TestHashWindowDeterministic(t *testing.T) {
	window := synthSine(440, 11025, 3.0)
	h1, err := hashWindow(window, 11025)
	if err != nil {
		t.Fatalf("hashWindow: %v", err)
	}
	h2, err := hashWindow(window, 11025)
	if err != nil {
		t.Fatalf("hashWindow: %v", err)
	}
	if h1 != h2 {
		t.Errorf("hashWindow is not deterministic: %#x != %#x", h1, h2)
	}
}

func TestHashWindowDiffersForDifferentSignals(t *testing.T) {
	low := synthSine(220, 11025, 3.0)
	high := synthSine(3000, 11025, 3.0)

	hLow, err := hashWindow(low, 11025)
	if err != nil {
		t.Fatalf("hashWindow(low): %v", err)
	}
	hHigh, err := hashWindow(high, 11025)
	if err != nil {
		t.Fatalf("hashWindow(high): %v", err)
	}
	if hLow == hHigh {
		t.Errorf("expected different hashes for a 220Hz and a 3000Hz tone, got the same: %#x", hLow)
	}
}

func synthSine(freqHz float64, sampleRate int, seconds float64) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freqHz * float64(i) / float64(sampleRate))
	}
	return out
}
