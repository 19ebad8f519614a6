package fingerprint

import (
	"math"
	"testing"

	"github.com/aksiksi/needle/pkg/needle"
)

func TestStartRejectsUnsupportedFormat(t *testing.T) {
	if _, err := Start(0, 2); needle.CodeOf(err) != needle.InvalidArgument {
		t.Errorf("sampleRate=0: code = %v, want InvalidArgument", needle.CodeOf(err))
	}
	if _, err := Start(11025, 3); needle.CodeOf(err) != needle.InvalidArgument {
		t.Errorf("channels=3: code = %v, want InvalidArgument", needle.CodeOf(err))
	}
}

func TestStartRejectsShortHashDuration(t *testing.T) {
	_, err := Start(11025, 2, WithHashDuration(1.0))
	if needle.CodeOf(err) != needle.AnalyzerInvalidHashDuration {
		t.Errorf("code = %v, want AnalyzerInvalidHashDuration", needle.CodeOf(err))
	}
}

func TestStartRejectsNonPositiveHashPeriod(t *testing.T) {
	_, err := Start(11025, 2, WithHashPeriod(0))
	if needle.CodeOf(err) != needle.AnalyzerInvalidHashPeriod {
		t.Errorf("code = %v, want AnalyzerInvalidHashPeriod", needle.CodeOf(err))
	}
}

func sineBlock(freqHz float64, sampleRate, channels int, startTime float64, seconds float64) needle.PcmBlock {
	n := int(seconds * float64(sampleRate))
	samples := make([]int16, n*channels)
	for i := 0; i < n; i++ {
		v := int16(10000 * math.Sin(2*math.Pi*freqHz*float64(i)/float64(sampleRate)))
		for c := 0; c < channels; c++ {
			samples[i*channels+c] = v
		}
	}
	return needle.PcmBlock{Samples: samples, StartTime: startTime}
}

func TestFingerprinterEmitsTimeAscendingHashes(t *testing.T) {
	fp, err := Start(11025, 2, WithHashDuration(3.0), WithHashPeriod(0.5))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Feed 10s of audio in 1s chunks.
	for i := 0; i < 10; i++ {
		fp.Feed(sineBlock(440, 11025, 2, float64(i), 1.0))
	}
	hashes := fp.Finish()

	if len(hashes) == 0 {
		t.Fatal("expected at least one hash over 10s of audio with a 3s/0.5s window")
	}
	for i := 1; i < len(hashes); i++ {
		if hashes[i].Time <= hashes[i-1].Time {
			t.Fatalf("hash times not strictly ascending at %d: %v <= %v", i, hashes[i].Time, hashes[i-1].Time)
		}
	}
	// No window should start after 10s - 3s of audio remains.
	last := hashes[len(hashes)-1]
	if last.Time > 7.01 {
		t.Errorf("last hash time %v starts later than the last full 3s window allows", last.Time)
	}
}

func TestFingerprinterDrainClearsPending(t *testing.T) {
	fp, err := Start(11025, 2, WithHashDuration(3.0), WithHashPeriod(0.5))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 10; i++ {
		fp.Feed(sineBlock(440, 11025, 2, float64(i), 1.0))
	}
	first := fp.Drain()
	if len(first) == 0 {
		t.Fatal("expected hashes after feeding 10s of audio")
	}
	second := fp.Drain()
	if len(second) != 0 {
		t.Errorf("expected no new hashes on a second Drain with no new input, got %d", len(second))
	}
}

func TestDownmixMono(t *testing.T) {
	out := downmix([]int16{16384, -16384, 0}, 1)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	if math.Abs(out[0]-0.5) > 1e-6 {
		t.Errorf("out[0] = %v, want 0.5", out[0])
	}
}

func TestDownmixStereoAverages(t *testing.T) {
	out := downmix([]int16{16384, -16384}, 2)
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if math.Abs(out[0]) > 1e-6 {
		t.Errorf("out[0] = %v, want ~0 (average of +0.5 and -0.5)", out[0])
	}
}
