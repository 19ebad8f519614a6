package fingerprint

import "math"

// numBands is fixed at 32 so each band-to-band energy comparison contributes
// exactly one bit of the emitted fingerprint.
const numBands = 32

// minBandHz/maxBandHz bound the log-spaced band edges; content below
// minBandHz and above maxBandHz is ignored, matching a typical perceptual
// audio fingerprint's useful range.
const (
	minBandHz = 250.0
	maxBandHz = 5000.0
)

// bandEdges returns numBands+1 log-spaced frequency edges within
// [minBandHz, min(maxBandHz, nyquist)].
func bandEdges(sampleRate int) []float64 {
	nyquist := float64(sampleRate) / 2
	hi := maxBandHz
	if hi > nyquist {
		hi = nyquist
	}
	logLo, logHi := math.Log(minBandHz), math.Log(hi)
	edges := make([]float64, numBands+1)
	for i := range edges {
		frac := float64(i) / float64(numBands)
		edges[i] = math.Exp(logLo + frac*(logHi-logLo))
	}
	edges[0], edges[numBands] = minBandHz, hi
	return edges
}

// bandEnergies folds a linear-frequency magnitude spectrum into numBands
// log-spaced energy buckets.
func bandEnergies(spectrum []float64, sampleRate int) [numBands]float64 {
	edges := bandEdges(sampleRate)
	nyquist := float64(sampleRate) / 2
	binHz := nyquist / float64(len(spectrum))

	var energies [numBands]float64
	for b := 0; b < numBands; b++ {
		lo, hi := edges[b], edges[b+1]
		loBin := int(lo / binHz)
		hiBin := int(hi / binHz)
		if hiBin > len(spectrum) {
			hiBin = len(spectrum)
		}
		if loBin >= hiBin {
			continue
		}
		var sum float64
		for i := loBin; i < hiBin; i++ {
			sum += spectrum[i]
		}
		energies[b] = sum / float64(hiBin-loBin)
	}
	return energies
}

// hashWindow computes the 32-bit fingerprint of one analysis window. Bit b
// is set when band b's energy exceeds that of its neighboring band
// (b+1 mod numBands), a sign-of-difference classifier in the spirit of
// chromaprint's filter bank, folded down to a single word per window
// instead of one per STFT frame.
func hashWindow(window []float64, sampleRate int) (uint32, error) {
	spectrum, err := averageSpectrum(window)
	if err != nil {
		return 0, err
	}
	energies := bandEnergies(spectrum, sampleRate)

	var hash uint32
	for b := 0; b < numBands; b++ {
		if energies[b] > energies[(b+1)%numBands] {
			hash |= 1 << uint(b)
		}
	}
	return hash, nil
}

// PopcountXOR returns the Hamming distance between two 32-bit fingerprints.
func PopcountXOR(a, b uint32) int {
	x := a ^ b
	count := 0
	for x != 0 {
		x &= x - 1
		count++
	}
	return count
}
