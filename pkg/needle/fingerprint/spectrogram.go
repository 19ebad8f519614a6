// Package fingerprint computes ordered sequences of 32-bit acoustic hashes
// from canonical PCM audio, one hash per sliding analysis window.
package fingerprint

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// stftWindowSize and stftHopSize are the frame size and hop used for the
// underlying short-time Fourier transform that each analysis window's band
// energies are derived from.
const (
	stftWindowSize = 1024
	stftHopSize    = 256
)

func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func magnitudeSpectrum(spectrum []complex128) []float64 {
	half := len(spectrum) / 2
	mag := make([]float64, half)
	for i := 0; i < half; i++ {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}

// stft returns the magnitude spectrum of each overlapping frame of samples.
func stft(samples []float64, windowSize, hopSize int, window []float64) ([][]float64, error) {
	if len(window) != windowSize {
		return nil, errors.New("fingerprint: window length must equal windowSize")
	}
	if len(samples) < windowSize {
		return nil, errors.New("fingerprint: input shorter than window size")
	}

	frames := make([][]float64, 0, (len(samples)-windowSize)/hopSize+1)
	frame := make([]float64, windowSize)
	for start := 0; start+windowSize <= len(samples); start += hopSize {
		copy(frame, samples[start:start+windowSize])
		for i := 0; i < windowSize; i++ {
			frame[i] *= window[i]
		}
		frames = append(frames, magnitudeSpectrum(fft.FFTReal(frame)))
	}
	return frames, nil
}

// averageSpectrum computes the per-bin mean magnitude across every STFT
// frame taken over window, using the canonical 1024/256 frame/hop pair.
func averageSpectrum(window []float64) ([]float64, error) {
	win := hammingWindow(stftWindowSize)
	frames, err := stft(window, stftWindowSize, stftHopSize, win)
	if err != nil {
		return nil, err
	}
	bins := len(frames[0])
	avg := make([]float64, bins)
	for _, frame := range frames {
		for i, v := range frame {
			avg[i] += v
		}
	}
	n := float64(len(frames))
	for i := range avg {
		avg[i] /= n
	}
	return avg, nil
}
