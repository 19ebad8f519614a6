package fingerprint

import (
	"github.com/aksiksi/needle/pkg/needle"
)

// MinHashDurationSeconds is the smallest analysis window Start will accept;
// shorter windows don't carry enough spectral context to produce a stable
// fingerprint.
const MinHashDurationSeconds = 3.0

// DefaultHashPeriodSeconds is the default spacing between the start of
// consecutive analysis windows.
const DefaultHashPeriodSeconds = 0.3

// Config controls the sliding analysis window a Fingerprinter uses to turn
// PCM into a FrameHash sequence.
type Config struct {
	// HashDurationSeconds is the length of each analysis window. Must be
	// >= MinHashDurationSeconds.
	HashDurationSeconds float64
	// HashPeriodSeconds is the time between the start of one window and
	// the start of the next (the windows' hop/stride).
	HashPeriodSeconds float64
}

// Option mutates a Config.
type Option func(*Config)

// WithHashDuration overrides the analysis window length.
func WithHashDuration(seconds float64) Option {
	return func(c *Config) { c.HashDurationSeconds = seconds }
}

// WithHashPeriod overrides the spacing between windows.
func WithHashPeriod(seconds float64) Option {
	return func(c *Config) { c.HashPeriodSeconds = seconds }
}

func defaultConfig() Config {
	return Config{
		HashDurationSeconds: MinHashDurationSeconds,
		HashPeriodSeconds:   DefaultHashPeriodSeconds,
	}
}

// Fingerprinter turns a stream of PcmBlocks into an ordered, deterministic
// sequence of FrameHash values. Feed PcmBlocks in presentation-time order;
// call Finish once the stream is exhausted to obtain every hash produced.
type Fingerprinter struct {
	cfg        Config
	sampleRate int
	channels   int

	windowSamples int
	periodSamples int

	buffer       []float64
	bufferOffset int64 // absolute sample index of buffer[0]
	nextWindow   int64 // absolute sample index where the next window starts
	haveBase     bool
	baseTime     float64
	totalSamples int64

	hashes []needle.FrameHash
}

// Start validates the stream format and returns a ready Fingerprinter.
func Start(sampleRate, channels int, opts ...Option) (*Fingerprinter, error) {
	if sampleRate <= 0 || (channels != 1 && channels != 2) {
		return nil, needle.Errorf(needle.InvalidArgument, "fingerprint: unsupported format: rate=%d channels=%d", sampleRate, channels)
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.HashDurationSeconds < MinHashDurationSeconds {
		return nil, needle.Errorf(needle.AnalyzerInvalidHashDuration, "fingerprint: hash duration %.3fs below minimum %.3fs", cfg.HashDurationSeconds, MinHashDurationSeconds)
	}
	if cfg.HashPeriodSeconds <= 0 {
		return nil, needle.Errorf(needle.AnalyzerInvalidHashPeriod, "fingerprint: hash period must be positive, got %.3fs", cfg.HashPeriodSeconds)
	}

	return &Fingerprinter{
		cfg:           cfg,
		sampleRate:    sampleRate,
		channels:      channels,
		windowSamples: int(cfg.HashDurationSeconds * float64(sampleRate)),
		periodSamples: int(cfg.HashPeriodSeconds * float64(sampleRate)),
	}, nil
}

func downmix(samples []int16, channels int) []float64 {
	if channels == 1 {
		out := make([]float64, len(samples))
		for i, s := range samples {
			out[i] = float64(s) / 32768.0
		}
		return out
	}
	n := len(samples) / channels
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(samples[i*channels+c])
		}
		out[i] = sum / float64(channels) / 32768.0
	}
	return out
}

// Feed appends one PCM block to the fingerprinter's buffer, emitting any
// FrameHash values whose analysis window has become fully available.
func (f *Fingerprinter) Feed(block needle.PcmBlock) {
	mono := downmix(block.Samples, f.channels)
	if !f.haveBase {
		f.haveBase = true
		f.baseTime = block.StartTime
		f.bufferOffset = 0
		f.nextWindow = 0
	}
	f.buffer = append(f.buffer, mono...)
	f.totalSamples += int64(len(mono))

	for f.bufferOffset+int64(len(f.buffer))-f.nextWindow >= int64(f.windowSamples) {
		start := f.nextWindow - f.bufferOffset
		window := f.buffer[start : start+int64(f.windowSamples)]
		hash, err := hashWindow(window, f.sampleRate)
		if err == nil {
			t := f.baseTime + float64(f.nextWindow)/float64(f.sampleRate)
			f.hashes = append(f.hashes, needle.FrameHash{Hash: hash, Time: t})
		}
		f.nextWindow += int64(f.periodSamples)
	}

	f.trim()
}

// trim drops buffered samples that precede every future window start.
func (f *Fingerprinter) trim() {
	keepFrom := f.nextWindow - f.bufferOffset
	if keepFrom <= 0 {
		return
	}
	if keepFrom > int64(len(f.buffer)) {
		keepFrom = int64(len(f.buffer))
	}
	f.buffer = append(f.buffer[:0], f.buffer[keepFrom:]...)
	f.bufferOffset += keepFrom
}

// Drain returns every FrameHash produced since the last Drain/Finish call
// and clears the pending queue.
func (f *Fingerprinter) Drain() []needle.FrameHash {
	out := f.hashes
	f.hashes = nil
	return out
}

// Finish flushes the fingerprinter and returns the complete, time-ascending
// sequence of FrameHash values produced over the stream's lifetime that
// have not yet been drained. A final partial window shorter than the
// configured hash duration is not emitted.
func (f *Fingerprinter) Finish() []needle.FrameHash {
	return f.Drain()
}
