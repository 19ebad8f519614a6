package comparator

import "github.com/aksiksi/needle/pkg/needle"

// Defaults, per spec.
const (
	DefaultHashMatchThreshold uint16  = 10
	DefaultMinOpeningDuration uint16  = 20
	DefaultMinEndingDuration  uint16  = 10
	DefaultTimePadding        float32 = 0.0
	DefaultIncludeEndings             = true
	DefaultLengthWeight       float64 = 1.0
	DefaultDurationWeight     float64 = 1.0
	DefaultAllowSelfCompare            = true
)

// Config controls how the Comparator scores and selects candidate
// opening/ending intervals. Built via functional options.
type Config struct {
	HashMatchThreshold uint16
	MinOpeningDuration uint16
	MinEndingDuration  uint16
	TimePadding        float32
	IncludeEndings     bool

	// LengthWeight and DurationWeight score a Candidate as
	// LengthWeight*length + DurationWeight*duration_seconds. Both default
	// to 1.0 (spec's Open Question on scoring weights, resolved by
	// exposing both as configuration).
	LengthWeight   float64
	DurationWeight float64

	// AllowSelfComparison permits a video's own hash sequence to compete
	// as a candidate against itself. When true (the default), ties
	// against a cross-video match are broken in the cross-video match's
	// favor.
	AllowSelfComparison bool
}

// Option mutates a Config.
type Option func(*Config)

func WithHashMatchThreshold(threshold uint16) Option {
	return func(c *Config) { c.HashMatchThreshold = threshold }
}

func WithMinOpeningDuration(seconds uint16) Option {
	return func(c *Config) { c.MinOpeningDuration = seconds }
}

func WithMinEndingDuration(seconds uint16) Option {
	return func(c *Config) { c.MinEndingDuration = seconds }
}

func WithTimePadding(seconds float32) Option {
	return func(c *Config) { c.TimePadding = seconds }
}

func WithIncludeEndings(include bool) Option {
	return func(c *Config) { c.IncludeEndings = include }
}

func WithScoringWeights(lengthWeight, durationWeight float64) Option {
	return func(c *Config) { c.LengthWeight, c.DurationWeight = lengthWeight, durationWeight }
}

func WithAllowSelfComparison(allow bool) Option {
	return func(c *Config) { c.AllowSelfComparison = allow }
}

func defaultConfig() Config {
	return Config{
		HashMatchThreshold:  DefaultHashMatchThreshold,
		MinOpeningDuration:  DefaultMinOpeningDuration,
		MinEndingDuration:   DefaultMinEndingDuration,
		TimePadding:         DefaultTimePadding,
		IncludeEndings:      DefaultIncludeEndings,
		LengthWeight:        DefaultLengthWeight,
		DurationWeight:      DefaultDurationWeight,
		AllowSelfComparison: DefaultAllowSelfCompare,
	}
}

func (c Config) validate(numPaths int) error {
	if numPaths < 2 {
		return needle.Errorf(needle.ComparatorMinimumPaths, "comparator: need at least 2 paths, got %d", numPaths)
	}
	if c.HashMatchThreshold > 32 {
		return needle.Errorf(needle.InvalidArgument, "comparator: hash_match_threshold %d exceeds 32 bits", c.HashMatchThreshold)
	}
	return nil
}
