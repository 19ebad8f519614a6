package analyzer

import "github.com/aksiksi/needle/pkg/needle"

// Defaults, per spec.
const (
	DefaultOpeningSearchPercentage = 0.33
	DefaultEndingSearchPercentage  = 0.25
	DefaultIncludeEndings          = true
	DefaultHashDurationSeconds     = 3.0
	DefaultHashPeriodSeconds       = 0.3
	DefaultThreadedDecoding        = true
	DefaultForce                   = false
)

// Config controls how the Analyzer slices each video into opening/ending
// search regions and fingerprints them. Built via functional options;
// values are immutable once an Analyzer is constructed.
type Config struct {
	OpeningSearchPercentage float64
	EndingSearchPercentage  float64
	IncludeEndings          bool
	HashDurationSeconds     float64
	HashPeriodSeconds       float64
	ThreadedDecoding        bool
	Force                   bool
}

// Option mutates a Config.
type Option func(*Config)

func WithOpeningSearchPercentage(pct float64) Option {
	return func(c *Config) { c.OpeningSearchPercentage = pct }
}

func WithEndingSearchPercentage(pct float64) Option {
	return func(c *Config) { c.EndingSearchPercentage = pct }
}

func WithIncludeEndings(include bool) Option {
	return func(c *Config) { c.IncludeEndings = include }
}

func WithHashDurationSeconds(seconds float64) Option {
	return func(c *Config) { c.HashDurationSeconds = seconds }
}

func WithHashPeriodSeconds(seconds float64) Option {
	return func(c *Config) { c.HashPeriodSeconds = seconds }
}

func WithThreadedDecoding(threaded bool) Option {
	return func(c *Config) { c.ThreadedDecoding = threaded }
}

func WithForce(force bool) Option {
	return func(c *Config) { c.Force = force }
}

func defaultConfig() Config {
	return Config{
		OpeningSearchPercentage: DefaultOpeningSearchPercentage,
		EndingSearchPercentage:  DefaultEndingSearchPercentage,
		IncludeEndings:          DefaultIncludeEndings,
		HashDurationSeconds:     DefaultHashDurationSeconds,
		HashPeriodSeconds:       DefaultHashPeriodSeconds,
		ThreadedDecoding:        DefaultThreadedDecoding,
		Force:                   DefaultForce,
	}
}

func (c Config) validate() error {
	if c.OpeningSearchPercentage <= 0 || c.OpeningSearchPercentage > 1 {
		return needle.Errorf(needle.InvalidArgument, "analyzer: opening_search_percentage %.3f out of (0,1]", c.OpeningSearchPercentage)
	}
	if c.EndingSearchPercentage <= 0 || c.EndingSearchPercentage > 1 {
		return needle.Errorf(needle.InvalidArgument, "analyzer: ending_search_percentage %.3f out of (0,1]", c.EndingSearchPercentage)
	}
	if c.HashDurationSeconds < 3.0 {
		return needle.Errorf(needle.AnalyzerInvalidHashDuration, "analyzer: hash_duration_seconds %.3f below minimum 3.0", c.HashDurationSeconds)
	}
	if c.HashPeriodSeconds <= 0 {
		return needle.Errorf(needle.AnalyzerInvalidHashPeriod, "analyzer: hash_period_seconds must be positive, got %.3f", c.HashPeriodSeconds)
	}
	return nil
}
