// Package analyzer orchestrates the audio source reader and fingerprinter
// for a set of videos, persisting the resulting FrameHashes per video.
package analyzer

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/aksiksi/needle/pkg/needle"
	"github.com/aksiksi/needle/pkg/needle/audio"
	"github.com/aksiksi/needle/pkg/needle/catalog"
	"github.com/aksiksi/needle/pkg/needle/fingerprint"
	"github.com/aksiksi/needle/pkg/needle/logging"
	"github.com/aksiksi/needle/pkg/needle/store"
)

// Analyzer computes, caches, and hands back a FrameHashes artifact for
// every video path it is given.
type Analyzer struct {
	paths   []string
	cfg     Config
	log     logging.Logger
	catalog *catalog.Catalog

	mu      sync.Mutex
	results []needle.FrameHashes
}

// New constructs an Analyzer over paths. The returned error is non-nil only
// for invalid configuration (a validation failure), never for per-file
// media problems — those surface from Run.
func New(paths []string, opts ...Option) (*Analyzer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		paths:   paths,
		cfg:     cfg,
		log:     logging.Default(),
		results: make([]needle.FrameHashes, len(paths)),
	}, nil
}

// WithLogger overrides the Analyzer's logger after construction.
func (a *Analyzer) WithLogger(log logging.Logger) *Analyzer {
	a.log = log
	return a
}

// WithCatalog attaches a supplemental SQLite ledger the Analyzer records
// each successful analysis to, in addition to the per-video binary store.
func (a *Analyzer) WithCatalog(c *catalog.Catalog) *Analyzer {
	a.catalog = c
	return a
}

// Run computes (or loads, when persist is true and a matching on-disk
// artifact exists) FrameHashes for every configured path. A per-file
// failure does not abort its peers: the failing path's slot in the
// returned slice is left zero-valued, and its cause is joined (with %w)
// into the aggregated error. Run returns a nil error only if every
// path succeeded.
func (a *Analyzer) Run(ctx context.Context, persist bool) ([]needle.FrameHashes, error) {
	results := make([]needle.FrameHashes, len(a.paths))
	errs := make([]error, len(a.paths))

	work := func(i int) {
		hashes, err := a.runSingle(ctx, a.paths[i], persist)
		if err != nil {
			errs[i] = fmt.Errorf("%s: %w", a.paths[i], err)
			a.log.Warnf("analyzer: %s failed: %v", a.paths[i], err)
			return
		}
		results[i] = hashes
	}

	if a.cfg.ThreadedDecoding {
		var wg sync.WaitGroup
		for i := range a.paths {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				work(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range a.paths {
			work(i)
		}
	}

	a.mu.Lock()
	a.results = results
	a.mu.Unlock()

	var joined error
	for _, err := range errs {
		if err != nil {
			joined = joinErr(joined, err)
		}
	}
	return results, joined
}

// FrameHashes returns the FrameHashes computed for the i-th configured
// path by the most recent Run call.
func (a *Analyzer) FrameHashes(i int) needle.FrameHashes {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.results[i]
}

func (a *Analyzer) runSingle(ctx context.Context, path string, persist bool) (needle.FrameHashes, error) {
	checksum, err := needle.HeaderChecksum(path)
	if err != nil {
		return needle.FrameHashes{}, err
	}

	if persist && !a.cfg.Force {
		if existing, err := store.Read(store.PathFor(path)); err == nil && existing.HeaderChecksum == checksum {
			a.log.Debugf("analyzer: %s unchanged, skipping", path)
			return existing, nil
		}
	}

	hashes, err := a.analyze(ctx, path, checksum)
	if err != nil {
		return needle.FrameHashes{}, err
	}

	if persist {
		if err := store.Write(store.PathFor(path), hashes); err != nil {
			return needle.FrameHashes{}, err
		}
	}
	if a.catalog != nil {
		checksumHex := fmt.Sprintf("%x", checksum)
		if err := a.catalog.Upsert(path, checksumHex, hashes.Duration); err != nil {
			a.log.Warnf("analyzer: catalog upsert failed for %s: %v", path, err)
		}
	}

	return hashes, nil
}

func (a *Analyzer) analyze(ctx context.Context, path string, checksum [16]byte) (needle.FrameHashes, error) {
	reader, err := audio.Open(ctx, path)
	if err != nil {
		return needle.FrameHashes{}, err
	}
	defer reader.Close()

	duration := reader.Duration()
	if err := checkHashDuration(a.cfg.HashDurationSeconds, duration, path); err != nil {
		return needle.FrameHashes{}, err
	}

	openingRange := needle.Interval{Start: 0, End: a.cfg.OpeningSearchPercentage * duration}
	var endingRange needle.Interval
	if a.cfg.IncludeEndings {
		endingRange = needle.Interval{Start: duration - a.cfg.EndingSearchPercentage*duration, End: duration}
	}

	openingFP, err := fingerprint.Start(needle.SampleRate, needle.Channels,
		fingerprint.WithHashDuration(a.cfg.HashDurationSeconds),
		fingerprint.WithHashPeriod(a.cfg.HashPeriodSeconds))
	if err != nil {
		return needle.FrameHashes{}, err
	}
	var endingFP *fingerprint.Fingerprinter
	if a.cfg.IncludeEndings {
		endingFP, err = fingerprint.Start(needle.SampleRate, needle.Channels,
			fingerprint.WithHashDuration(a.cfg.HashDurationSeconds),
			fingerprint.WithHashPeriod(a.cfg.HashPeriodSeconds))
		if err != nil {
			return needle.FrameHashes{}, err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return needle.FrameHashes{}, ctx.Err()
		default:
		}

		block, ok, err := reader.NextPacket()
		if err != nil {
			return needle.FrameHashes{}, err
		}
		if !ok {
			break
		}

		if sliced, overlap := sliceBlock(block, openingRange.Start, openingRange.End); overlap {
			openingFP.Feed(sliced)
		}
		if a.cfg.IncludeEndings {
			if sliced, overlap := sliceBlock(block, endingRange.Start, endingRange.End); overlap {
				endingFP.Feed(sliced)
			}
		}
	}

	duration = reader.Duration()
	hashes := needle.FrameHashes{
		HeaderChecksum: checksum,
		Duration:       duration,
		Opening:        openingFP.Finish(),
	}
	if a.cfg.IncludeEndings {
		hashes.Ending = endingFP.Finish()
	}
	return hashes, nil
}

// checkHashDuration rejects a video whose total audio duration doesn't
// exceed the configured hash window: a clip with hash_duration_seconds >=
// duration can never fill a single analysis window, so fingerprinting would
// silently yield zero hashes rather than a real result.
func checkHashDuration(hashDurationSeconds, duration float64, path string) error {
	if hashDurationSeconds >= duration {
		return needle.Errorf(needle.AnalyzerInvalidHashDuration,
			"analyzer: hash_duration_seconds %.3f >= %s duration %.3fs", hashDurationSeconds, path, duration)
	}
	return nil
}

// sliceBlock returns the portion of block whose presentation time falls
// within [start, end), or ok=false if there is no overlap.
func sliceBlock(block needle.PcmBlock, start, end float64) (needle.PcmBlock, bool) {
	frames := len(block.Samples) / needle.Channels
	if frames == 0 {
		return needle.PcmBlock{}, false
	}
	blockStart := block.StartTime
	blockEnd := blockStart + float64(frames)/float64(needle.SampleRate)

	lo := math.Max(start, blockStart)
	hi := math.Min(end, blockEnd)
	if lo >= hi {
		return needle.PcmBlock{}, false
	}

	loFrame := int(math.Round((lo - blockStart) * needle.SampleRate))
	hiFrame := int(math.Round((hi - blockStart) * needle.SampleRate))
	if loFrame < 0 {
		loFrame = 0
	}
	if hiFrame > frames {
		hiFrame = frames
	}
	if loFrame >= hiFrame {
		return needle.PcmBlock{}, false
	}

	return needle.PcmBlock{
		Samples:   block.Samples[loFrame*needle.Channels : hiFrame*needle.Channels],
		StartTime: blockStart + float64(loFrame)/float64(needle.SampleRate),
	}, true
}

func joinErr(existing, next error) error {
	if existing == nil {
		return next
	}
	return fmt.Errorf("%w; %w", existing, next)
}
