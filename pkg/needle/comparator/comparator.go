// Package comparator is the algorithmic heart of needle: it finds, for
// every video in a set, the best shared opening and ending interval against
// its peers.
package comparator

import (
	"sync"

	"github.com/aksiksi/needle/pkg/needle"
	"github.com/aksiksi/needle/pkg/needle/logging"
	"github.com/aksiksi/needle/pkg/needle/skipfile"
)

// Comparator runs pairwise hash matching across a fixed set of video paths
// and selects, per video, the best candidate opening and ending interval.
type Comparator struct {
	paths []string
	cfg   Config
	log   logging.Logger
}

// New constructs a Comparator over paths, which must number at least two.
func New(paths []string, opts ...Option) (*Comparator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(len(paths)); err != nil {
		return nil, err
	}
	return &Comparator{paths: paths, cfg: cfg, log: logging.Default()}, nil
}

// WithLogger overrides the Comparator's logger after construction.
func (c *Comparator) WithLogger(log logging.Logger) *Comparator {
	c.log = log
	return c
}

// Run compares hashesByPath (aligned index-for-index with the paths given
// to New) and returns one SearchResult per path, in that same input order,
// regardless of how much of the work ran concurrently.
//
// When useSkipFiles is true, a path whose on-disk skip file validates
// against its current header checksum is taken directly from the sidecar
// and excluded from pairwise comparison entirely. When writeSkipFiles is
// true, every computed (non-sidecar-sourced) result is persisted back out
// as a sidecar.
func (c *Comparator) Run(hashesByPath []needle.FrameHashes, useSkipFiles, writeSkipFiles, threaded bool) ([]needle.SearchResult, error) {
	n := len(c.paths)
	results := make([]needle.SearchResult, n)
	fromSkipFile := make([]bool, n)

	if useSkipFiles {
		for i, path := range c.paths {
			sf, err := skipfile.Read(skipfile.PathFor(path))
			if err != nil {
				continue
			}
			if skipfile.Valid(sf, hashesByPath[i].HeaderChecksum) {
				results[i] = skipfile.ToResult(path, sf, hashesByPath[i].HeaderChecksum)
				fromSkipFile[i] = true
			}
		}
	}

	openingCandidates := make([]*candidateHeap, n)
	endingCandidates := make([]*candidateHeap, n)
	for i := range openingCandidates {
		openingCandidates[i] = newCandidateHeap()
		endingCandidates[i] = newCandidateHeap()
	}

	type pairResult struct {
		opening, ending []needle.Match
		i, j            int
	}

	var pairs []struct{ i, j int }
	for i := 0; i < n; i++ {
		if fromSkipFile[i] {
			continue
		}
		for j := 0; j < n; j++ {
			if fromSkipFile[j] {
				continue
			}
			if i == j && !c.cfg.AllowSelfComparison {
				continue
			}
			pairs = append(pairs, struct{ i, j int }{i, j})
		}
	}

	pairResults := make([]pairResult, len(pairs))
	compute := func(idx int) {
		i, j := pairs[idx].i, pairs[idx].j
		pr := pairResult{i: i, j: j}
		pr.opening = FindLongestMatches(hashesByPath[i].Opening, hashesByPath[j].Opening, int(c.cfg.HashMatchThreshold))
		if c.cfg.IncludeEndings {
			pr.ending = FindLongestMatches(hashesByPath[i].Ending, hashesByPath[j].Ending, int(c.cfg.HashMatchThreshold))
		}
		pairResults[idx] = pr
	}

	if threaded {
		var wg sync.WaitGroup
		for idx := range pairs {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				compute(idx)
			}(idx)
		}
		wg.Wait()
	} else {
		for idx := range pairs {
			compute(idx)
		}
	}

	for _, pr := range pairResults {
		for _, m := range pr.opening {
			m.SrcVideo, m.DstVideo = pr.i, pr.j
			score := c.cfg.LengthWeight*float64(m.Length) + c.cfg.DurationWeight*m.Duration()
			openingCandidates[pr.i].push(needle.Candidate{Match: m, Region: needle.Opening}, score, pr.i == pr.j)
		}
		for _, m := range pr.ending {
			m.SrcVideo, m.DstVideo = pr.i, pr.j
			score := c.cfg.LengthWeight*float64(m.Length) + c.cfg.DurationWeight*m.Duration()
			endingCandidates[pr.i].push(needle.Candidate{Match: m, Region: needle.Ending}, score, pr.i == pr.j)
		}
	}

	for i, path := range c.paths {
		if fromSkipFile[i] {
			continue
		}
		result := needle.SearchResult{Path: path, HeaderChecksum: hashesByPath[i].HeaderChecksum}

		duration := hashesByPath[i].Duration
		if opening := selectCandidate(openingCandidates[i], uint32(c.cfg.MinOpeningDuration)); opening != nil {
			interval := windowEndAdjusted(*opening, hashesByPath[i].Opening)
			interval = pad(interval, float64(c.cfg.TimePadding), duration)
			result.Opening = &interval
		}
		if c.cfg.IncludeEndings {
			if ending := selectCandidate(endingCandidates[i], uint32(c.cfg.MinEndingDuration)); ending != nil {
				interval := ending.SrcRange
				interval = pad(interval, float64(c.cfg.TimePadding), duration)
				result.Ending = &interval
			}
		}

		results[i] = result

		if writeSkipFiles {
			if err := skipfile.Write(skipfile.PathFor(path), result); err != nil {
				c.log.Warnf("comparator: writing skip file for %s: %v", path, err)
			}
		}
	}

	return results, nil
}

// selectCandidate pops candidates off h, in score order, until it finds one
// whose source interval meets minDurationSeconds, or the heap is exhausted.
func selectCandidate(h *candidateHeap, minDurationSeconds uint32) *needle.Candidate {
	for {
		cand, ok := h.popBest()
		if !ok {
			return nil
		}
		if cand.Duration() >= float64(minDurationSeconds) {
			c := cand
			return &c
		}
	}
}

// windowEndAdjusted shifts an opening candidate's end time forward by one
// hash step, i.e. to the start time of the hash after the last matched one,
// since every FrameHash.Time marks a window's start. The step is derived
// from the spacing of the video's own opening hash sequence, since the
// binary store format does not persist the hash period directly; the full
// analysis window length is not added.
func windowEndAdjusted(cand needle.Candidate, openingHashes []needle.FrameHash) needle.Interval {
	step := hashStep(openingHashes)
	return needle.Interval{Start: cand.SrcRange.Start, End: cand.SrcRange.End + step}
}

func hashStep(hashes []needle.FrameHash) float64 {
	if len(hashes) < 2 {
		return 0
	}
	return hashes[1].Time - hashes[0].Time
}

// pad widens interval by seconds on each side, clamped to [0, duration].
func pad(interval needle.Interval, seconds, duration float64) needle.Interval {
	start := interval.Start - seconds
	end := interval.End + seconds
	if start < 0 {
		start = 0
	}
	if end > duration {
		end = duration
	}
	return needle.Interval{Start: start, End: end}
}

