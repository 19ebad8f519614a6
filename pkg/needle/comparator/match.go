package comparator

import (
	"github.com/aksiksi/needle/pkg/needle"
	"github.com/aksiksi/needle/pkg/needle/fingerprint"
)

// FindLongestMatches sweeps every (k, l) starting pair of A and B and, for
// each pair within threshold, extends the run while both sequences stay
// within threshold, restarting the inner scan past the run (or by one slot,
// on a miss). It implements the two-pointer-sweep-with-restart algorithm:
// a run is only ever extended forward, never merged with a later one, so
// equal-length matches naturally come out ordered by ascending src start.
func FindLongestMatches(a, b []needle.FrameHash, threshold int) []needle.Match {
	var matches []needle.Match

	k := 0
	for k < len(a) {
		l := 0
		for l < len(b) {
			if fingerprint.PopcountXOR(a[k].Hash, b[l].Hash) <= threshold {
				run := 0
				sum := 0
				for k+run < len(a) && l+run < len(b) &&
					fingerprint.PopcountXOR(a[k+run].Hash, b[l+run].Hash) <= threshold {
					sum += fingerprint.PopcountXOR(a[k+run].Hash, b[l+run].Hash)
					run++
				}
				if run >= 1 {
					matches = append(matches, needle.Match{
						SrcRange:   needle.Interval{Start: a[k].Time, End: a[k+run-1].Time},
						DstRange:   needle.Interval{Start: b[l].Time, End: b[l+run-1].Time},
						Length:     run,
						HammingSum: sum,
					})
				}
				l += run
			} else {
				l++
			}
		}
		k++
	}

	return matches
}
