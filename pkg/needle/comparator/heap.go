package comparator

import (
	"container/heap"

	"github.com/aksiksi/needle/pkg/needle"
)

// scoredCandidate pairs a Candidate with its weighted score and whether it
// is a self-comparison (SrcVideo == DstVideo), so the heap can apply the
// cross-video tie-break without recomputing it on every comparison.
type scoredCandidate struct {
	candidate needle.Candidate
	score     float64
	isSelf    bool
}

// candidateHeap is a max-heap of scoredCandidate ordered by score
// descending, tie-broken in favor of cross-video matches over
// self-comparisons, then by earlier source start time.
type candidateHeap struct {
	items []scoredCandidate
}

func (h *candidateHeap) Len() int { return len(h.items) }

func (h *candidateHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.score != b.score {
		return a.score > b.score
	}
	if a.isSelf != b.isSelf {
		return !a.isSelf // cross-video candidate sorts first
	}
	return a.candidate.SrcRange.Start < b.candidate.SrcRange.Start
}

func (h *candidateHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *candidateHeap) Push(x any) { h.items = append(h.items, x.(scoredCandidate)) }

func (h *candidateHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

func newCandidateHeap() *candidateHeap {
	h := &candidateHeap{}
	heap.Init(h)
	return h
}

func (h *candidateHeap) push(c needle.Candidate, score float64, isSelf bool) {
	heap.Push(h, scoredCandidate{candidate: c, score: score, isSelf: isSelf})
}

func (h *candidateHeap) popBest() (needle.Candidate, bool) {
	if h.Len() == 0 {
		return needle.Candidate{}, false
	}
	return heap.Pop(h).(scoredCandidate).candidate, true
}
