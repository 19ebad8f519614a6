package comparator

import (
	"testing"

	"github.com/aksiksi/needle/pkg/needle"
)

func TestCandidateHeapPopsHighestScoreFirst(t *testing.T) {
	h := newCandidateHeap()
	h.push(needle.Candidate{Match: needle.Match{Length: 1}}, 5.0, false)
	h.push(needle.Candidate{Match: needle.Match{Length: 2}}, 9.0, false)
	h.push(needle.Candidate{Match: needle.Match{Length: 3}}, 1.0, false)

	first, ok := h.popBest()
	if !ok || first.Length != 2 {
		t.Fatalf("first pop = %+v, ok=%v, want Length=2", first, ok)
	}
	second, ok := h.popBest()
	if !ok || second.Length != 1 {
		t.Fatalf("second pop = %+v, want Length=1", second)
	}
	third, ok := h.popBest()
	if !ok || third.Length != 3 {
		t.Fatalf("third pop = %+v, want Length=3", third)
	}
	if _, ok := h.popBest(); ok {
		t.Error("expected heap to be empty")
	}
}

func TestCandidateHeapCrossVideoBeatsSelfOnTie(t *testing.T) {
	h := newCandidateHeap()
	h.push(needle.Candidate{Match: needle.Match{Length: 1, SrcVideo: 0, DstVideo: 0}}, 10.0, true)
	h.push(needle.Candidate{Match: needle.Match{Length: 2, SrcVideo: 0, DstVideo: 1}}, 10.0, false)

	best, ok := h.popBest()
	if !ok {
		t.Fatal("expected a candidate")
	}
	if best.Length != 2 {
		t.Errorf("expected the cross-video candidate to win the tie, got Length=%d", best.Length)
	}
}

func TestCandidateHeapTieBreaksOnEarlierStart(t *testing.T) {
	h := newCandidateHeap()
	h.push(needle.Candidate{Match: needle.Match{SrcRange: needle.Interval{Start: 10}}}, 5.0, false)
	h.push(needle.Candidate{Match: needle.Match{SrcRange: needle.Interval{Start: 2}}}, 5.0, false)

	best, ok := h.popBest()
	if !ok {
		t.Fatal("expected a candidate")
	}
	if best.SrcRange.Start != 2 {
		t.Errorf("expected the earlier-starting candidate to win, got start=%v", best.SrcRange.Start)
	}
}

func TestCandidateHeapEmptyPopReturnsFalse(t *testing.T) {
	h := newCandidateHeap()
	if _, ok := h.popBest(); ok {
		t.Error("expected popBest on an empty heap to return ok=false")
	}
}
