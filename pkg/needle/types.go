package needle

// SampleRate is the canonical PCM sample rate, in Hz, that every PcmStream
// is resampled to before fingerprinting.
const SampleRate = 11025

// Channels is the canonical PCM channel count every PcmStream carries.
const Channels = 2

// PcmBlock is one block of canonical PCM audio: signed 16-bit, interleaved,
// SampleRate/Channels. StartTime is the presentation time, in seconds, of
// the block's first sample. Successive blocks from the same stream carry
// non-decreasing StartTime.
type PcmBlock struct {
	Samples   []int16
	StartTime float64
}

// FrameHash is a single 32-bit acoustic fingerprint sampled at Time seconds
// into the source audio, marking the start of the analysis window the hash
// summarizes.
type FrameHash struct {
	Hash uint32
	Time float64
}

// FrameHashes is the per-video fingerprint artifact produced by the
// Analyzer and consumed by the Comparator: an identity checksum for
// staleness detection, the total audio duration, and up to two
// time-ascending hash sequences (opening and ending search regions).
type FrameHashes struct {
	HeaderChecksum [16]byte
	Duration       float64
	Opening        []FrameHash
	Ending         []FrameHash
}

// Interval is an inclusive-exclusive time range [Start, End), in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Match is a contiguous run of Hamming-similar hashes found between a
// source video S and a destination video D.
type Match struct {
	SrcVideo   int
	DstVideo   int
	SrcRange   Interval
	DstRange   Interval
	Length     int
	HammingSum int
}

// Duration returns the length, in seconds, of the match's source interval.
func (m Match) Duration() float64 { return m.SrcRange.End - m.SrcRange.Start }

// Region identifies which search region (opening or ending) a Match or
// Candidate belongs to.
type Region int

const (
	Opening Region = iota
	Ending
)

func (r Region) String() string {
	if r == Opening {
		return "opening"
	}
	return "ending"
}

// Candidate is a Match promoted as the leading contender for a given source
// video and region, tagged with the peer video it was matched against.
type Candidate struct {
	Match
	Region Region
}

// SearchResult is the Comparator's final, per-video verdict: the chosen
// opening/ending intervals (nil when none was found) and the checksum of
// the video they were computed against.
type SearchResult struct {
	Path           string
	Opening        *Interval
	Ending         *Interval
	HeaderChecksum [16]byte
}

// SkipFile is the JSON sidecar schema persisted alongside a video, field
// names fixed by the on-disk format.
type SkipFile struct {
	Opening *[2]float64 `json:"opening"`
	Ending  *[2]float64 `json:"ending"`
	MD5     string      `json:"md5"`
}
