// Package skipfile reads and writes the JSON sidecar that records a video's
// chosen opening/ending intervals alongside the header checksum they were
// computed against.
package skipfile

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aksiksi/needle/pkg/needle"
)

// Ext is the conventional skip-file extension.
const Ext = ".needle.skip.json"

// PathFor returns the conventional sidecar path for a video file.
func PathFor(videoPath string) string {
	return videoPath + Ext
}

// Write atomically persists a SkipFile derived from result to path via a
// temp-sibling-then-rename, the same discipline the binary store uses.
func Write(path string, result needle.SearchResult) error {
	sf := needle.SkipFile{MD5: hex.EncodeToString(result.HeaderChecksum[:])}
	if result.Opening != nil {
		sf.Opening = &[2]float64{result.Opening.Start, result.Opening.End}
	}
	if result.Ending != nil {
		sf.Ending = &[2]float64{result.Ending.Start, result.Ending.End}
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return needle.Wrap(needle.Unknown, err, "skipfile: marshaling %s", path)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return needle.Wrap(needle.IOError, err, "skipfile: creating temp file for %s", path)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return needle.Wrap(needle.IOError, err, "skipfile: writing %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return needle.Wrap(needle.IOError, err, "skipfile: closing %s", tmpPath)
	}
	return os.Rename(tmpPath, path)
}

// Read loads the SkipFile at path, or (needle.FrameHashDataNotFound) if it
// doesn't exist.
func Read(path string) (needle.SkipFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return needle.SkipFile{}, needle.Wrap(needle.FrameHashDataNotFound, err, "skipfile: %s", path)
		}
		return needle.SkipFile{}, needle.Wrap(needle.IOError, err, "skipfile: reading %s", path)
	}
	var sf needle.SkipFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return needle.SkipFile{}, needle.Wrap(needle.InvalidFrameHashData, err, "skipfile: unmarshaling %s", path)
	}
	return sf, nil
}

// Valid reports whether sf applies to a video whose current header
// checksum is checksum: the sidecar is only trustworthy when its recorded
// MD5 matches the video's present-day header bytes exactly.
func Valid(sf needle.SkipFile, checksum [16]byte) bool {
	want := hex.EncodeToString(checksum[:])
	return sf.MD5 == want
}

// ToResult converts a validated SkipFile directly into a SearchResult,
// bypassing pairwise comparison entirely, as spec'd for Comparator Phase 1.
func ToResult(path string, sf needle.SkipFile, checksum [16]byte) needle.SearchResult {
	res := needle.SearchResult{Path: path, HeaderChecksum: checksum}
	if sf.Opening != nil {
		res.Opening = &needle.Interval{Start: sf.Opening[0], End: sf.Opening[1]}
	}
	if sf.Ending != nil {
		res.Ending = &needle.Interval{Start: sf.Ending[0], End: sf.Ending[1]}
	}
	return res
}
