package skipfile

import (
	"path/filepath"
	"testing"

	"github.com/aksiksi/needle/pkg/needle"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "episode.mkv"+Ext)

	checksum := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	result := needle.SearchResult{
		Path:           filepath.Join(dir, "episode.mkv"),
		Opening:        &needle.Interval{Start: 0, End: 90},
		Ending:         &needle.Interval{Start: 1200, End: 1260},
		HeaderChecksum: checksum,
	}

	if err := Write(path, result); err != nil {
		t.Fatalf("Write: %v", err)
	}

	sf, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if sf.Opening == nil || sf.Ending == nil {
		t.Fatal("expected both Opening and Ending to round-trip")
	}
	if *sf.Opening != [2]float64{0, 90} {
		t.Errorf("Opening = %v, want [0 90]", *sf.Opening)
	}
	if *sf.Ending != [2]float64{1200, 1260} {
		t.Errorf("Ending = %v, want [1200 1260]", *sf.Ending)
	}
	if !Valid(sf, checksum) {
		t.Error("expected sidecar to validate against the checksum it was written with")
	}
}

func TestWriteOmitsNilIntervals(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "episode.mkv"+Ext)

	result := needle.SearchResult{Path: "episode.mkv", HeaderChecksum: [16]byte{9}}
	if err := Write(path, result); err != nil {
		t.Fatalf("Write: %v", err)
	}

	sf, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if sf.Opening != nil || sf.Ending != nil {
		t.Errorf("expected both intervals nil, got opening=%v ending=%v", sf.Opening, sf.Ending)
	}
}

func TestValidRejectsChecksumMismatch(t *testing.T) {
	sf := needle.SkipFile{MD5: "0102030405060708090a0b0c0d0e0f10"}
	if Valid(sf, [16]byte{0xFF}) {
		t.Error("expected Valid to reject a mismatched checksum")
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing"+Ext))
	if needle.CodeOf(err) != needle.FrameHashDataNotFound {
		t.Errorf("code = %v, want FrameHashDataNotFound", needle.CodeOf(err))
	}
}

func TestToResult(t *testing.T) {
	checksum := [16]byte{7}
	sf := needle.SkipFile{
		Opening: &[2]float64{1, 2},
	}
	res := ToResult("path.mkv", sf, checksum)
	if res.Path != "path.mkv" {
		t.Errorf("Path = %q", res.Path)
	}
	if res.Opening == nil || *res.Opening != (needle.Interval{Start: 1, End: 2}) {
		t.Errorf("Opening = %v, want [1 2]", res.Opening)
	}
	if res.Ending != nil {
		t.Errorf("Ending = %v, want nil", res.Ending)
	}
	if res.HeaderChecksum != checksum {
		t.Errorf("HeaderChecksum = %v, want %v", res.HeaderChecksum, checksum)
	}
}
