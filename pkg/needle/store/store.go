// Package store implements the versioned binary container that persists a
// video's FrameHashes artifact to disk (the "Frame-Hash Store").
package store

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/aksiksi/needle/pkg/needle"
)

// magic identifies a needle frame-hash file.
var magic = [4]byte{'N', 'D', 'L', 'F'}

// Version1 is the only format version this store currently writes.
const Version1 uint16 = 1

// Ext is the file extension a FrameHashes artifact is conventionally
// persisted under, per <video>.needle.dat.
const Ext = ".needle.dat"

// PathFor returns the conventional sidecar path for a video file.
func PathFor(videoPath string) string {
	return videoPath + Ext
}

// Write atomically persists hashes to path: it writes to a temporary
// sibling file and renames it into place, so a reader never observes a
// partially-written artifact.
func Write(path string, hashes needle.FrameHashes) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return needle.Wrap(needle.IOError, err, "store: creating temp file for %s", path)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := bufio.NewWriter(tmp)
	if err := encode(w, hashes); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return needle.Wrap(needle.IOError, err, "store: flushing %s", tmpPath)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return needle.Wrap(needle.IOError, err, "store: syncing %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return needle.Wrap(needle.IOError, err, "store: closing %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return needle.Wrap(needle.IOError, err, "store: renaming %s to %s", tmpPath, path)
	}
	return nil
}

func encode(w io.Writer, hashes needle.FrameHashes) error {
	if err := binary.Write(w, binary.LittleEndian, magic); err != nil {
		return needle.Wrap(needle.IOError, err, "store: writing magic")
	}
	if err := binary.Write(w, binary.LittleEndian, Version1); err != nil {
		return needle.Wrap(needle.IOError, err, "store: writing version")
	}
	if err := binary.Write(w, binary.LittleEndian, hashes.HeaderChecksum); err != nil {
		return needle.Wrap(needle.IOError, err, "store: writing checksum")
	}
	if err := binary.Write(w, binary.LittleEndian, hashes.Duration); err != nil {
		return needle.Wrap(needle.IOError, err, "store: writing duration")
	}
	if err := writeRecords(w, hashes.Opening); err != nil {
		return err
	}
	if err := writeRecords(w, hashes.Ending); err != nil {
		return err
	}
	return nil
}

func writeRecords(w io.Writer, records []needle.FrameHash) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(records))); err != nil {
		return needle.Wrap(needle.IOError, err, "store: writing record count")
	}
	for _, r := range records {
		if err := binary.Write(w, binary.LittleEndian, r.Hash); err != nil {
			return needle.Wrap(needle.IOError, err, "store: writing hash")
		}
		if err := binary.Write(w, binary.LittleEndian, r.Time); err != nil {
			return needle.Wrap(needle.IOError, err, "store: writing time")
		}
	}
	return nil
}

// Read loads and validates a FrameHashes artifact from path.
func Read(path string) (needle.FrameHashes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return needle.FrameHashes{}, needle.Wrap(needle.FrameHashDataNotFound, err, "store: %s", path)
		}
		return needle.FrameHashes{}, needle.Wrap(needle.IOError, err, "store: reading %s", path)
	}
	return decode(bytes.NewReader(data), path)
}

func decode(r io.Reader, path string) (needle.FrameHashes, error) {
	var gotMagic [4]byte
	if err := binary.Read(r, binary.LittleEndian, &gotMagic); err != nil {
		return needle.FrameHashes{}, needle.Wrap(needle.InvalidFrameHashData, err, "store: %s truncated before magic", path)
	}
	if gotMagic != magic {
		return needle.FrameHashes{}, needle.Errorf(needle.InvalidFrameHashData, "store: %s has wrong magic %v", path, gotMagic)
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return needle.FrameHashes{}, needle.Wrap(needle.InvalidFrameHashData, err, "store: %s truncated before version", path)
	}
	if version != Version1 {
		return needle.FrameHashes{}, needle.Errorf(needle.FrameHashDataInvalidVersion, "store: %s has unknown version %d", path, version)
	}

	var hashes needle.FrameHashes
	if err := binary.Read(r, binary.LittleEndian, &hashes.HeaderChecksum); err != nil {
		return needle.FrameHashes{}, needle.Wrap(needle.InvalidFrameHashData, err, "store: %s truncated before checksum", path)
	}
	if err := binary.Read(r, binary.LittleEndian, &hashes.Duration); err != nil {
		return needle.FrameHashes{}, needle.Wrap(needle.InvalidFrameHashData, err, "store: %s truncated before duration", path)
	}

	opening, err := readRecords(r, path)
	if err != nil {
		return needle.FrameHashes{}, err
	}
	ending, err := readRecords(r, path)
	if err != nil {
		return needle.FrameHashes{}, err
	}
	hashes.Opening, hashes.Ending = opening, ending

	if !timeAscending(opening) || !timeAscending(ending) {
		return needle.FrameHashes{}, needle.Errorf(needle.InvalidFrameHashData, "store: %s hash sequence not time-ascending", path)
	}
	lastTime := 0.0
	if n := len(ending); n > 0 {
		lastTime = ending[n-1].Time
	} else if n := len(opening); n > 0 {
		lastTime = opening[n-1].Time
	}
	if hashes.Duration < lastTime {
		return needle.FrameHashes{}, needle.Errorf(needle.InvalidFrameHashData, "store: %s duration %.3f shorter than last hash time %.3f", path, hashes.Duration, lastTime)
	}

	return hashes, nil
}

func readRecords(r io.Reader, path string) ([]needle.FrameHash, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, needle.Wrap(needle.InvalidFrameHashData, err, "store: %s truncated before record count", path)
	}
	records := make([]needle.FrameHash, count)
	for i := range records {
		if err := binary.Read(r, binary.LittleEndian, &records[i].Hash); err != nil {
			return nil, needle.Wrap(needle.InvalidFrameHashData, err, "store: %s truncated at record %d", path, i)
		}
		if err := binary.Read(r, binary.LittleEndian, &records[i].Time); err != nil {
			return nil, needle.Wrap(needle.InvalidFrameHashData, err, "store: %s truncated at record %d", path, i)
		}
	}
	return records, nil
}

func timeAscending(records []needle.FrameHash) bool {
	for i := 1; i < len(records); i++ {
		if records[i].Time <= records[i-1].Time {
			return false
		}
	}
	return true
}

