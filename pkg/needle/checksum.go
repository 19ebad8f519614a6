package needle

import (
	"crypto/md5"
	"io"
	"os"
)

// headerChecksumBytes is the number of leading bytes of a video file hashed
// to produce its header-identity checksum. Large enough to catch container
// header/metadata edits, small enough to stay cheap on multi-gigabyte files.
const headerChecksumBytes = 8192

// HeaderChecksum computes the 16-byte MD5 digest of the first
// headerChecksumBytes of path, used to detect whether a video's persisted
// artifacts (FrameHashes store, skip file) are stale.
func HeaderChecksum(path string) ([16]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return [16]byte{}, Wrap(IOError, err, "checksum: opening %s", path)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.CopyN(h, f, headerChecksumBytes); err != nil && err != io.EOF {
		return [16]byte{}, Wrap(IOError, err, "checksum: reading %s", path)
	}

	var sum [16]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
