package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"github.com/aksiksi/needle/pkg/needle"
)

// blockFrames is the number of interleaved sample frames read from the
// decoded WAV per NextPacket call.
const blockFrames = 4096

// Reader decodes one media container's audio into canonical PCM
// (needle.SampleRate Hz, needle.Channels channels, s16le). It owns the
// decoder and the temporary resampled WAV file backing it; call Close to
// release both deterministically.
type Reader struct {
	file     *os.File
	dec      *wav.Decoder
	tmpPath  string
	sentPCM  int64 // total samples (per channel) yielded so far
	reported float64
	closed   bool
}

// Open runs ffmpeg/ffprobe against path, selects its best audio stream, and
// resamples it to canonical PCM in a temporary file under os.TempDir(). The caller
// must Close the returned Reader.
func Open(ctx context.Context, path string) (*Reader, error) {
	info, err := probe(ctx, path)
	if err != nil {
		return nil, err
	}
	if !info.HasAudio {
		return nil, needle.Errorf(needle.InvalidArgument, "audio: no audio stream in %s", path)
	}

	tmpPath, err := resampleToWav(ctx, path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, needle.Wrap(needle.IOError, err, "audio: opening resampled PCM for %s", path)
	}
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		os.Remove(tmpPath)
		return nil, needle.Errorf(needle.InvalidArgument, "audio: ffmpeg produced an invalid WAV for %s", path)
	}
	dec.ReadInfo()

	reported := info.ReportedSeconds
	if d, derr := dec.Duration(); derr == nil && d > 0 {
		reported = d.Seconds()
	}

	return &Reader{
		file:     f,
		dec:      dec,
		tmpPath:  tmpPath,
		reported: reported,
	}, nil
}

func resampleToWav(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	tmpDir := os.TempDir()
	tmpPath := filepath.Join(tmpDir, fmt.Sprintf("needle-%s.wav", uuid.NewString()))

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-v", "quiet",
		"-i", path,
		"-ac", fmt.Sprintf("%d", needle.Channels),
		"-ar", fmt.Sprintf("%d", needle.SampleRate),
		"-c:a", "pcm_s16le",
		"-f", "wav",
		tmpPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(tmpPath)
		if ctx.Err() != nil {
			return "", needle.Wrap(needle.IOError, ctx.Err(), "audio: ffmpeg timed out decoding %s", path)
		}
		return "", needle.Wrap(needle.IOError, err, "audio: ffmpeg failed decoding %s: %s", path, out)
	}
	return tmpPath, nil
}

// NextPacket decodes the next block of canonical PCM. It returns ok=false
// once the stream is exhausted.
func (r *Reader) NextPacket() (block needle.PcmBlock, ok bool, err error) {
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: needle.Channels, SampleRate: needle.SampleRate},
		Data:   make([]int, blockFrames*needle.Channels),
	}
	n, err := r.dec.PCMBuffer(buf)
	if err != nil {
		return needle.PcmBlock{}, false, needle.Wrap(needle.IOError, err, "audio: decode failed")
	}
	if n == 0 {
		return needle.PcmBlock{}, false, nil
	}

	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(buf.Data[i])
	}

	startTime := float64(r.sentPCM) / float64(needle.SampleRate)
	r.sentPCM += int64(n / needle.Channels)

	return needle.PcmBlock{Samples: samples, StartTime: startTime}, true, nil
}

// Duration reports the audio duration in seconds. It prefers the
// container's self-reported duration; if that's absent (zero), the caller
// must have drained the stream to EndOfStream first, at which point the
// total decoded sample count is authoritative.
func (r *Reader) Duration() float64 {
	if r.reported > 0 {
		return r.reported
	}
	return float64(r.sentPCM) / float64(needle.SampleRate)
}

// Close releases the decoder and removes the temporary resampled file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.file.Close()
	os.Remove(r.tmpPath)
	return err
}
