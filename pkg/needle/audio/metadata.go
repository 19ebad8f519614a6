package audio

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"time"

	"github.com/aksiksi/needle/pkg/needle"
)

// streamInfo describes one audio stream as reported by ffprobe.
type streamInfo struct {
	CodecType     string `json:"codec_type"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
	BitsPerSample int    `json:"bits_per_sample"`
	Index         int    `json:"index"`
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []streamInfo `json:"streams"`
}

// mediaInfo is what probe() extracts from a container before any decoding
// starts: whether it has an audio stream at all, and the container's
// self-reported duration (0 if absent, in which case duration must be
// derived by draining the stream).
type mediaInfo struct {
	HasAudio        bool
	ReportedSeconds float64
}

// bestAudioStream returns the first audio stream ffprobe reports. probe uses
// it only to confirm that an audio stream exists; which stream is decoded is
// left to ffmpeg's own default stream selection in resampleToWav.
func bestAudioStream(streams []streamInfo) *streamInfo {
	for i := range streams {
		if streams[i].CodecType == "audio" {
			return &streams[i]
		}
	}
	return nil
}

func probe(ctx context.Context, path string) (*mediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, needle.Wrap(needle.IOError, err, "audio: ffprobe failed for %s", path)
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, needle.Wrap(needle.IOError, err, "audio: unparsable ffprobe output for %s", path)
	}

	stream := bestAudioStream(parsed.Streams)
	if stream == nil {
		return nil, needle.Errorf(needle.InvalidArgument, "audio: %s has no audio stream", path)
	}

	seconds, _ := strconv.ParseFloat(parsed.Format.Duration, 64)
	return &mediaInfo{HasAudio: true, ReportedSeconds: seconds}, nil
}
