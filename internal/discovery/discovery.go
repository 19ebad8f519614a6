// Package discovery is a thin filesystem-walking collaborator for locating
// candidate video files. It sits outside the core engine (spec's audio
// pipeline never walks directories itself) and exists only to give the CLI
// front-end something to call.
package discovery

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
)

var videoExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".mov": true,
	".webm": true, ".m4v": true, ".ts": true,
}

// FindVideoFiles walks paths (recursing into directories when recurse is
// true) and returns every file found there with a recognized video
// extension; a path that names a file directly is kept whatever its
// extension. When
// requireAudio is true, each candidate is additionally probed with ffprobe
// to confirm it actually carries an audio stream, which is slower but
// avoids handing the Analyzer a file with nothing to fingerprint.
func FindVideoFiles(ctx context.Context, paths []string, recurse, requireAudio bool) ([]string, error) {
	var found []string

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			found = append(found, root)
			continue
		}

		walkErr := filepath.Walk(root, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				if p != root && !recurse {
					return filepath.SkipDir
				}
				return nil
			}
			if videoExtensions[filepath.Ext(p)] {
				found = append(found, p)
			}
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}

	if !requireAudio {
		return found, nil
	}

	audible := found[:0]
	for _, p := range found {
		if hasAudioStream(ctx, p) {
			audible = append(audible, p)
		}
	}
	return audible, nil
}

func hasAudioStream(ctx context.Context, path string) bool {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=index",
		"-of", "csv=p=0",
		path,
	)
	out, err := cmd.Output()
	return err == nil && len(out) > 0
}
