package audio

import (
	"os"
	"path/filepath"
)

// ResolveFile finds an audio file given a user-supplied path and the
// configured audio directory.
// Priority: 1) path as given  2) audioDir/path for relative paths  3) audioDir/basename
// Returns path unchanged when nothing matches so the loader reports the IO error.
func ResolveFile(audioDir, path string) string {
	if path == "" {
		return ""
	}

	// 1) As given (absolute, or relative to the working directory)
	if _, err := os.Stat(path); err == nil {
		return path
	}

	if audioDir == "" {
		return path
	}

	// 2) Relative to AUDIO_DIR
	if !filepath.IsAbs(path) {
		full := filepath.Join(audioDir, path)
		if _, err := os.Stat(full); err == nil {
			return full
		}
	}

	// 3) Basename under AUDIO_DIR (e.g. a path copied from another machine)
	full := filepath.Join(audioDir, filepath.Base(path))
	if _, err := os.Stat(full); err == nil {
		return full
	}

	return path
}
