package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// CheckSox reports whether sox is in PATH. The lookup runs once.
var CheckSox = sync.OnceValue(func() bool {
	_, err := exec.LookPath("sox")
	return err == nil
})

// transcode converts inputPath to a 16 kHz mono WAV with sox so containers
// beep cannot read (m4a, webm, opus, amr, ...) still reach the decoder.
//
// Returns the path to a temporary WAV file and a cleanup function.
func transcode(ctx context.Context, inputPath string) (string, func(), error) {
	noop := func() {}

	tmp, err := os.CreateTemp("", "moodscribe-transcode-*.wav")
	if err != nil {
		return "", noop, fmt.Errorf("create temp file: %w", err)
	}
	outPath := tmp.Name()
	tmp.Close()

	cmd := exec.CommandContext(ctx, "sox",
		inputPath, outPath,
		"rate", "16000",
		"channels", "1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// Clean up partial output
		os.Remove(outPath)
		return "", noop, fmt.Errorf("sox transcode: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	cleanup := func() {
		os.Remove(outPath)
	}
	return outPath, cleanup, nil
}
