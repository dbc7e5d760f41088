package slideshow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BuildManifest renders a concat demuxer manifest for frames, each shown for
// seconds. Paths are made absolute.
func BuildManifest(frames []string, seconds float64) (string, error) {
	if len(frames) == 0 {
		return "", errors.New("manifest: no frames")
	}
	var b strings.Builder
	var last string
	for _, frame := range frames {
		abs, err := filepath.Abs(frame)
		if err != nil {
			return "", fmt.Errorf("manifest: resolve %s: %w", frame, err)
		}
		last = abs
		fmt.Fprintf(&b, "file '%s'\n", escapePath(abs))
		fmt.Fprintf(&b, "duration %s\n", FormatSeconds(seconds))
	}
	fmt.Fprintf(&b, "file '%s'\n", escapePath(last))
	return b.String(), nil
}

// WriteManifest writes the manifest for frames to path.
func WriteManifest(path string, frames []string, seconds float64) error {
	body, err := BuildManifest(frames, seconds)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", path, err)
	}
	return nil
}

// escapePath quotes a path for a single-quoted concat directive.
func escapePath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}
