package ffprobe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "16.2",
		},
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 16.2 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestDurationSecondsUnavailable(t *testing.T) {
	for _, raw := range []string{"", "N/A", "bad", "-1"} {
		result := Result{Format: Format{Duration: raw}}
		if got := result.DurationSeconds(); got != 0 {
			t.Fatalf("DurationSeconds(%q) = %v, want 0", raw, got)
		}
	}
}

func TestParseVideoCSV(t *testing.T) {
	info, err := ParseVideoCSV("1080,1920,16.200000\n")
	if err != nil {
		t.Fatalf("ParseVideoCSV returned error: %v", err)
	}
	if info.Width != 1080 || info.Height != 1920 || info.Duration != 16.2 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestParseVideoCSVRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "\n\n", "1080,1920", "1080,1920,N/A", "wide,1920,1.0"} {
		if _, err := ParseVideoCSV(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestProbeVideoRunsBinary(t *testing.T) {
	stub := filepath.Join(t.TempDir(), "ffprobe")
	script := "#!/bin/sh\necho '720,1280,9.5'\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	info, err := ProbeVideo(context.Background(), stub, "/tmp/video.mp4")
	if err != nil {
		t.Fatalf("ProbeVideo returned error: %v", err)
	}
	if info.Width != 720 || info.Height != 1280 || info.Duration != 9.5 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestProbeVideoEmptyPath(t *testing.T) {
	if _, err := ProbeVideo(context.Background(), "", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func writeStub(t *testing.T, script string) string {
	t.Helper()
	stub := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return stub
}

func TestProbeVideoIgnoresStderrDiagnostics(t *testing.T) {
	stub := writeStub(t, "#!/bin/sh\n"+
		"echo '[mov,mp4,m4a,3gp,3g2,mj2 @ 0x1] stream 1, offset 0x30: partial file' >&2\n"+
		"echo '1080,1920,16.2'\n")
	info, err := ProbeVideo(context.Background(), stub, "/tmp/video.mp4")
	if err != nil {
		t.Fatalf("ProbeVideo returned error: %v", err)
	}
	if info.Width != 1080 || info.Height != 1920 || info.Duration != 16.2 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestProbeVideoReportsStderrOnFailure(t *testing.T) {
	stub := writeStub(t, "#!/bin/sh\necho 'moov atom not found' >&2\nexit 1\n")
	_, err := ProbeVideo(context.Background(), stub, "/tmp/video.mp4")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "moov atom not found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestProbeVideoFallsBackToContainerDuration(t *testing.T) {
	stub := writeStub(t, "#!/bin/sh\n"+
		"case \"$*\" in\n"+
		"*json*) echo '{\"streams\":[{\"codec_type\":\"video\"}],\"format\":{\"duration\":\"15.5\"}}' ;;\n"+
		"*) echo '1080,1920,N/A' ;;\n"+
		"esac\n")
	info, err := ProbeVideo(context.Background(), stub, "/tmp/video.mp4")
	if err != nil {
		t.Fatalf("ProbeVideo returned error: %v", err)
	}
	if info.Width != 1080 || info.Height != 1920 || info.Duration != 15.5 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestProbeVideoWithoutAnyDuration(t *testing.T) {
	stub := writeStub(t, "#!/bin/sh\n"+
		"case \"$*\" in\n"+
		"*json*) echo '{\"format\":{\"duration\":\"N/A\"}}' ;;\n"+
		"*) echo '1080,1920,N/A' ;;\n"+
		"esac\n")
	if _, err := ProbeVideo(context.Background(), stub, "/tmp/video.mp4"); !errors.Is(err, ErrDurationUnavailable) {
		t.Fatalf("expected ErrDurationUnavailable, got %v", err)
	}
}

func TestParseVideoCSVKeepsGeometryWithoutDuration(t *testing.T) {
	info, err := ParseVideoCSV("1080,1920,N/A\n")
	if !errors.Is(err, ErrDurationUnavailable) {
		t.Fatalf("expected ErrDurationUnavailable, got %v", err)
	}
	if info.Width != 1080 || info.Height != 1920 {
		t.Fatalf("unexpected geometry: %+v", info)
	}
}
