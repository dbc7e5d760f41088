package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	stdout, err := run(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(stdout, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	cleaned := strings.TrimSpace(r.Format.Duration)
	if cleaned == "" || cleaned == "N/A" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || parsed < 0 {
		return 0
	}
	return parsed
}

// run executes ffprobe and returns stdout. Diagnostics on stderr are kept out
// of the parsed output and only reported when the tool fails.
func run(ctx context.Context, binary string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// ErrDurationUnavailable is returned by ParseVideoCSV when the stream reports
// no duration. The returned VideoInfo still carries the geometry.
var ErrDurationUnavailable = errors.New("ffprobe probe: stream duration unavailable")

// VideoInfo holds the first video stream's geometry and duration.
type VideoInfo struct {
	Width    int
	Height   int
	Duration float64
}

// ProbeVideo queries width, height, and duration of the first video stream
// using ffprobe's CSV writer. When the stream carries no duration, the
// container duration is used instead.
func ProbeVideo(ctx context.Context, binary string, path string) (VideoInfo, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return VideoInfo{}, errors.New("ffprobe probe: empty path")
	}

	stdout, err := run(ctx, binary,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,duration",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe probe: %w", err)
	}
	info, err := ParseVideoCSV(string(stdout))
	if !errors.Is(err, ErrDurationUnavailable) {
		return info, err
	}
	result, inspectErr := Inspect(ctx, binary, path)
	if inspectErr != nil {
		return VideoInfo{}, errors.Join(err, inspectErr)
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return VideoInfo{}, err
	}
	info.Duration = duration
	return info, nil
}

// ParseVideoCSV parses "width,height,duration" as printed by ffprobe with
// -of csv=p=0. Only the first non-empty line is considered.
func ParseVideoCSV(output string) (VideoInfo, error) {
	line := ""
	for _, candidate := range strings.Split(output, "\n") {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			line = trimmed
			break
		}
	}
	if line == "" {
		return VideoInfo{}, errors.New("ffprobe probe: no video stream reported")
	}
	fields := strings.Split(line, ",")
	if len(fields) < 3 {
		return VideoInfo{}, fmt.Errorf("ffprobe probe: expected width,height,duration, got %q", line)
	}
	width, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe probe: width %q: %w", fields[0], err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe probe: height %q: %w", fields[1], err)
	}
	info := VideoInfo{Width: width, Height: height}
	rawDuration := strings.TrimSpace(fields[2])
	if rawDuration == "N/A" || rawDuration == "" {
		return info, ErrDurationUnavailable
	}
	duration, err := strconv.ParseFloat(rawDuration, 64)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe probe: duration %q: %w", fields[2], err)
	}
	info.Duration = duration
	return info, nil
}
