package loudness

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strings"
)

// fullScale is the largest magnitude a signed 16-bit sample can take.
const fullScale = 32768.0

// ErrNoAudio is returned when no samples could be decoded.
var ErrNoAudio = errors.New("no audio samples decoded")

// Measurement summarizes a decoded track.
type Measurement struct {
	MeanDBFS float64
	Samples  int64
}

// MeanDBFS reads s16le PCM from r and returns the RMS level relative to full scale.
func MeanDBFS(r io.Reader) (Measurement, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var (
		sumSquares float64
		count      int64
		frame      [2]byte
	)
	for {
		_, err := io.ReadFull(reader, frame[:])
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return Measurement{}, fmt.Errorf("read pcm: %w", err)
		}
		sample := float64(int16(binary.LittleEndian.Uint16(frame[:])))
		sumSquares += sample * sample
		count++
	}
	if count == 0 {
		return Measurement{}, ErrNoAudio
	}
	rms := math.Sqrt(sumSquares / float64(count))
	if rms == 0 {
		return Measurement{MeanDBFS: math.Inf(-1), Samples: count}, nil
	}
	return Measurement{MeanDBFS: 20 * math.Log10(rms/fullScale), Samples: count}, nil
}

// Measure decodes the audio of path with ffmpeg and returns its mean level.
func Measure(ctx context.Context, ffmpegBinary, path string) (Measurement, error) {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-vn",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-",
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Measurement{}, fmt.Errorf("ffmpeg pcm decode: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Measurement{}, fmt.Errorf("ffmpeg pcm decode: %w", err)
	}
	measurement, readErr := MeanDBFS(stdout)
	if readErr != nil && !errors.Is(readErr, ErrNoAudio) {
		// Drain so ffmpeg is not blocked writing into a full pipe.
		_, _ = io.Copy(io.Discard, stdout)
	}
	if err := cmd.Wait(); err != nil {
		return Measurement{}, fmt.Errorf("ffmpeg pcm decode: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if readErr != nil {
		return Measurement{}, readErr
	}
	return measurement, nil
}
