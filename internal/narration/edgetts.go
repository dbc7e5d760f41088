package narration

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"mangareel/internal/logging"
	"mangareel/internal/services"
)

const defaultBinary = "edge-tts"

// Request describes one synthesis call.
type Request struct {
	Text          string
	AudioPath     string
	SubtitlesPath string
}

// EdgeTTS drives the edge-tts command line.
type EdgeTTS struct {
	binary string
	voice  string
	logger *slog.Logger
	run    services.CommandRunner
}

// NewEdgeTTS constructs a synthesizer for voice.
func NewEdgeTTS(binary, voice string, logger *slog.Logger) *EdgeTTS {
	if strings.TrimSpace(binary) == "" {
		binary = defaultBinary
	}
	return &EdgeTTS{
		binary: binary,
		voice:  voice,
		logger: logging.NewComponentLogger(logger, "edge-tts"),
		run:    services.RunCommand,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (e *EdgeTTS) WithCommandRunner(r services.CommandRunner) {
	if e != nil && r != nil {
		e.run = r
	}
}

// Args returns the edge-tts arguments for req.
func (e *EdgeTTS) Args(req Request) []string {
	return []string{
		"--voice", e.voice,
		"--text", req.Text,
		"--write-media", req.AudioPath,
		"--write-subtitles", req.SubtitlesPath,
	}
}

// Synthesize runs edge-tts for req.
func (e *EdgeTTS) Synthesize(ctx context.Context, req Request) error {
	if e == nil {
		return errors.New("edge-tts synthesizer not initialized")
	}
	if strings.TrimSpace(req.AudioPath) == "" || strings.TrimSpace(req.SubtitlesPath) == "" {
		return errors.New("edge-tts: audio and subtitle paths are required")
	}
	logging.WithContext(ctx, e.logger).Debug("executing edge-tts",
		logging.String("voice", e.voice),
		logging.Int("text_runes", len([]rune(req.Text))),
		logging.String("audio_path", req.AudioPath),
	)
	return e.run(ctx, e.binary, e.Args(req)...)
}
