package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"mangareel/internal/config"
	"mangareel/internal/logging"
	"mangareel/internal/media/ffprobe"
	"mangareel/internal/media/loudness"
	"mangareel/internal/services"
)

const stageName = "validate"

// ProbeFunc reports the geometry and duration of the first video stream.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.VideoInfo, error)

// LoudnessFunc measures the mean level of the audio in path.
type LoudnessFunc func(ctx context.Context, ffmpegBinary, path string) (loudness.Measurement, error)

// InspectFunc returns full stream metadata; used to explain loudness failures.
type InspectFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Validator checks a finished video.
type Validator struct {
	cfg     *config.Config
	logger  *slog.Logger
	probe   ProbeFunc
	measure LoudnessFunc
	inspect InspectFunc
}

// Option customizes a Validator.
type Option func(*Validator)

// WithProbe overrides the ffprobe call.
func WithProbe(fn ProbeFunc) Option {
	return func(v *Validator) {
		if fn != nil {
			v.probe = fn
		}
	}
}

// WithLoudness overrides the loudness meter.
func WithLoudness(fn LoudnessFunc) Option {
	return func(v *Validator) {
		if fn != nil {
			v.measure = fn
		}
	}
}

// WithInspect overrides the stream inspection used to diagnose loudness failures.
func WithInspect(fn InspectFunc) Option {
	return func(v *Validator) {
		if fn != nil {
			v.inspect = fn
		}
	}
}

// New constructs a Validator.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Validator {
	v := &Validator{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "validator"),
		probe:   ffprobe.ProbeVideo,
		measure: loudness.Measure,
		inspect: ffprobe.Inspect,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs every check against path, stopping at the first failure.
func (v *Validator) Validate(ctx context.Context, path string) (Report, error) {
	report := Report{Path: path}
	if v == nil || v.cfg == nil {
		return report, services.Wrap(services.ErrConfiguration, stageName, "init", "validator not configured", nil)
	}
	logger := logging.WithContext(ctx, v.logger)

	wantW, wantH, err := v.cfg.ExpectedSize()
	if err != nil {
		return report, services.Wrap(services.ErrConfiguration, stageName, CheckResolution, "", err)
	}
	minDuration := v.cfg.Validation.MinDurationSeconds
	minLoudness := v.cfg.Validation.MinLoudnessDB

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		report.record(CheckExists, "file", "missing", false)
		return report, services.Wrap(services.ErrNotFound, stageName, CheckExists,
			fmt.Sprintf("video file %s does not exist", path), nil)
	}
	report.record(CheckExists, "file", "present", true)

	probed, err := v.probe(ctx, v.cfg.Validation.FFprobeBinary, path)
	if err != nil {
		return report, services.Wrap(services.ErrExternalTool, stageName, "probe", "ffprobe failed", err)
	}
	report.Width, report.Height, report.Duration = probed.Width, probed.Height, probed.Duration
	logger.Debug("probed video",
		logging.Int("width", probed.Width),
		logging.Int("height", probed.Height),
		logging.Float64("duration_seconds", probed.Duration),
	)

	expectedRes := fmt.Sprintf("%dx%d", wantW, wantH)
	actualRes := fmt.Sprintf("%dx%d", probed.Width, probed.Height)
	if probed.Width != wantW || probed.Height != wantH {
		report.record(CheckResolution, expectedRes, actualRes, false)
		return report, mismatch(CheckResolution, expectedRes, actualRes)
	}
	report.record(CheckResolution, expectedRes, actualRes, true)

	expectedDur := ">= " + formatSeconds(minDuration) + "s"
	actualDur := formatSeconds(probed.Duration) + "s"
	if probed.Duration < minDuration {
		report.record(CheckDuration, expectedDur, actualDur, false)
		return report, mismatch(CheckDuration, expectedDur, actualDur)
	}
	report.record(CheckDuration, expectedDur, actualDur, true)

	expectedDB := ">= " + formatDB(minLoudness) + " dB"
	measured, err := v.measure(ctx, v.cfg.Video.FFmpegBinary, path)
	if err != nil {
		if v.missingAudio(ctx, path, err) {
			report.record(CheckLoudness, expectedDB, "no audio", false)
			return report, services.Wrap(services.ErrValidation, stageName, CheckLoudness, "video has no decodable audio", err)
		}
		return report, services.Wrap(services.ErrExternalTool, stageName, CheckLoudness, "ffmpeg decode failed", err)
	}
	report.LoudnessDB = measured.MeanDBFS
	actualDB := formatDB(measured.MeanDBFS) + " dB"
	if measured.MeanDBFS < minLoudness {
		report.record(CheckLoudness, expectedDB, actualDB, false)
		return report, mismatch(CheckLoudness, expectedDB, actualDB)
	}
	report.record(CheckLoudness, expectedDB, actualDB, true)

	logger.Info("validation passed",
		logging.String(logging.FieldEventType, "validate_complete"),
		logging.String("resolution", actualRes),
		logging.Float64("duration_seconds", probed.Duration),
		logging.Float64("loudness_db", measured.MeanDBFS),
	)
	return report, nil
}

// missingAudio decides whether a loudness failure means the file simply has
// no audio track.
func (v *Validator) missingAudio(ctx context.Context, path string, measureErr error) bool {
	if errors.Is(measureErr, loudness.ErrNoAudio) {
		return true
	}
	if v.inspect == nil {
		return false
	}
	result, err := v.inspect(ctx, v.cfg.Validation.FFprobeBinary, path)
	if err != nil {
		return false
	}
	return result.AudioStreamCount() == 0
}

func mismatch(check, expected, actual string) error {
	return services.Wrap(services.ErrValidation, stageName, check,
		fmt.Sprintf("expected %s, got %s", expected, actual), nil)
}
