package validation_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"mangareel/internal/config"
	"mangareel/internal/media/ffprobe"
	"mangareel/internal/media/loudness"
	"mangareel/internal/services"
	"mangareel/internal/testsupport"
	"mangareel/internal/validation"
)

type fakeTools struct {
	info        ffprobe.VideoInfo
	db          float64
	measureErr  error
	audioStream bool
	probed      int
	measured    int
}

func (f *fakeTools) probe(context.Context, string, string) (ffprobe.VideoInfo, error) {
	f.probed++
	return f.info, nil
}

func (f *fakeTools) measure(context.Context, string, string) (loudness.Measurement, error) {
	f.measured++
	if f.measureErr != nil {
		return loudness.Measurement{}, f.measureErr
	}
	return loudness.Measurement{MeanDBFS: f.db, Samples: 1000}, nil
}

func (f *fakeTools) inspect(context.Context, string, string) (ffprobe.Result, error) {
	result := ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "video"}}}
	if f.audioStream {
		result.Streams = append(result.Streams, ffprobe.Stream{CodecType: "audio"})
	}
	return result, nil
}

func newValidator(cfg *config.Config, f *fakeTools) *validation.Validator {
	return validation.New(cfg, nil,
		validation.WithProbe(f.probe),
		validation.WithLoudness(f.measure),
		validation.WithInspect(f.inspect),
	)
}

func videoConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.Paths.FinalVideo, 1024)
	return cfg
}

func TestValidatePasses(t *testing.T) {
	cfg := videoConfig(t)
	f := &fakeTools{info: ffprobe.VideoInfo{Width: 1080, Height: 1920, Duration: 16.2}, db: -8.3}

	report, err := newValidator(cfg, f).Validate(context.Background(), cfg.Paths.FinalVideo)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !report.Passed() {
		t.Fatalf("expected passing report, got %+v", report)
	}
	if len(report.Checks) != 4 {
		t.Fatalf("expected 4 checks, got %+v", report.Checks)
	}
	summary := report.Summary()
	for _, want := range []string{"1080x1920", "16.2s", "-8.30 dB"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary %q missing %q", summary, want)
		}
	}
}

func TestValidateMissingFileSkipsTools(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	f := &fakeTools{}

	report, err := newValidator(cfg, f).Validate(context.Background(), cfg.Paths.FinalVideo)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), cfg.Paths.FinalVideo) {
		t.Fatalf("expected path in error, got %v", err)
	}
	if f.probed != 0 || f.measured != 0 {
		t.Fatalf("expected no tool calls, probe=%d measure=%d", f.probed, f.measured)
	}
	if report.Passed() {
		t.Fatal("report should not pass")
	}
}

func TestValidateShortCircuits(t *testing.T) {
	tests := []struct {
		name         string
		info         ffprobe.VideoInfo
		db           float64
		failedCheck  string
		wantMeasured int
		wantInError  []string
	}{
		{
			name:        "resolution",
			info:        ffprobe.VideoInfo{Width: 720, Height: 1280, Duration: 30},
			db:          -5,
			failedCheck: validation.CheckResolution,
			wantInError: []string{"1080x1920", "720x1280"},
		},
		{
			name:        "duration",
			info:        ffprobe.VideoInfo{Width: 1080, Height: 1920, Duration: 3},
			db:          -5,
			failedCheck: validation.CheckDuration,
			wantInError: []string{">= 5.0s", "3.0s"},
		},
		{
			name:         "loudness",
			info:         ffprobe.VideoInfo{Width: 1080, Height: 1920, Duration: 16.2},
			db:           -15,
			failedCheck:  validation.CheckLoudness,
			wantMeasured: 1,
			wantInError:  []string{"-10.00 dB", "-15.00 dB"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := videoConfig(t)
			f := &fakeTools{info: tt.info, db: tt.db}

			report, err := newValidator(cfg, f).Validate(context.Background(), cfg.Paths.FinalVideo)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			for _, want := range tt.wantInError {
				if !strings.Contains(err.Error(), want) {
					t.Fatalf("error %q missing %q", err, want)
				}
			}
			if f.measured != tt.wantMeasured {
				t.Fatalf("loudness measured %d times, want %d", f.measured, tt.wantMeasured)
			}
			last := report.Checks[len(report.Checks)-1]
			if last.Name != tt.failedCheck || last.Passed {
				t.Fatalf("expected failing %s check last, got %+v", tt.failedCheck, last)
			}
		})
	}
}

func TestValidateVideoWithoutAudioFails(t *testing.T) {
	cfg := videoConfig(t)
	f := &fakeTools{info: ffprobe.VideoInfo{Width: 1080, Height: 1920, Duration: 16.2}, measureErr: errors.New("exit status 1: Output file does not contain any stream")}

	_, err := newValidator(cfg, f).Validate(context.Background(), cfg.Paths.FinalVideo)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing audio, got %v", err)
	}
	if !strings.Contains(err.Error(), "no decodable audio") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestValidateDecoderFailureWithAudioIsToolError(t *testing.T) {
	cfg := videoConfig(t)
	f := &fakeTools{
		info:        ffprobe.VideoInfo{Width: 1080, Height: 1920, Duration: 16.2},
		measureErr:  errors.New("exit status 1: corrupt packet"),
		audioStream: true,
	}

	_, err := newValidator(cfg, f).Validate(context.Background(), cfg.Paths.FinalVideo)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestValidateSilentAudioFails(t *testing.T) {
	cfg := videoConfig(t)
	f := &fakeTools{info: ffprobe.VideoInfo{Width: 1080, Height: 1920, Duration: 16.2}, db: math.Inf(-1)}

	report, err := newValidator(cfg, f).Validate(context.Background(), cfg.Paths.FinalVideo)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if got := report.Checks[len(report.Checks)-1].Actual; got != "-inf dB" {
		t.Fatalf("expected -inf dB actual, got %q", got)
	}
}

func TestValidateWithStubBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubTools("1080,1920,16.2"))
	testsupport.WriteFile(t, cfg.Paths.FinalVideo, 64)

	report, err := validation.New(cfg, nil).Validate(context.Background(), cfg.Paths.FinalVideo)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if math.Abs(report.LoudnessDB-(-6.02)) > 0.01 {
		t.Fatalf("expected about -6.02 dB, got %.3f", report.LoudnessDB)
	}
	calls := testsupport.StubCalls(t, cfg)
	if len(calls) != 2 || !strings.HasPrefix(calls[0], "ffprobe ") || !strings.HasPrefix(calls[1], "ffmpeg ") {
		t.Fatalf("unexpected stub calls %v", calls)
	}
}

func TestReportRows(t *testing.T) {
	report := validation.Report{Checks: []validation.CheckResult{
		{Name: "exists", Expected: "file", Actual: "present", Passed: true},
		{Name: "resolution", Expected: "1080x1920", Actual: "720x1280", Passed: false},
	}}
	rows := report.Rows()
	if len(rows) != 2 || rows[1][3] != "FAIL" || rows[0][3] != "pass" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestValidateWithInstalledToolsIgnoresProbeWarnings(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubTools("1080,1920,16.2"))
	testsupport.WriteFile(t, cfg.Paths.FinalVideo, 1024)

	report, err := validation.New(cfg, nil).Validate(context.Background(), cfg.Paths.FinalVideo)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !report.Passed() {
		t.Fatalf("expected passing report, got %+v", report.Checks)
	}
	if report.Width != 1080 || report.Height != 1920 || report.Duration != 16.2 {
		t.Fatalf("unexpected probe result %+v", report)
	}
}

func TestSummaryRoundsDurationToOneDecimal(t *testing.T) {
	report := validation.Report{Width: 1080, Height: 1920, Duration: 15.033333, LoudnessDB: -8.3}
	if got, want := report.Summary(), "Validation passed: 1080x1920, 15.0s, -8.30 dB"; got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}
}
