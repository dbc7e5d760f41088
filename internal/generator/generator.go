package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"mangareel/internal/config"
	"mangareel/internal/logging"
	"mangareel/internal/narration"
	"mangareel/internal/services"
	"mangareel/internal/slideshow"
)

const stageName = "generate"

// Temporary artifact names, relative to the work directory.
const (
	ManifestName  = "image_list.txt"
	SlideshowName = "temp_video.mp4"
	AudioName     = "audio.mp3"
	SubtitlesName = "sub.srt"
)

// Result describes a completed generator run.
type Result struct {
	Output   string
	Frames   []string
	Plan     slideshow.Plan
	Elapsed  time.Duration
	Cleanups []string
}

// Generator orchestrates slideshow encoding, narration, and muxing.
type Generator struct {
	cfg    *config.Config
	logger *slog.Logger
	run    services.CommandRunner
	tools  func(context.Context) error
}

// Option customizes a Generator.
type Option func(*Generator)

// WithCommandRunner overrides how external tools are executed.
func WithCommandRunner(r services.CommandRunner) Option {
	return func(g *Generator) {
		if r != nil {
			g.run = r
		}
	}
}

// WithToolCheck installs a check run once the inputs are known to exist and
// before any external tool is started.
func WithToolCheck(fn func(context.Context) error) Option {
	return func(g *Generator) {
		g.tools = fn
	}
}

// New constructs a Generator.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Generator {
	g := &Generator{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "generator"),
		run:    services.RunCommand,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type artifacts struct {
	manifest  string
	slideshow string
	audio     string
	subtitles string
}

func (a artifacts) all() []string {
	return []string{a.manifest, a.slideshow, a.audio, a.subtitles}
}

// Run produces the final narrated video.
func (g *Generator) Run(ctx context.Context) (Result, error) {
	if g == nil || g.cfg == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stageName, "init", "generator not configured", nil)
	}
	logger := logging.WithContext(ctx, g.logger)
	started := time.Now()

	frames, err := ListFrames(g.cfg.Paths.ProcessedDir)
	if err != nil {
		return Result{}, err
	}
	scriptPath := g.cfg.Paths.ScriptFile
	if _, err := os.Stat(scriptPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, services.Wrap(services.ErrNotFound, stageName, "read script",
				fmt.Sprintf("narration script %s does not exist", scriptPath), nil)
		}
		return Result{}, services.Wrap(services.ErrConfiguration, stageName, "read script", scriptPath, err)
	}
	script, err := narration.ReadScript(scriptPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stageName, "read script", scriptPath, err)
	}
	if g.tools != nil {
		if err := g.tools(ctx); err != nil {
			return Result{}, err
		}
	}

	width, height, err := g.cfg.VideoSize()
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stageName, "resolution", "", err)
	}
	plan := slideshow.NewPlan(len(frames), g.cfg.Video.ImageSeconds, g.cfg.Video.FadeSeconds)

	workDir := g.cfg.Paths.WorkDir
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stageName, "create work dir", workDir, err)
	}
	tmp := artifacts{
		manifest:  filepath.Join(workDir, ManifestName),
		slideshow: filepath.Join(workDir, SlideshowName),
		audio:     filepath.Join(workDir, AudioName),
		subtitles: filepath.Join(workDir, SubtitlesName),
	}
	output := g.cfg.Paths.FinalVideo

	logger.Info("generating video",
		logging.Int("images", plan.Frames),
		logging.Float64("total_seconds", plan.TotalSeconds),
		logging.Float64("fade_out_start", plan.FadeOutStart),
		logging.String("output", output),
	)

	if err := g.produce(ctx, logger, frames, script, plan, width, height, tmp, output); err != nil {
		// The step failure is what the caller needs; leftovers are logged.
		if _, cleanupErr := Cleanup(tmp.all()...); cleanupErr != nil {
			logging.WarnWithContext(logger, "cleanup after failure incomplete", "cleanup_failed",
				logging.Error(cleanupErr),
				logging.String(logging.FieldErrorHint, "remove temporary files in "+workDir),
			)
		}
		return Result{}, err
	}

	removed, err := Cleanup(tmp.all()...)
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stageName, "cleanup", workDir, err)
	}

	result := Result{
		Output:   output,
		Frames:   frames,
		Plan:     plan,
		Elapsed:  time.Since(started),
		Cleanups: removed,
	}
	logger.Info("video generated",
		logging.String(logging.FieldEventType, "generate_complete"),
		logging.String("output", output),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (g *Generator) produce(ctx context.Context, logger *slog.Logger, frames []string, script string, plan slideshow.Plan, width, height int, tmp artifacts, output string) error {
	if err := slideshow.WriteManifest(tmp.manifest, frames, plan.ImageSeconds); err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "write manifest", tmp.manifest, err)
	}

	ffmpeg := g.cfg.Video.FFmpegBinary
	encodeArgs := slideshow.EncodeArgs(tmp.manifest, tmp.slideshow, plan, slideshow.EncodeOptions{
		Width:       width,
		Height:      height,
		FrameRate:   g.cfg.Video.FrameRate,
		Codec:       g.cfg.Video.Codec,
		PixelFormat: g.cfg.Video.PixelFormat,
		CRF:         g.cfg.Video.CRF,
	})
	logger.Debug("encoding slideshow", logging.String("filter", plan.Filter(width, height)))
	if err := g.run(ctx, ffmpeg, encodeArgs...); err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "encode slideshow", "ffmpeg failed", err)
	}

	tts := narration.NewEdgeTTS(g.cfg.Narration.Binary, g.cfg.Narration.Voice, g.logger)
	tts.WithCommandRunner(g.run)
	if err := tts.Synthesize(ctx, narration.Request{
		Text:          script,
		AudioPath:     tmp.audio,
		SubtitlesPath: tmp.subtitles,
	}); err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "synthesize narration", "edge-tts failed", err)
	}

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrConfiguration, stageName, "create output dir", dir, err)
		}
	}
	if err := g.run(ctx, ffmpeg, MuxArgs(tmp.slideshow, tmp.audio, output, g.cfg.Mux)...); err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "mux", "ffmpeg failed", err)
	}
	return nil
}

// MuxArgs returns the ffmpeg arguments combining the silent slideshow with the
// narration track. The video stream is copied and the output ends with the
// shorter input.
func MuxArgs(video, audio, output string, mux config.Mux) []string {
	return []string{
		"-y",
		"-i", video,
		"-i", audio,
		"-filter:a", "volume=" + strconv.FormatFloat(mux.Volume, 'f', -1, 64),
		"-c:v", "copy",
		"-c:a", mux.AudioCodec,
		"-b:a", mux.AudioBitrate,
		"-shortest",
		output,
	}
}

// ListFrames returns the processed PNG pages in dir sorted by name. The match
// is case-sensitive on the .png extension.
func ListFrames(dir string) ([]string, error) {
	frames, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "scan frames", dir, err)
	}
	if len(frames) == 0 {
		return nil, services.Wrap(services.ErrNotFound, stageName, "scan frames",
			fmt.Sprintf("no processed images found in %s", dir), nil)
	}
	sort.Strings(frames)
	return frames, nil
}

// Cleanup removes each path independently. Paths that do not exist are
// skipped. It returns the paths actually removed and the joined removal errors.
func Cleanup(paths ...string) ([]string, error) {
	var (
		removed []string
		errs    []error
	)
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		removed = append(removed, path)
	}
	return removed, errors.Join(errs...)
}
