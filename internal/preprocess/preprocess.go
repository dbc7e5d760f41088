package preprocess

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/schollz/progressbar/v3"

	"mangareel/internal/config"
	"mangareel/internal/logging"
	"mangareel/internal/services"
)

const stageName = "preprocess"

// Output pairs a source page with the PNG written for it.
type Output struct {
	Source string
	Path   string
}

// Result lists every processed page in processing order.
type Result struct {
	Dir     string
	Outputs []Output
}

// Preprocessor turns raw pages into fixed-size PNG frames.
type Preprocessor struct {
	cfg      *config.Config
	logger   *slog.Logger
	progress io.Writer
}

// New constructs a Preprocessor.
func New(cfg *config.Config, logger *slog.Logger) *Preprocessor {
	return &Preprocessor{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "preprocess"),
	}
}

// SetProgressOutput enables a progress bar rendered to w. Pass nil to disable.
func (p *Preprocessor) SetProgressOutput(w io.Writer) {
	if p != nil {
		p.progress = w
	}
}

// Run processes every supported image in the source directory.
func (p *Preprocessor) Run(ctx context.Context) (Result, error) {
	if p == nil || p.cfg == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stageName, "init", "preprocessor not configured", nil)
	}
	logger := logging.WithContext(ctx, p.logger)

	sourceDir := p.cfg.Paths.SourceDir
	processedDir := p.cfg.Paths.ProcessedDir
	width := p.cfg.Preprocess.TargetWidth
	height := p.cfg.Preprocess.TargetHeight

	sources, err := ListSources(sourceDir, p.cfg.Preprocess.Extensions)
	if err != nil {
		return Result{}, err
	}
	if len(sources) == 0 {
		return Result{}, services.Wrap(services.ErrNotFound, stageName, "scan sources",
			fmt.Sprintf("no images found in %s", sourceDir), nil)
	}

	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stageName, "create output dir", processedDir, err)
	}

	logger.Info("preprocessing pages",
		logging.Int("images", len(sources)),
		logging.String("source_dir", sourceDir),
		logging.String("processed_dir", processedDir),
		logging.String("target", fmt.Sprintf("%dx%d", width, height)),
	)

	bar := p.newProgressBar(len(sources))
	result := Result{Dir: processedDir, Outputs: make([]Output, 0, len(sources))}
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		target := OutputPath(processedDir, source)
		if err := processFile(source, target, width, height); err != nil {
			return result, err
		}
		result.Outputs = append(result.Outputs, Output{Source: source, Path: target})
		logger.Debug("page preprocessed", logging.String("source", source), logging.String("output", target))
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	logger.Info("preprocessing complete",
		logging.String(logging.FieldEventType, "preprocess_complete"),
		logging.Int("images", len(result.Outputs)),
		logging.String("processed_dir", processedDir),
	)
	return result, nil
}

func (p *Preprocessor) newProgressBar(total int) *progressbar.ProgressBar {
	if p.progress == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.progress),
		progressbar.OptionSetDescription("preprocessing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
}

// ListSources returns the files in dir whose extension (case-insensitive) is
// one of exts, sorted by path. Subdirectories are ignored.
func ListSources(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, stageName, "scan sources",
				fmt.Sprintf("source directory %s does not exist", dir), nil)
		}
		return nil, services.Wrap(services.ErrConfiguration, stageName, "scan sources", dir, err)
	}
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	var sources []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		sources = append(sources, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(sources)
	return sources, nil
}

// OutputPath returns <dir>/<stem>.png for source.
func OutputPath(dir, source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+".png")
}

func processFile(source, target string, width, height int) error {
	img, err := imaging.Open(source)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "decode", source, err)
	}
	out := ProcessImage(img, width, height)
	if err := imaging.Save(out, target, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "encode", target, err)
	}
	return nil
}
