package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mangareel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "source", "manga")
	cfgVal.Paths.ProcessedDir = filepath.Join(base, "source", "manga", "processed")
	cfgVal.Paths.ScriptFile = filepath.Join(base, "source", "scripts", "script.txt")
	cfgVal.Paths.FinalVideo = filepath.Join(base, "output", "final_video.mp4")
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Validation.Resolution = cfgVal.Video.Resolution

	if err := os.MkdirAll(cfgVal.Paths.WorkDir, 0o755); err != nil {
		t.Fatalf("mkdir work dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTarget shrinks every resolution in the config to width x height so
// fixtures stay small.
func WithTarget(width, height int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Preprocess.TargetWidth = width
		b.cfg.Preprocess.TargetHeight = height
		res := resolution(width, height)
		b.cfg.Video.Resolution = res
		b.cfg.Validation.Resolution = res
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
