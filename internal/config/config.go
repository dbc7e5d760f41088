package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input, output, and scratch locations.
type Paths struct {
	SourceDir    string `toml:"source_dir"`
	ProcessedDir string `toml:"processed_dir"`
	ScriptFile   string `toml:"script_file"`
	FinalVideo   string `toml:"final_video"`
	WorkDir      string `toml:"work_dir"`
	StateDir     string `toml:"state_dir"`
}

// Preprocess contains the crop/resize target for raw pages.
type Preprocess struct {
	TargetWidth  int      `toml:"target_width"`
	TargetHeight int      `toml:"target_height"`
	Extensions   []string `toml:"extensions"`
}

// Video contains slideshow timing and encoder settings.
type Video struct {
	FFmpegBinary string  `toml:"ffmpeg_binary"`
	ImageSeconds float64 `toml:"image_seconds"`
	FadeSeconds  float64 `toml:"fade_seconds"`
	Resolution   string  `toml:"resolution"`
	FrameRate    int     `toml:"frame_rate"`
	Codec        string  `toml:"codec"`
	PixelFormat  string  `toml:"pixel_format"`
	CRF          int     `toml:"crf"`
}

// Narration contains text-to-speech settings.
type Narration struct {
	Binary string `toml:"binary"`
	Voice  string `toml:"voice"`
}

// Mux contains the audio settings applied when narration is combined with video.
type Mux struct {
	Volume       float64 `toml:"volume"`
	AudioCodec   string  `toml:"audio_codec"`
	AudioBitrate string  `toml:"audio_bitrate"`
}

// Validation contains thresholds checked against the final video.
type Validation struct {
	FFprobeBinary      string  `toml:"ffprobe_binary"`
	Resolution         string  `toml:"resolution"`
	MinDurationSeconds float64 `toml:"min_duration_seconds"`
	MinLoudnessDB      float64 `toml:"min_loudness_db"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   bool   `toml:"file"`
}

// History contains configuration for the run history database.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for mangareel.
//
// Configuration sections by stage:
//   - Paths: source pages, processed pages, narration script, final video
//   - Preprocess: crop/resize target
//   - Video: slideshow timing and encoder flags
//   - Narration: edge-tts voice
//   - Mux: narration volume and audio encoding
//   - Validation: final video thresholds
//   - Logging, History: ambient settings
type Config struct {
	Paths      Paths      `toml:"paths"`
	Preprocess Preprocess `toml:"preprocess"`
	Video      Video      `toml:"video"`
	Narration  Narration  `toml:"narration"`
	Mux        Mux        `toml:"mux"`
	Validation Validation `toml:"validation"`
	Logging    Logging    `toml:"logging"`
	History    History    `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mangareel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s not found", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mangareel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories mangareel writes into. The
// processed directory is left alone so an empty source set writes nothing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// VideoSize returns the slideshow frame size parsed from video.resolution.
func (c *Config) VideoSize() (int, int, error) {
	return ParseResolution(c.Video.Resolution)
}

// ExpectedSize returns the resolution the validator requires.
func (c *Config) ExpectedSize() (int, int, error) {
	return ParseResolution(c.Validation.Resolution)
}

// ParseResolution parses a WIDTHxHEIGHT string such as "1080x1920".
func ParseResolution(value string) (int, int, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	w, h, ok := strings.Cut(trimmed, "x")
	if !ok {
		return 0, 0, fmt.Errorf("resolution %q: expected WIDTHxHEIGHT", value)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return 0, 0, fmt.Errorf("resolution %q: width: %w", value, err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return 0, 0, fmt.Errorf("resolution %q: height: %w", value, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("resolution %q: dimensions must be positive", value)
	}
	return width, height, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
