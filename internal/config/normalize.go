package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePreprocess()
	c.normalizeVideo()
	c.normalizeNarration()
	c.normalizeMux()
	c.normalizeValidation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.source_dir", &c.Paths.SourceDir, defaultSourceDir},
		{"paths.processed_dir", &c.Paths.ProcessedDir, defaultProcessedDir},
		{"paths.script_file", &c.Paths.ScriptFile, defaultScriptFile},
		{"paths.final_video", &c.Paths.FinalVideo, defaultFinalVideo},
		{"paths.work_dir", &c.Paths.WorkDir, defaultWorkDir},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizePreprocess() {
	if len(c.Preprocess.Extensions) == 0 {
		c.Preprocess.Extensions = defaultExtensions()
		return
	}
	exts := make([]string, 0, len(c.Preprocess.Extensions))
	seen := make(map[string]struct{}, len(c.Preprocess.Extensions))
	for _, ext := range c.Preprocess.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = defaultExtensions()
	}
	c.Preprocess.Extensions = exts
}

func (c *Config) normalizeVideo() {
	c.Video.FFmpegBinary = strings.TrimSpace(c.Video.FFmpegBinary)
	if c.Video.FFmpegBinary == "" {
		c.Video.FFmpegBinary = defaultFFmpegBinary
	}
	c.Video.Resolution = strings.ToLower(strings.TrimSpace(c.Video.Resolution))
	if c.Video.Resolution == "" {
		c.Video.Resolution = defaultResolution
	}
	c.Video.Codec = strings.TrimSpace(c.Video.Codec)
	if c.Video.Codec == "" {
		c.Video.Codec = defaultVideoCodec
	}
	c.Video.PixelFormat = strings.TrimSpace(c.Video.PixelFormat)
	if c.Video.PixelFormat == "" {
		c.Video.PixelFormat = defaultPixelFormat
	}
}

func (c *Config) normalizeNarration() {
	c.Narration.Binary = strings.TrimSpace(c.Narration.Binary)
	if c.Narration.Binary == "" {
		c.Narration.Binary = defaultTTSBinary
	}
	c.Narration.Voice = strings.TrimSpace(c.Narration.Voice)
	if c.Narration.Voice == "" {
		c.Narration.Voice = defaultVoice
	}
}

func (c *Config) normalizeMux() {
	c.Mux.AudioCodec = strings.TrimSpace(c.Mux.AudioCodec)
	if c.Mux.AudioCodec == "" {
		c.Mux.AudioCodec = defaultAudioCodec
	}
	c.Mux.AudioBitrate = strings.TrimSpace(c.Mux.AudioBitrate)
	if c.Mux.AudioBitrate == "" {
		c.Mux.AudioBitrate = defaultAudioBitrate
	}
}

func (c *Config) normalizeValidation() {
	c.Validation.FFprobeBinary = strings.TrimSpace(c.Validation.FFprobeBinary)
	if c.Validation.FFprobeBinary == "" {
		c.Validation.FFprobeBinary = defaultFFprobeBinary
	}
	c.Validation.Resolution = strings.ToLower(strings.TrimSpace(c.Validation.Resolution))
	if c.Validation.Resolution == "" {
		c.Validation.Resolution = c.Video.Resolution
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
