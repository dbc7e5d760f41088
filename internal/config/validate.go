package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePreprocess(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateMux(); err != nil {
		return err
	}
	if err := c.validateValidation(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePreprocess() error {
	if err := ensurePositiveMap(map[string]int{
		"preprocess.target_width":  c.Preprocess.TargetWidth,
		"preprocess.target_height": c.Preprocess.TargetHeight,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.ImageSeconds <= 0 {
		return errors.New("video.image_seconds must be positive")
	}
	if c.Video.FadeSeconds < 0 {
		return errors.New("video.fade_seconds must be >= 0")
	}
	if c.Video.FadeSeconds > c.Video.ImageSeconds {
		return errors.New("video.fade_seconds must not exceed video.image_seconds")
	}
	if c.Video.FrameRate <= 0 {
		return errors.New("video.frame_rate must be positive")
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return errors.New("video.crf must be between 0 and 51")
	}
	if _, _, err := c.VideoSize(); err != nil {
		return fmt.Errorf("video.resolution: %w", err)
	}
	return nil
}

func (c *Config) validateMux() error {
	if c.Mux.Volume <= 0 || math.IsNaN(c.Mux.Volume) || math.IsInf(c.Mux.Volume, 0) {
		return errors.New("mux.volume must be a positive number")
	}
	return nil
}

func (c *Config) validateValidation() error {
	if _, _, err := c.ExpectedSize(); err != nil {
		return fmt.Errorf("validation.resolution: %w", err)
	}
	if c.Validation.MinDurationSeconds < 0 {
		return errors.New("validation.min_duration_seconds must be >= 0")
	}
	if c.Validation.MinLoudnessDB > 0 {
		return errors.New("validation.min_loudness_db must be <= 0 (dBFS)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
