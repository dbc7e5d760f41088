package config

const (
	defaultSourceDir     = "source/manga"
	defaultProcessedDir  = "source/manga/processed"
	defaultScriptFile    = "source/scripts/script.txt"
	defaultFinalVideo    = "output/final_video.mp4"
	defaultWorkDir       = "."
	defaultStateDir      = "~/.local/share/mangareel"
	defaultTargetWidth   = 1080
	defaultTargetHeight  = 1920
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultImageSeconds  = 3
	defaultFadeSeconds   = 1
	defaultResolution    = "1080x1920"
	defaultFrameRate     = 30
	defaultVideoCodec    = "libx264"
	defaultPixelFormat   = "yuv420p"
	defaultCRF           = 23
	defaultTTSBinary     = "edge-tts"
	defaultVoice         = "zh-CN-XiaoxiaoNeural"
	defaultVolume        = 1.0
	defaultAudioCodec    = "aac"
	defaultAudioBitrate  = "192k"
	defaultMinDuration   = 5
	defaultMinLoudnessDB = -10
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

func defaultExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".bmp"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:    defaultSourceDir,
			ProcessedDir: defaultProcessedDir,
			ScriptFile:   defaultScriptFile,
			FinalVideo:   defaultFinalVideo,
			WorkDir:      defaultWorkDir,
			StateDir:     defaultStateDir,
		},
		Preprocess: Preprocess{
			TargetWidth:  defaultTargetWidth,
			TargetHeight: defaultTargetHeight,
			Extensions:   defaultExtensions(),
		},
		Video: Video{
			FFmpegBinary: defaultFFmpegBinary,
			ImageSeconds: defaultImageSeconds,
			FadeSeconds:  defaultFadeSeconds,
			Resolution:   defaultResolution,
			FrameRate:    defaultFrameRate,
			Codec:        defaultVideoCodec,
			PixelFormat:  defaultPixelFormat,
			CRF:          defaultCRF,
		},
		Narration: Narration{
			Binary: defaultTTSBinary,
			Voice:  defaultVoice,
		},
		Mux: Mux{
			Volume:       defaultVolume,
			AudioCodec:   defaultAudioCodec,
			AudioBitrate: defaultAudioBitrate,
		},
		Validation: Validation{
			FFprobeBinary:      defaultFFprobeBinary,
			MinDurationSeconds: defaultMinDuration,
			MinLoudnessDB:      defaultMinLoudnessDB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
		},
	}
}
