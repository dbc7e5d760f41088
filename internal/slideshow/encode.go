package slideshow

import (
	"fmt"
	"math"
	"strconv"
)

// Plan captures slideshow timing derived from the frame count.
type Plan struct {
	Frames       int
	ImageSeconds float64
	FadeSeconds  float64
	TotalSeconds float64
	FadeOutStart float64
}

// NewPlan computes total length and fade-out start for frames pages.
func NewPlan(frames int, imageSeconds, fadeSeconds float64) Plan {
	total := float64(frames) * imageSeconds
	return Plan{
		Frames:       frames,
		ImageSeconds: imageSeconds,
		FadeSeconds:  fadeSeconds,
		TotalSeconds: total,
		FadeOutStart: total - fadeSeconds,
	}
}

// EncodeOptions holds encoder flags for the slideshow.
type EncodeOptions struct {
	Width       int
	Height      int
	FrameRate   int
	Codec       string
	PixelFormat string
	CRF         int
}

// Filter returns the -vf chain: fade in, fade out, then scale and pad to the
// target frame preserving aspect.
func (p Plan) Filter(width, height int) string {
	fade := FormatSeconds(p.FadeSeconds)
	return fmt.Sprintf(
		"fade=t=in:st=0:d=%s,fade=t=out:st=%s:d=%s,scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		fade, FormatSeconds(p.FadeOutStart), fade, width, height, width, height,
	)
}

// EncodeArgs returns the ffmpeg arguments that turn manifest into output.
func EncodeArgs(manifest, output string, plan Plan, opts EncodeOptions) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-vf", plan.Filter(opts.Width, opts.Height),
		"-r", strconv.Itoa(opts.FrameRate),
		"-c:v", opts.Codec,
		"-pix_fmt", opts.PixelFormat,
		"-crf", strconv.Itoa(opts.CRF),
		output,
	}
}

// FormatSeconds renders seconds with at most millisecond precision and no
// trailing zeros, e.g. 14 or 2.5.
func FormatSeconds(seconds float64) string {
	rounded := math.Round(seconds*1000) / 1000
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
