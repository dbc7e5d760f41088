// Package slideshow builds the silent slideshow video from processed pages.
//
// The ffmpeg concat demuxer reads a manifest listing each frame with its
// display duration. The demuxer ignores the duration of the final entry, so
// the last frame is listed once more without one; dropping that line shortens
// the video by a full page.
//
// EncodeArgs produces the exact ffmpeg argument list: fade in at zero, fade out
// ending at the total length, scale and pad to the target frame, fixed frame
// rate, codec, pixel format, and CRF.
package slideshow
