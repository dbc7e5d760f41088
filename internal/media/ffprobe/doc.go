// Package ffprobe provides typed wrappers around ffprobe output.
//
// This package has no mangareel-specific dependencies.
//
// Key types:
//   - Result: parsed JSON output containing streams and format metadata
//   - VideoInfo: width, height, and duration of the first video stream
//
// Entry points:
//   - Inspect: executes ffprobe with JSON output and returns parsed Result
//   - ProbeVideo: executes ffprobe with CSV output for the first video stream
package ffprobe
