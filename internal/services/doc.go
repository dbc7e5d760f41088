// Package services defines shared utilities consumed by the pipeline stages
// and their external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into missing inputs, tool failures, and validation rejections.
//   - A CommandRunner abstraction so ffmpeg, ffprobe, and edge-tts
//     invocations can be replaced in tests.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
