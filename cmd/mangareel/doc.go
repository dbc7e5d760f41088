// Command mangareel turns a folder of manga pages and a narration script into
// a narrated vertical video.
//
// Subcommands:
//   - preprocess: crop and resize raw pages into fixed-size PNGs
//   - generate: encode the slideshow, synthesize narration, mux, clean up
//   - validate: check resolution, duration, and loudness of the final video
//   - run: preprocess, generate, and validate in one invocation
//   - check: report missing tools and unusable directories
//   - history: list recent stage runs
//   - config: write a sample config or show the effective one
//
// Configuration is read from --config, ~/.config/mangareel/config.toml, or
// ./mangareel.toml, in that order. A .env file in the working directory is
// loaded first so proxy settings reach edge-tts.
package main
