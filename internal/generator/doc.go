// Package generator builds the narrated video from processed pages and the
// narration script.
//
// A run is strictly sequential: write the concat manifest, encode the silent
// slideshow with fades, synthesize narration with edge-tts, mux the narration
// into the slideshow, then remove every temporary artifact. All external tools
// go through a services.CommandRunner so tests can substitute a recorder.
package generator
