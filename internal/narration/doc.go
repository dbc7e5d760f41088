// Package narration reads the narration script and synthesizes it to speech
// with the edge-tts command, which writes an audio file plus a subtitle file.
package narration
