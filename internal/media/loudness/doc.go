// Package loudness measures the average level of an audio track in dBFS.
//
// Audio is decoded by ffmpeg to signed 16-bit little-endian PCM and streamed
// into MeanDBFS, which computes the RMS across every sample of every channel
// and reports 20*log10(rms/32768). Silence yields negative infinity.
package loudness
