// Package validation checks the final video against the configured
// resolution, minimum duration, and minimum loudness.
//
// Checks run in order and stop at the first failure: existence, probe,
// resolution, duration, loudness. The returned Report holds whatever was
// measured before the failing check.
package validation
