// Package preflight checks that the external tools are installed and that
// the configured input and output locations are usable before a run starts.
//
// The CLI "mangareel check" command renders every Result; the pipeline
// commands call RunAll and refuse to start when a required check fails.
package preflight
