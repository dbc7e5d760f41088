// Package pipeline wraps stage execution with the work directory lock, a run
// identifier, and run history.
//
// Temporary artifact names are fixed, so two runs sharing a work directory
// would overwrite each other. The Runner takes an exclusive file lock for the
// duration of a stage (or of the whole sequence for RunAll) and fails fast if
// another process holds it.
package pipeline
