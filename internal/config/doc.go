// Package config loads, normalizes, and validates mangareel configuration data.
//
// It supplies defaults matching the stock pipeline (9:16 vertical output,
// three seconds per page, one second fades), expands user paths including
// tilde shortcuts, and reads TOML files. The Config type centralizes every knob
// the three stages need so each stage can be invoked with an alternate
// configuration in tests.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, parsed resolutions, and clear validation errors.
package config
