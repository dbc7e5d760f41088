package services

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes an external binary and returns its error, if any.
// Implementations must not write the tool's output to the console.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// RunCommand is the default CommandRunner. Combined stdout/stderr is captured
// and only surfaced inside the returned error.
func RunCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
