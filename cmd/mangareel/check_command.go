package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mangareel/internal/deps"
	"mangareel/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report missing tools and unusable directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if ctx.configSeen {
				fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			} else {
				fmt.Fprintln(out, "Config: defaults (no config file found)")
			}

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			toolRows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				location := s.Path
				if !s.Available {
					location = s.Detail
				}
				toolRows = append(toolRows, []string{s.Name, yesNo(s.Available), location, s.Description})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Tool", "Found", "Location", "Purpose"}, toolRows, nil))

			results := preflight.RunAll(cmd.Context(), cfg)
			pathRows := make([][]string, 0, len(results))
			for _, r := range results {
				pathRows = append(pathRows, []string{r.Name, yesNo(r.Passed), r.Detail})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Path", "OK", "Detail"}, pathRows, nil))

			missing := deps.Missing(statuses)
			failed := preflight.Failed(results)
			if len(missing) > 0 || len(failed) > 0 {
				return fmt.Errorf("%d tool(s) missing, %d path check(s) failed", len(missing), len(failed))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
