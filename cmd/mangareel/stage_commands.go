package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"mangareel/internal/config"
	"mangareel/internal/deps"
	"mangareel/internal/generator"
	"mangareel/internal/pipeline"
	"mangareel/internal/preflight"
	"mangareel/internal/preprocess"
	"mangareel/internal/services"
	"mangareel/internal/slideshow"
	"mangareel/internal/validation"
)

func newPreprocessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preprocess",
		Short: "Crop and resize raw pages into fixed-size PNG frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(cfg *config.Config, logger *slog.Logger, runner *pipeline.Runner) error {
				stage := preprocessStage(cmd, cfg, logger)
				return runner.RunStage(cmd.Context(), stage)
			})
		},
	}
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Build the narrated video from processed pages and the script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(cfg *config.Config, logger *slog.Logger, runner *pipeline.Runner) error {
				toolCheck := generator.WithToolCheck(func(stageCtx context.Context) error {
					return requireTools(stageCtx, cfg, pipeline.StageGenerate)
				})
				return runner.RunStage(cmd.Context(), generateStage(cmd, cfg, logger, toolCheck))
			})
		},
	}
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [video]",
		Short: "Check resolution, duration, and loudness of the final video",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(cfg *config.Config, logger *slog.Logger, runner *pipeline.Runner) error {
				path := cfg.Paths.FinalVideo
				if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
					expanded, err := config.ExpandPath(strings.TrimSpace(args[0]))
					if err != nil {
						return err
					}
					path = expanded
				}
				return runner.RunStage(cmd.Context(), validateStage(cmd, cfg, logger, path))
			})
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Preprocess, generate, and validate in one go",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(cfg *config.Config, logger *slog.Logger, runner *pipeline.Runner) error {
				if err := requireTools(cmd.Context(), cfg, pipeline.StageGenerate, pipeline.StageValidate); err != nil {
					return err
				}
				return runner.RunAll(cmd.Context(),
					preprocessStage(cmd, cfg, logger),
					generateStage(cmd, cfg, logger),
					validateStage(cmd, cfg, logger, cfg.Paths.FinalVideo),
				)
			})
		},
	}
}

func preprocessStage(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) pipeline.Stage {
	p := preprocess.New(cfg, logger)
	if isTerminal(cmd.ErrOrStderr()) {
		p.SetProgressOutput(cmd.ErrOrStderr())
	}
	return pipeline.PreprocessStage(p, func(result preprocess.Result) {
		fmt.Fprintf(cmd.OutOrStdout(), "Processed %d images into %s\n", len(result.Outputs), result.Dir)
	})
}

func generateStage(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, opts ...generator.Option) pipeline.Stage {
	return pipeline.GenerateStage(generator.New(cfg, logger, opts...), func(result generator.Result) {
		fmt.Fprintf(cmd.OutOrStdout(), "Video generated: %s (%d images, %ss)\n",
			result.Output, result.Plan.Frames, slideshow.FormatSeconds(result.Plan.TotalSeconds))
	})
}

func validateStage(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, path string) pipeline.Stage {
	return pipeline.ValidateStage(validation.New(cfg, logger), path, func(report validation.Report) {
		printReport(cmd.OutOrStdout(), report)
	})
}

func printReport(out io.Writer, report validation.Report) {
	if len(report.Checks) > 0 {
		fmt.Fprintln(out, renderTable(out,
			[]string{"Check", "Expected", "Actual", "Result"},
			report.Rows(),
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
		))
	}
	if report.Passed() {
		fmt.Fprintln(out, report.Summary())
	}
}

// requireTools fails when a tool run by one of stages is not installed.
func requireTools(ctx context.Context, cfg *config.Config, stages ...string) error {
	missing := deps.Missing(preflight.CheckSystemDeps(ctx, cfg, stages...))
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, s := range missing {
		names = append(names, fmt.Sprintf("%s (%s)", s.Name, s.Detail))
	}
	return services.Wrap(services.ErrExternalTool, "preflight", "tools",
		fmt.Sprintf("missing required tools: %s; run `mangareel check` for details", strings.Join(names, ", ")), nil)
}
