package pipeline

import (
	"context"

	"mangareel/internal/generator"
	"mangareel/internal/preprocess"
	"mangareel/internal/validation"
)

// Stage names.
const (
	StagePreprocess = "preprocess"
	StageGenerate   = "generate"
	StageValidate   = "validate"
)

// Stage is one unit of pipeline work. Execute returns the path of the
// artifact it produced, if any.
type Stage struct {
	Name    string
	Execute func(ctx context.Context) (string, error)
}

// PreprocessStage adapts a Preprocessor.
func PreprocessStage(p *preprocess.Preprocessor, onResult func(preprocess.Result)) Stage {
	return Stage{
		Name: StagePreprocess,
		Execute: func(ctx context.Context) (string, error) {
			result, err := p.Run(ctx)
			if err != nil {
				return "", err
			}
			if onResult != nil {
				onResult(result)
			}
			return result.Dir, nil
		},
	}
}

// GenerateStage adapts a Generator.
func GenerateStage(g *generator.Generator, onResult func(generator.Result)) Stage {
	return Stage{
		Name: StageGenerate,
		Execute: func(ctx context.Context) (string, error) {
			result, err := g.Run(ctx)
			if err != nil {
				return "", err
			}
			if onResult != nil {
				onResult(result)
			}
			return result.Output, nil
		},
	}
}

// ValidateStage adapts a Validator for path. onReport receives the report
// even when validation fails so partial results can be shown.
func ValidateStage(v *validation.Validator, path string, onReport func(validation.Report)) Stage {
	return Stage{
		Name: StageValidate,
		Execute: func(ctx context.Context) (string, error) {
			report, err := v.Validate(ctx, path)
			if onReport != nil {
				onReport(report)
			}
			if err != nil {
				return "", err
			}
			return path, nil
		},
	}
}
