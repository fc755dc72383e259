// Package eval evaluates pkl configuration into typed profile structures.
package eval

import (
	"context"
	"fmt"
	"net/url"

	"github.com/apple/pkl-go/pkl"

	"github.com/worldforge-io/worldforge/internal/profile"
)

// Evaluator handles pkl evaluation for one project directory.
type Evaluator struct {
	projectDir string
}

// NewEvaluator returns an evaluator rooted at projectDir.
func NewEvaluator(projectDir string) *Evaluator {
	return &Evaluator{projectDir: projectDir}
}

// LoadProfile evaluates the profile entrypoint, with optional external
// properties, and validates the result.
func (e *Evaluator) LoadProfile(ctx context.Context, entryPoint string, properties map[string]string) (*profile.Profile, error) {
	u, err := url.Parse("file://" + e.projectDir + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse project directory URL: %w", err)
	}

	opts := []func(*pkl.EvaluatorOptions){pkl.PreconfiguredOptions}
	if len(properties) > 0 {
		opts = append(opts, func(o *pkl.EvaluatorOptions) {
			if o.Properties == nil {
				o.Properties = make(map[string]string)
			}
			for k, v := range properties {
				o.Properties[k] = v
			}
		})
	}

	evaluator, err := pkl.NewProjectEvaluator(ctx, u, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pkl evaluator: %w", err)
	}
	defer evaluator.Close()

	var p profile.Profile
	if err := evaluator.EvaluateModule(ctx, pkl.FileSource(entryPoint), &p); err != nil {
		return nil, fmt.Errorf("failed to evaluate profile: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadDeclaration evaluates a declaration file into its typed form.
func (e *Evaluator) LoadDeclaration(ctx context.Context, path string) (*profile.Declaration, error) {
	evaluator, err := pkl.NewEvaluator(ctx, pkl.PreconfiguredOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create pkl evaluator: %w", err)
	}
	defer evaluator.Close()

	var d profile.Declaration
	if err := evaluator.EvaluateModule(ctx, pkl.FileSource(path), &d); err != nil {
		return nil, fmt.Errorf("failed to evaluate declaration: %w", err)
	}

	return &d, nil
}
