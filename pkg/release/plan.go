package release

import (
	"context"
	"fmt"
	"strings"

	"github.com/beelot/tooling/pkg/adapters/command"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Step is one external command of a release.
type Step struct {
	Name string
	Args []string
	// ReadOnly steps are executed in dry run as well.
	ReadOnly bool
}

// Git returns a mutating git step.
func Git(args ...string) Step {
	return Step{Name: "git", Args: args}
}

func (s Step) String() string {
	return command.String(s.Name, s.Args...)
}

// Plan is an ordered list of steps.
type Plan []Step

// Executor runs plans, printing mutating steps instead of running them in dry run.
type Executor struct {
	runner command.Runner
	logger *otelzap.Logger
	dryRun bool
}

// NewExecutor creates an Executor.
func NewExecutor(runner command.Runner, logger *otelzap.Logger, dryRun bool) *Executor {
	return &Executor{
		runner: runner,
		logger: logger,
		dryRun: dryRun,
	}
}

// Run executes the plan in order and stops at the first failing step.
func (e *Executor) Run(ctx context.Context, plan Plan) error {
	logger := e.logger.Ctx(ctx)
	for _, step := range plan {
		line := step.String()
		if e.dryRun && !step.ReadOnly {
			logger.Info("DRYRUN " + line)
			continue
		}

		logger.Info(line)
		out, err := e.runner.Run(ctx, step.Name, step.Args...)
		if stdout := strings.TrimSpace(out.Stdout); stdout != "" {
			logger.Info(stdout)
		}
		if err != nil {
			if stderr := strings.TrimSpace(out.Stderr); stderr != "" {
				logger.Error(stderr)
			}
			logger.Error("Step failed", zap.String("command", line))
			return fmt.Errorf("step %q failed: %w", line, err)
		}
	}
	return nil
}
