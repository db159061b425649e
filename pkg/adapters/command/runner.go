package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/beelot/tooling/pkg/apperr"
)

// Output holds the captured streams of a finished command.
type Output struct {
	Stdout string
	Stderr string
}

// Combined returns stdout and stderr joined, trimmed.
func (o Output) Combined() string {
	return strings.TrimSpace(strings.TrimSpace(o.Stdout) + "\n" + strings.TrimSpace(o.Stderr))
}

// Runner runs external commands.
//
//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -destination=mock_runner.gen.go -package=command . Runner
type Runner interface {
	// Run executes name with args and waits for it. A non-zero exit returns a
	// *apperr.CommandError along with whatever output was captured.
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// execRunner implements Runner with os/exec.
type execRunner struct {
	dir string
}

// NewExecRunner returns a Runner that starts processes in dir (the current directory when empty).
func NewExecRunner(dir string) Runner {
	return &execRunner{dir: dir}
}

// Run implements Runner.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		cmdErr := &apperr.CommandError{
			Command:  append([]string{name}, args...),
			Output:   out.Combined(),
			ExitCode: -1,
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return out, cmdErr
	}
	return out, nil
}

// String renders a command line for display.
func String(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = "\"" + strings.ReplaceAll(a, "\"", "\\\"") + "\""
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
