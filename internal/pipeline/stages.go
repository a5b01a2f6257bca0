package pipeline

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/agentstation/cssmap/pkg/errors"
	"github.com/agentstation/cssmap/pkg/logging"
)

// Step is one stage run as its own process.
type Step struct {
	Name string   // Display name, e.g. update
	Args []string // Arguments passed to the executable
}

// Runner runs a step to completion.
type Runner interface {
	Run(ctx context.Context, step Step) error
}

// ExecRunner runs steps as child processes of an executable, normally
// the running cssmap binary.
type ExecRunner struct {
	Executable string
	Stdout     io.Writer
	Stderr     io.Writer
	Env        []string
}

// NewExecRunner returns a runner for the current executable.
func NewExecRunner() (*ExecRunner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, errors.WrapResource("locate", "executable", "", err)
	}
	return &ExecRunner{Executable: exe, Stdout: os.Stdout, Stderr: os.Stderr}, nil
}

// Run implements Runner. A non-zero exit is returned as *errors.ProcessError.
func (r *ExecRunner) Run(ctx context.Context, step Step) error {
	cmd := exec.CommandContext(ctx, r.Executable, step.Args...) //nolint:gosec // runs our own binary
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	if err := cmd.Run(); err != nil {
		perr := errors.NewProcessError(step.Name, r.Executable+" "+strings.Join(step.Args, " "), "", err)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		return perr
	}
	return nil
}

// PrepareSteps are the steps of a full data preparation: fetch and
// annotate, then validate the result.
func PrepareSteps(extraArgs ...string) []Step {
	return []Step{
		{Name: "update", Args: append([]string{"update"}, extraArgs...)},
		{Name: "check hrefs", Args: append([]string{"check", "hrefs"}, extraArgs...)},
	}
}

// RunSteps runs steps in order and stops at the first failure.
func RunSteps(ctx context.Context, runner Runner, steps []Step) error {
	logger := logging.FromContext(ctx)
	for _, step := range steps {
		started := time.Now()
		logger.Info().Str("step", step.Name).Msg("Running step")

		if err := runner.Run(ctx, step); err != nil {
			logger.Error().Err(err).Str("step", step.Name).Msg("Step failed")
			return err
		}

		logger.Info().
			Str("step", step.Name).
			Dur("duration", time.Since(started)).
			Msg("Step completed successfully")
	}
	return nil
}
