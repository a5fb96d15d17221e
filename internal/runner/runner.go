// Package runner executes the external document tools (pdfinfo, djvutxt,
// ImageMagick and friends) and returns their exit status and captured output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/phuslu/log"
)

// ErrToolFailure wraps every failed invocation: missing binary, non-zero exit or timeout.
var ErrToolFailure = errors.New("external tool failed")

const maxLoggedStderr = 8 << 10

// Result is the structured outcome of one invocation.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// OK reports a zero exit status.
func (r *Result) OK() bool {
	return r != nil && r.ExitCode == 0
}

// Runner lets components stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

// ExecRunner runs commands as child processes with a per-invocation timeout.
type ExecRunner struct {
	timeout time.Duration
	logger  *log.Logger
}

// NewExecRunner creates a runner. A non-positive timeout disables the limit.
func NewExecRunner(timeout time.Duration, logger *log.Logger) *ExecRunner {
	return &ExecRunner{timeout: timeout, logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if result.ExitCode == 0 {
			result.ExitCode = -1
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %s: %w", ErrToolFailure, name, ctxErr)
		} else {
			err = fmt.Errorf("%w: %s: %w", ErrToolFailure, name, err)
		}
		r.logger.Warn().
			Str("cmd", name).
			Str("args", strings.Join(args, " ")).
			Int("exit_code", result.ExitCode).
			Dur("duration", result.Duration).
			Str("stderr", truncate(stderr.String(), maxLoggedStderr)).
			Err(err).
			Msg("exec failed")
		return result, err
	}

	r.logger.Debug().
		Str("cmd", name).
		Str("args", strings.Join(args, " ")).
		Dur("duration", result.Duration).
		Int("stdout_bytes", stdout.Len()).
		Msg("exec ok")
	return result, nil
}

// LookPath resolves a tool binary on PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
