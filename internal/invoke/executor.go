package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a command when the executor was built without one.
const DefaultTimeout = 2 * time.Minute

// MaxArgs is the largest argument list an executor will pass to a command.
const MaxArgs = 32

// WaitDelay bounds how long Run waits for output pipes after the command was
// killed. Grandchildren that inherited stdout or stderr would otherwise keep
// Run blocked past the deadline.
const WaitDelay = time.Second

// ErrTooManyArgs is returned when an argument list exceeds MaxArgs.
var ErrTooManyArgs = errors.New("invoke: too many arguments")

// CommandRunner is the interface for running commands.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// ExecCommandRunner uses os/exec.
type ExecCommandRunner struct{}

// Run runs a command.
func (ExecCommandRunner) Run(ctx context.Context, dir, name string, args []string, stdin io.Reader) (stdout, stderr []byte, err error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = stdin
	cmd.WaitDelay = WaitDelay
	killGroup(cmd)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// Executor runs one external command with a bounded timeout.
type Executor struct {
	runner  CommandRunner
	name    string
	dir     string
	timeout time.Duration
}

// NewExecutor creates an executor for the named binary. The binary is looked
// up in PATH at execution time, so a missing tool surfaces as a run error.
func NewExecutor(name string, timeout time.Duration) *Executor {
	return NewExecutorWithRunner(name, timeout, ExecCommandRunner{})
}

// NewExecutorWithRunner creates an executor with a custom runner.
func NewExecutorWithRunner(name string, timeout time.Duration, runner CommandRunner) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Executor{
		runner:  runner,
		name:    name,
		timeout: timeout,
	}
}

// WithDir returns a copy of the executor that runs commands in dir.
func (e *Executor) WithDir(dir string) *Executor {
	cp := *e
	cp.dir = dir
	return &cp
}

// Name returns the binary the executor runs.
func (e *Executor) Name() string {
	return e.name
}

// Timeout returns the per-command timeout.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Execute runs the command and returns output.
func (e *Executor) Execute(ctx context.Context, args []string, stdin io.Reader) (stdout, stderr []byte, err error) {
	if len(args) > MaxArgs {
		return nil, nil, fmt.Errorf("%w: %d > %d", ErrTooManyArgs, len(args), MaxArgs)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	stdout, stderr, err = e.runner.Run(ctx, e.dir, e.name, args, stdin)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return stdout, stderr, fmt.Errorf("%s timed out after %v: %w", e.name, e.timeout, err)
	}

	return stdout, stderr, err
}
