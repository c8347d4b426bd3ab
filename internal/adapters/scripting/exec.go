// Package scripting provides the out-of-process automation bridge:
// a subprocess runner and an osascript runner built on top of it.
package scripting

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

// BridgeError describes a failed bridge or subprocess call.
type BridgeError struct {
	Op     string // "start", "exit", "timeout"
	Target string // binary name
	Stderr string
	Err    error
}

func (e *BridgeError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("bridge %s %s: %v: %s", e.Op, e.Target, e.Err, e.Stderr)
	}
	return fmt.Sprintf("bridge %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *BridgeError) Unwrap() error {
	return e.Err
}

// ExecRunner implements ports.CommandRunner with os/exec.
type ExecRunner struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewExecRunner creates a runner that kills commands after timeout.
func NewExecRunner(timeout time.Duration, logger *zap.Logger) *ExecRunner {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{timeout: timeout, logger: logger}
}

// Run executes cmd and returns its trimmed stdout.
func (r *ExecRunner) Run(ctx context.Context, cmd ports.Command) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	r.logger.Debug("Command finished",
		zap.String("name", cmd.Name),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))

	if err != nil {
		op := "exit"
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			op = "timeout"
			err = ctx.Err()
		case c.ProcessState == nil:
			op = "start"
		}
		return "", &BridgeError{Op: op, Target: cmd.Name, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}
