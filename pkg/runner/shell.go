// Package runner executes the shell commands issued by the service-manager adapters.
package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/modoterra/svcpanel/pkg/core"
)

const (
	defaultShell = "/bin/sh"
	// waitDelay bounds how long output copying may outlive a cancelled command.
	waitDelay = time.Second
)

// Shell runs commands through "sh -c" so that the quoted --format
// arguments of the container engines reach the binary intact.
type Shell struct {
	shell  string
	logger *slog.Logger
}

// New creates a Shell runner.
func New(logger *slog.Logger) *Shell {
	return &Shell{shell: defaultShell, logger: logger}
}

// Find resolves program on PATH.
func (s *Shell) Find(program string) (string, bool) {
	path, err := exec.LookPath(program)
	if err != nil {
		return "", false
	}
	return path, true
}

// Execute runs command and returns its stdout.
func (s *Shell) Execute(ctx context.Context, command string) (string, error) {
	return s.ExecuteInput(ctx, command, "")
}

// ExecuteInput runs command with stdin attached and returns its stdout.
func (s *Shell) ExecuteInput(ctx context.Context, command, stdin string) (string, error) {
	cmd := exec.CommandContext(ctx, s.shell, "-c", command)
	cmd.WaitDelay = waitDelay
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.logger.Debug("execute", "command", command)
	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return stdout.String(), &core.CommandError{
			Command:  command,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}
	return stdout.String(), nil
}

// ExecuteAsync starts command and returns as soon as it is spawned. The
// process is reaped in the background and its exit status logged. The
// caller's context only bounds the spawn; the command itself outlives it.
func (s *Shell) ExecuteAsync(ctx context.Context, command string) error {
	if err := ctx.Err(); err != nil {
		return &core.SpawnError{Command: command, Err: err}
	}
	cmd := exec.Command(s.shell, "-c", command)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return &core.SpawnError{Command: command, Err: err}
	}
	s.logger.Info("command started", "command", command, "pid", cmd.Process.Pid)

	go func() {
		if err := cmd.Wait(); err != nil {
			exitCode := -1
			if cmd.ProcessState != nil {
				exitCode = cmd.ProcessState.ExitCode()
			}
			s.logger.Error("command failed", "command", command,
				"exit_code", exitCode,
				"stderr", strings.TrimSpace(stderr.String()), "err", err)
			return
		}
		s.logger.Debug("command finished", "command", command)
	}()
	return nil
}
