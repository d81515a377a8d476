// Package testutil holds collaborators shared by package tests.
package testutil

import (
	"context"
	"log/slog"
	"sync"

	"github.com/modoterra/svcpanel/pkg/core"
)

// Response is the scripted result of one command.
type Response struct {
	Stdout string
	Err    error
}

// FakeRunner is a core.Runner answering from a script keyed by the exact
// command string. Unscripted commands fail with exit code 127.
type FakeRunner struct {
	mu        sync.Mutex
	Programs  map[string]string
	Responses map[string]Response
	Executed  []string
	Launched  []string
	SpawnErr  error
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Programs:  map[string]string{},
		Responses: map[string]Response{},
	}
}

// Install makes program resolvable by Find.
func (f *FakeRunner) Install(programs ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range programs {
		f.Programs[p] = "/usr/bin/" + p
	}
	return f
}

// On scripts stdout for command.
func (f *FakeRunner) On(command, stdout string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[command] = Response{Stdout: stdout}
	return f
}

// Fail scripts a non-zero exit for command.
func (f *FakeRunner) Fail(command string, exitCode int, stderr string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[command] = Response{Err: &core.CommandError{Command: command, ExitCode: exitCode, Stderr: stderr}}
	return f
}

func (f *FakeRunner) Find(program string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Programs[program]
	return p, ok
}

func (f *FakeRunner) Execute(ctx context.Context, command string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Executed = append(f.Executed, command)
	if err := ctx.Err(); err != nil {
		return "", &core.CommandError{Command: command, ExitCode: -1, Err: err}
	}
	resp, ok := f.Responses[command]
	if !ok {
		return "", &core.CommandError{Command: command, ExitCode: 127, Stderr: "command not scripted"}
	}
	return resp.Stdout, resp.Err
}

func (f *FakeRunner) ExecuteAsync(_ context.Context, command string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SpawnErr != nil {
		return &core.SpawnError{Command: command, Err: f.SpawnErr}
	}
	f.Launched = append(f.Launched, command)
	return nil
}

// Calls returns a copy of the executed and launched commands.
func (f *FakeRunner) Calls() (executed, launched []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Executed...), append([]string(nil), f.Launched...)
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
