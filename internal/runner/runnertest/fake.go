// Package runnertest provides a scripted runner for tests that must not spawn real tools.
package runnertest

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/mrlokans/docshelf/internal/runner"
)

// Handler produces the outcome for one invocation of a tool.
type Handler func(args []string) (*runner.Result, error)

type Call struct {
	Name string
	Args []string
}

// Fake dispatches invocations to handlers registered per tool name. Unregistered
// tools behave as if the binary were missing.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

func NewFake() *Fake {
	return &Fake{handlers: make(map[string]Handler)}
}

// On registers the handler for name.
func (f *Fake) On(name string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[name] = h
	return f
}

// Stdout registers a tool that succeeds printing out.
func (f *Fake) Stdout(name, out string) *Fake {
	return f.On(name, func([]string) (*runner.Result, error) {
		return &runner.Result{Stdout: []byte(out)}, nil
	})
}

// Fail registers a tool that exits with code 1.
func (f *Fake) Fail(name string) *Fake {
	return f.On(name, func([]string) (*runner.Result, error) {
		return &runner.Result{ExitCode: 1}, fmt.Errorf("%w: %s: exit status 1", runner.ErrToolFailure, name)
	})
}

func (f *Fake) Run(ctx context.Context, name string, args ...string) (*runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...)})
	h, ok := f.handlers[name]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &runner.Result{ExitCode: -1}, fmt.Errorf("%w: %s: %w", runner.ErrToolFailure, name, err)
	}
	if !ok {
		return &runner.Result{ExitCode: -1}, fmt.Errorf("%w: %s: %w", runner.ErrToolFailure, name, exec.ErrNotFound)
	}
	return h(args)
}

// Calls returns every recorded invocation.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns how many times name was invoked.
func (f *Fake) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

var _ runner.Runner = (*Fake)(nil)
