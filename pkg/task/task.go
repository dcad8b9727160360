// Package task runs named task bodies and follows the transitions they
// request until one of them completes or fails.
//
// A task body never throws a transition. It returns an Outcome: Complete
// ends the run, Redirect hands control to another task with the same
// Options, Fail ends the run with an error. The engine refuses to enter a
// task twice within one run, so every chain of transitions is finite.
package task

import (
	"context"
	"log/slog"

	"github.com/cperrin88/cavern/pkg/model"
)

// Name identifies a registered task.
type Name string

// Options are the parameters of one run. They are passed unchanged to every
// task entered during the run.
type Options struct {
	// CaveID is the record the run operates on.
	CaveID string
	// UploadID optionally pins the upload to select.
	UploadID   int64
	OnProgress model.ProgressFunc
	Logger     *slog.Logger
}

// Log returns the run logger, or one that discards everything.
func (o Options) Log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Progress returns the progress callback, or a no-op.
func (o Options) Progress() model.ProgressFunc {
	if o.OnProgress != nil {
		return o.OnProgress
	}
	return func(model.Progress) {}
}

// Func is a task body.
type Func func(ctx context.Context, opts Options) Outcome

// Spec is a registry entry.
type Spec struct {
	Name Name
	Run  Func
	// Targets lists every task Run may redirect to.
	Targets     []Name
	Description string
}

// Result describes a completed run.
type Result struct {
	// Task is the task that completed, which differs from the requested
	// one when the run was redirected.
	Task        Name
	Value       any
	Transitions []Transition
	RunID       string
}

// Redirected reports whether the run left the task it started in.
func (r Result) Redirected() bool {
	return len(r.Transitions) > 0
}
