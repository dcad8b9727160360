package task

import (
	"context"
	"log/slog"
)

// DefaultMaxResumes is used when NewDriver is given a negative bound.
const DefaultMaxResumes = 3

// Driver re-runs a task after a redirect resolved one of its missing
// preconditions. Each resumption is a fresh engine run, so the task
// re-evaluates all of its guards.
type Driver struct {
	engine     *Engine
	maxResumes int
	logger     *slog.Logger
}

// NewDriver creates a driver allowing at most maxResumes re-runs per Drive.
func NewDriver(e *Engine, maxResumes int) *Driver {
	if maxResumes < 0 {
		maxResumes = DefaultMaxResumes
	}
	return &Driver{engine: e, maxResumes: maxResumes, logger: e.logger}
}

// Drive runs name until it completes in name itself.
func (d *Driver) Drive(ctx context.Context, name Name, opts Options) (Result, error) {
	var transitions []Transition
	completed := make([]Name, 0, d.maxResumes+1)

	for resumes := 0; ; resumes++ {
		res, err := d.engine.Run(ctx, name, opts)
		if err != nil {
			return Result{}, err
		}
		transitions = append(transitions, res.Transitions...)
		if res.Task == name {
			res.Transitions = transitions
			return res, nil
		}

		completed = append(completed, res.Task)
		if resumes >= d.maxResumes {
			return Result{}, &EngineError{Kind: ErrResumeLimit, Task: name, Chain: append(completed, name)}
		}
		d.logger.Info("resuming task", "task", name, "after", res.Task, "run_id", res.RunID, "resume", resumes+1)
	}
}
