package task

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownTask is the kind of errors about names missing from the registry.
	ErrUnknownTask = errors.New("unknown task")
	// ErrTransitionLoop is the kind of errors about a run re-entering a task.
	ErrTransitionLoop = errors.New("transition loop")
	// ErrResumeLimit is returned by Driver when a task keeps needing side tasks.
	ErrResumeLimit = errors.New("resume limit exceeded")

	// ErrNilFailure replaces the error of Fail(nil).
	ErrNilFailure = errors.New("task failed without an error")
	// ErrInvalidOutcome is returned for a zero Outcome.
	ErrInvalidOutcome = errors.New("task returned no outcome")

	// ErrDuplicateTask is returned when registering a name twice.
	ErrDuplicateTask = errors.New("task already registered")
	// ErrInvalidTask is returned when registering a spec without name or body.
	ErrInvalidTask = errors.New("invalid task")
)

// EngineError is a fatal engine error. Kind is one of ErrUnknownTask,
// ErrTransitionLoop or ErrResumeLimit.
type EngineError struct {
	Kind error
	// Task is the offending task name.
	Task Name
	// Chain is the sequence of tasks entered before the error.
	Chain []Name
}

func (e *EngineError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrTransitionLoop) && len(e.Chain) > 0:
		return fmt.Sprintf("%s: %s", e.Kind, joinChain(e.Chain))
	case len(e.Chain) > 1:
		return fmt.Sprintf("%s %q (via %s)", e.Kind, e.Task, joinChain(e.Chain[:len(e.Chain)-1]))
	default:
		return fmt.Sprintf("%s %q", e.Kind, e.Task)
	}
}

func (e *EngineError) Unwrap() error { return e.Kind }

// IsFatal reports whether err is an engine error that must not be retried
// or redirected.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnknownTask) ||
		errors.Is(err, ErrTransitionLoop) ||
		errors.Is(err, ErrResumeLimit)
}

func joinChain(chain []Name) string {
	parts := make([]string, len(chain))
	for i, n := range chain {
		parts[i] = string(n)
	}
	return strings.Join(parts, " -> ")
}
