package task

import "fmt"

// Kind discriminates outcomes.
type Kind int

// Outcome kinds. The zero Kind marks an Outcome that was never set.
const (
	KindComplete Kind = iota + 1
	KindRedirect
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindComplete:
		return "complete"
	case KindRedirect:
		return "redirect"
	case KindFailure:
		return "failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Transition asks the engine to run another task. It is an instruction,
// not an error.
type Transition struct {
	To Name `json:"to"`
	// Reason is diagnostic text. It is logged and never inspected.
	Reason string `json:"reason"`
}

// Outcome is what a task body returns.
type Outcome struct {
	kind       Kind
	value      any
	transition Transition
	err        error
}

// Complete ends the run successfully with value.
func Complete(value any) Outcome {
	return Outcome{kind: KindComplete, value: value}
}

// Redirect hands control to the task named to.
func Redirect(to Name, reason string) Outcome {
	return Outcome{kind: KindRedirect, transition: Transition{To: to, Reason: reason}}
}

// Fail ends the run with err. A nil err is reported as ErrNilFailure.
func Fail(err error) Outcome {
	if err == nil {
		err = ErrNilFailure
	}
	return Outcome{kind: KindFailure, err: err}
}

// Kind returns the outcome kind.
func (o Outcome) Kind() Kind { return o.kind }

// Value returns the completion value.
func (o Outcome) Value() any { return o.value }

// Transition returns the requested transition of a redirect.
func (o Outcome) Transition() Transition { return o.transition }

// Err returns the failure.
func (o Outcome) Err() error { return o.err }
