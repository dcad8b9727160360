package task

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// Engine dispatches task names to their bodies. It holds no per-run state
// and is safe for concurrent use.
type Engine struct {
	registry       *Registry
	logger         *slog.Logger
	maxTransitions int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for transition records.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxTransitions bounds the number of transitions per run on top of the
// visited-set check. Zero leaves only the visited set.
func WithMaxTransitions(n int) EngineOption {
	return func(e *Engine) {
		if n >= 0 {
			e.maxTransitions = n
		}
	}
}

// NewEngine validates reg and returns an engine over it.
func NewEngine(reg *Registry, opts ...EngineOption) (*Engine, error) {
	if reg == nil {
		return nil, errors.New("task: registry is required")
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		registry: reg,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Registry returns the registry the engine dispatches to.
func (e *Engine) Registry() *Registry { return e.registry }

// Run executes name with opts and follows redirects.
//
// Failures returned by task bodies are returned as is. Unknown names and
// re-entered tasks produce an *EngineError.
func (e *Engine) Run(ctx context.Context, name Name, opts Options) (Result, error) {
	runID := uuid.NewString()
	log := e.logger.With("run_id", runID)

	visited := make(map[Name]struct{})
	chain := make([]Name, 0, 4)
	var transitions []Transition

	current := name
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if _, seen := visited[current]; seen {
			return Result{}, e.loopError(log, current, append(chain, current))
		}
		if e.maxTransitions > 0 && len(transitions) > e.maxTransitions {
			return Result{}, e.loopError(log, current, append(chain, current))
		}
		spec, ok := e.registry.Lookup(current)
		if !ok {
			err := &EngineError{Kind: ErrUnknownTask, Task: current, Chain: append(chain, current)}
			log.Error("task run aborted", "task", current, "error", err)
			return Result{}, err
		}
		visited[current] = struct{}{}
		chain = append(chain, current)

		log.Debug("task started", "task", current, "cave_id", opts.CaveID)
		out := spec.Run(ctx, opts)

		switch out.Kind() {
		case KindComplete:
			log.Debug("task completed", "task", current)
			return Result{Task: current, Value: out.Value(), Transitions: transitions, RunID: runID}, nil
		case KindFailure:
			log.Debug("task failed", "task", current, "error", out.Err())
			return Result{}, out.Err()
		case KindRedirect:
			tr := out.Transition()
			log.Info("task transition", "from", current, "to", tr.To, "reason", tr.Reason)
			transitions = append(transitions, tr)
			current = tr.To
		default:
			return Result{}, ErrInvalidOutcome
		}
	}
}

func (e *Engine) loopError(log *slog.Logger, task Name, chain []Name) error {
	err := &EngineError{Kind: ErrTransitionLoop, Task: task, Chain: chain}
	log.Error("task run aborted", "task", task, "error", err)
	return err
}
