package task

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cperrin88/cavern/pkg/model"
)

func newTestEngine(t *testing.T, specs ...Spec) (*Engine, *bytes.Buffer) {
	t.Helper()
	reg := NewRegistry()
	for _, s := range specs {
		require.NoError(t, reg.Register(s))
	}
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e, err := NewEngine(reg, WithLogger(logger))
	require.NoError(t, err)
	return e, buf
}

func completing(name Name, value any) Spec {
	return Spec{Name: name, Run: func(context.Context, Options) Outcome { return Complete(value) }}
}

func redirecting(name, to Name, reason string) Spec {
	return Spec{
		Name:    name,
		Targets: []Name{to},
		Run:     func(context.Context, Options) Outcome { return Redirect(to, reason) },
	}
}

func TestRun_Complete(t *testing.T) {
	e, _ := newTestEngine(t, completing("a", 42))

	res, err := e.Run(context.Background(), "a", Options{})
	require.NoError(t, err)
	assert.Equal(t, Name("a"), res.Task)
	assert.Equal(t, 42, res.Value)
	assert.Empty(t, res.Transitions)
	assert.False(t, res.Redirected())
	assert.NotEmpty(t, res.RunID)
}

func TestRun_RedirectKeepsOptions(t *testing.T) {
	var seen []Options
	record := func(name Name, out func() Outcome) Spec {
		return Spec{Name: name, Targets: []Name{"b"}, Run: func(_ context.Context, o Options) Outcome {
			seen = append(seen, o)
			return out()
		}}
	}
	e, logs := newTestEngine(t,
		record("a", func() Outcome { return Redirect("b", "need b") }),
		record("b", func() Outcome { return Complete("done") }),
	)

	opts := Options{CaveID: "c1", UploadID: 9}
	res, err := e.Run(context.Background(), "a", opts)
	require.NoError(t, err)
	assert.Equal(t, Name("b"), res.Task)
	assert.Equal(t, "done", res.Value)
	assert.Equal(t, []Transition{{To: "b", Reason: "need b"}}, res.Transitions)
	assert.True(t, res.Redirected())

	require.Len(t, seen, 2)
	assert.Equal(t, "c1", seen[1].CaveID)
	assert.Equal(t, int64(9), seen[1].UploadID)

	out := logs.String()
	assert.Contains(t, out, "task transition")
	assert.Contains(t, out, "from=a")
	assert.Contains(t, out, "to=b")
	assert.Contains(t, out, `reason="need b"`)
	assert.Contains(t, out, "run_id="+res.RunID)
}

func TestRun_ReasonDoesNotAffectDispatch(t *testing.T) {
	for _, reason := range []string{"", "x", "need upload id", "completely different"} {
		e, _ := newTestEngine(t, redirecting("a", "b", reason), completing("b", "ok"))
		res, err := e.Run(context.Background(), "a", Options{})
		require.NoError(t, err)
		assert.Equal(t, Name("b"), res.Task)
	}
}

func TestRun_LoopDetected(t *testing.T) {
	var calls int
	count := func(s Spec) Spec {
		run := s.Run
		s.Run = func(ctx context.Context, o Options) Outcome {
			calls++
			return run(ctx, o)
		}
		return s
	}
	e, _ := newTestEngine(t,
		count(redirecting("a", "b", "to b")),
		count(redirecting("b", "a", "to a")),
	)

	_, err := e.Run(context.Background(), "a", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransitionLoop)
	assert.True(t, IsFatal(err))
	assert.Equal(t, "transition loop: a -> b -> a", err.Error())
	assert.Equal(t, 2, calls)

	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, Name("a"), engErr.Task)
	assert.Equal(t, []Name{"a", "b", "a"}, engErr.Chain)
}

func TestRun_SelfRedirectIsLoop(t *testing.T) {
	e, _ := newTestEngine(t, redirecting("a", "a", "again"))
	_, err := e.Run(context.Background(), "a", Options{})
	assert.ErrorIs(t, err, ErrTransitionLoop)
}

func TestRun_MaxTransitions(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(redirecting("a", "b", "")))
	require.NoError(t, reg.Register(redirecting("b", "c", "")))
	require.NoError(t, reg.Register(completing("c", nil)))

	e, err := NewEngine(reg, WithMaxTransitions(1))
	require.NoError(t, err)
	_, err = e.Run(context.Background(), "a", Options{})
	assert.ErrorIs(t, err, ErrTransitionLoop)

	e, err = NewEngine(reg, WithMaxTransitions(2))
	require.NoError(t, err)
	res, err := e.Run(context.Background(), "a", Options{})
	require.NoError(t, err)
	assert.Equal(t, Name("c"), res.Task)
}

func TestRun_UnknownTask(t *testing.T) {
	e, _ := newTestEngine(t, completing("a", nil))

	_, err := e.Run(context.Background(), "nope", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTask)
	assert.True(t, IsFatal(err))
	assert.Equal(t, `unknown task "nope"`, err.Error())
}

func TestRun_UnknownRedirectTarget(t *testing.T) {
	// Targets left undeclared so that registry validation passes.
	e, _ := newTestEngine(t, Spec{Name: "a", Run: func(context.Context, Options) Outcome {
		return Redirect("ghost", "why not")
	}})

	_, err := e.Run(context.Background(), "a", Options{})
	assert.ErrorIs(t, err, ErrUnknownTask)
	assert.Equal(t, `unknown task "ghost" (via a)`, err.Error())
}

func TestRun_FailurePropagatesUnchanged(t *testing.T) {
	boom := errors.New("boom")
	e, _ := newTestEngine(t, Spec{Name: "a", Run: func(context.Context, Options) Outcome { return Fail(boom) }})

	_, err := e.Run(context.Background(), "a", Options{})
	assert.Same(t, boom, err)
	assert.False(t, IsFatal(err))
}

func TestRun_FailNil(t *testing.T) {
	e, _ := newTestEngine(t, Spec{Name: "a", Run: func(context.Context, Options) Outcome { return Fail(nil) }})
	_, err := e.Run(context.Background(), "a", Options{})
	assert.ErrorIs(t, err, ErrNilFailure)
}

func TestRun_ZeroOutcome(t *testing.T) {
	e, _ := newTestEngine(t, Spec{Name: "a", Run: func(context.Context, Options) Outcome { return Outcome{} }})
	_, err := e.Run(context.Background(), "a", Options{})
	assert.ErrorIs(t, err, ErrInvalidOutcome)
}

func TestRun_CancelledContext(t *testing.T) {
	called := false
	e, _ := newTestEngine(t, Spec{Name: "a", Run: func(context.Context, Options) Outcome {
		called = true
		return Complete(nil)
	}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, "a", Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRun_FreshRunIDs(t *testing.T) {
	e, _ := newTestEngine(t, completing("a", nil))
	r1, err := e.Run(context.Background(), "a", Options{})
	require.NoError(t, err)
	r2, err := e.Run(context.Background(), "a", Options{})
	require.NoError(t, err)
	assert.NotEqual(t, r1.RunID, r2.RunID)
}

func TestNewEngine_ValidatesTargets(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(redirecting("a", "missing", "")))

	_, err := NewEngine(reg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTask)
	assert.Contains(t, err.Error(), `"missing"`)

	_, err = NewEngine(nil)
	assert.Error(t, err)
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	assert.NotNil(t, o.Log())
	assert.NotPanics(t, func() { o.Progress()(model.Progress{BytesDone: 1}) })
}
