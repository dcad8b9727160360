package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prerequisite models a task that needs state some other task provides.
type prerequisite struct {
	ready    bool
	runs     int
	fixRuns  int
	neverFix bool
}

func (p *prerequisite) specs() []Spec {
	return []Spec{
		{
			Name:    "main",
			Targets: []Name{"fix"},
			Run: func(context.Context, Options) Outcome {
				p.runs++
				if !p.ready {
					return Redirect("fix", "not ready")
				}
				return Complete("main done")
			},
		},
		{
			Name: "fix",
			Run: func(context.Context, Options) Outcome {
				p.fixRuns++
				if !p.neverFix {
					p.ready = true
				}
				return Complete("fixed")
			},
		},
	}
}

func TestDriver_ResumesOriginalTask(t *testing.T) {
	p := &prerequisite{}
	e, _ := newTestEngine(t, p.specs()...)

	res, err := NewDriver(e, 2).Drive(context.Background(), "main", Options{})
	require.NoError(t, err)
	assert.Equal(t, Name("main"), res.Task)
	assert.Equal(t, "main done", res.Value)
	assert.Equal(t, 2, p.runs, "guards are re-evaluated on the resumed run")
	assert.Equal(t, 1, p.fixRuns)
	assert.Equal(t, []Transition{{To: "fix", Reason: "not ready"}}, res.Transitions)
}

func TestDriver_NoResumeNeeded(t *testing.T) {
	p := &prerequisite{ready: true}
	e, _ := newTestEngine(t, p.specs()...)

	res, err := NewDriver(e, 0).Drive(context.Background(), "main", Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, p.runs)
	assert.Empty(t, res.Transitions)
}

func TestDriver_ResumeLimit(t *testing.T) {
	p := &prerequisite{neverFix: true}
	e, _ := newTestEngine(t, p.specs()...)

	_, err := NewDriver(e, 2).Drive(context.Background(), "main", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResumeLimit)
	assert.True(t, IsFatal(err))
	assert.Equal(t, 3, p.runs)
}

func TestDriver_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	e, _ := newTestEngine(t, Spec{Name: "main", Run: func(context.Context, Options) Outcome { return Fail(boom) }})

	_, err := NewDriver(e, 3).Drive(context.Background(), "main", Options{})
	assert.Same(t, boom, err)
}

func TestNewDriver_DefaultBound(t *testing.T) {
	e, _ := newTestEngine(t, completing("a", nil))
	d := NewDriver(e, -1)
	assert.Equal(t, DefaultMaxResumes, d.maxResumes)
}
