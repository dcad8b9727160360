package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	noop := func(context.Context, Options) Outcome { return Complete(nil) }

	require.NoError(t, reg.Register(Spec{Name: "b", Run: noop, Description: "second"}))
	require.NoError(t, reg.Register(Spec{Name: "a", Run: noop}))

	assert.ErrorIs(t, reg.Register(Spec{Name: "a", Run: noop}), ErrDuplicateTask)
	assert.ErrorIs(t, reg.Register(Spec{Name: "", Run: noop}), ErrInvalidTask)
	assert.ErrorIs(t, reg.Register(Spec{Name: "c"}), ErrInvalidTask)

	assert.Equal(t, []Name{"a", "b"}, reg.Names())
	specs := reg.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, "second", specs[1].Description)

	_, ok := reg.Lookup("b")
	assert.True(t, ok)
	_, ok = reg.Lookup("z")
	assert.False(t, ok)
}

func TestRegistry_TargetsAreCopied(t *testing.T) {
	reg := NewRegistry()
	targets := []Name{"b"}
	require.NoError(t, reg.Register(Spec{Name: "a", Run: func(context.Context, Options) Outcome { return Complete(nil) }, Targets: targets}))
	targets[0] = "mutated"

	spec, _ := reg.Lookup("a")
	assert.Equal(t, []Name{"b"}, spec.Targets)
}

func TestRegistry_Validate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(redirecting("a", "b", "")))
	err := reg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTask)
	assert.Equal(t, `unknown task "b" (via a)`, err.Error())

	require.NoError(t, reg.Register(completing("b", nil)))
	assert.NoError(t, reg.Validate())
}

func TestOutcome(t *testing.T) {
	c := Complete("v")
	assert.Equal(t, KindComplete, c.Kind())
	assert.Equal(t, "v", c.Value())

	r := Redirect("x", "because")
	assert.Equal(t, KindRedirect, r.Kind())
	assert.Equal(t, Transition{To: "x", Reason: "because"}, r.Transition())

	f := Fail(assert.AnError)
	assert.Equal(t, KindFailure, f.Kind())
	assert.Same(t, assert.AnError, f.Err())

	assert.Equal(t, "redirect", KindRedirect.String())
	assert.Equal(t, "kind(0)", Outcome{}.Kind().String())
}
