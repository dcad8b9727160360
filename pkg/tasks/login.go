package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/cperrin88/cavern/pkg/credentials"
	"github.com/cperrin88/cavern/pkg/task"
)

// login completes with the username of a working session, logging in with
// the configured API key when the stored session is missing or rejected.
func (d Deps) login(ctx context.Context, opts task.Options) task.Outcome {
	log := opts.Log().With("task", string(Login))

	sess, err := d.Credentials.CurrentUser()
	switch {
	case err == nil:
		user, meErr := sess.Me(ctx)
		if meErr == nil {
			return task.Complete(user.Username)
		}
		if !errors.Is(meErr, credentials.ErrUnauthenticated) {
			return task.Fail(meErr)
		}
		log.Warn("stored session rejected", "error", meErr)
	case !errors.Is(err, credentials.ErrUnauthenticated):
		return task.Fail(err)
	}

	if d.APIKey == "" {
		return task.Fail(fmt.Errorf("%w: no API key configured", credentials.ErrUnauthenticated))
	}
	sess, err = d.Credentials.Login(ctx, credentials.Credentials{APIKey: d.APIKey})
	if err != nil {
		return task.Fail(err)
	}
	user, err := sess.Me(ctx)
	if err != nil {
		return task.Fail(err)
	}
	log.Info("logged in", "username", user.Username)
	return task.Complete(user.Username)
}
