package tasks

import (
	"context"
	"errors"

	"github.com/cperrin88/cavern/pkg/credentials"
	"github.com/cperrin88/cavern/pkg/model"
	"github.com/cperrin88/cavern/pkg/task"
)

// findUpload lists the uploads of the cave's game, stores them as the
// upload cache and records the selected upload.
func (d Deps) findUpload(ctx context.Context, opts task.Options) task.Outcome {
	log := opts.Log().With("task", string(FindUpload))

	cave, err := d.Caves.Find(ctx, opts.CaveID)
	if err != nil {
		return task.Fail(err)
	}

	sess, err := d.Credentials.CurrentUser()
	if errors.Is(err, credentials.ErrUnauthenticated) {
		return task.Redirect(Login, ReasonNeedCredentials)
	}
	if err != nil {
		return task.Fail(err)
	}

	var uploads []*model.Upload
	if cave.Key != nil {
		uploads, err = sess.ListUploadsWithKey(ctx, cave.Key.ID, cave.GameID)
	} else {
		uploads, err = sess.ListUploads(ctx, cave.GameID)
	}
	if err != nil {
		return task.Fail(err)
	}

	selected, err := SelectUpload(uploads, opts.UploadID, cave.UploadID, d.Platform)
	if err != nil {
		return task.Fail(err)
	}

	cave.Uploads = model.UploadCache(uploads)
	cave.UploadID = selected.ID
	if err := d.Caves.Save(ctx, cave); err != nil {
		return task.Fail(err)
	}

	log.Info("upload selected",
		"cave_id", cave.ID,
		"upload_id", selected.ID,
		"upload", selected.Name(),
		"candidates", len(uploads))
	return task.Complete(selected.ID)
}
