package tasks

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cperrin88/cavern/pkg/credentials"
	"github.com/cperrin88/cavern/pkg/task"
	"github.com/cperrin88/cavern/pkg/transfer"
)

// download fetches the selected upload of opts.CaveID. Missing selection
// state redirects to find-upload; every other problem fails the run.
func (d Deps) download(ctx context.Context, opts task.Options) task.Outcome {
	log := opts.Log().With("task", string(Download))

	cave, err := d.Caves.Find(ctx, opts.CaveID)
	if err != nil {
		return task.Fail(err)
	}

	// The guards run in this order. An empty cache is not an absent one.
	if cave.UploadID == 0 {
		return task.Redirect(FindUpload, ReasonNeedUploadID)
	}
	if cave.Uploads == nil {
		return task.Redirect(FindUpload, ReasonNeedCachedUploads)
	}
	upload := cave.Uploads[cave.UploadID]
	if upload == nil {
		return task.Redirect(FindUpload, ReasonNeedUploadInCache)
	}

	sess, err := d.Credentials.CurrentUser()
	if err != nil {
		return task.Fail(err)
	}

	var dl credentials.DownloadURL
	if cave.Key != nil {
		dl, err = sess.DownloadUploadWithKey(ctx, cave.Key.ID, cave.UploadID)
	} else {
		dl, err = sess.DownloadUpload(ctx, cave.UploadID)
	}
	if err != nil {
		return task.Fail(err)
	}

	parsed, err := url.Parse(dl.URL)
	if err != nil {
		return task.Fail(fmt.Errorf("invalid download URL for upload %d: %w", cave.UploadID, err))
	}
	log.Info(fmt.Sprintf("d/l from %s", parsed.Hostname()), "cave_id", cave.ID, "upload_id", cave.UploadID)

	dest := d.Caves.ArchivePath(upload)
	if err := d.Transfer.Request(ctx, transfer.Request{
		URL:        dl.URL,
		Dest:       dest,
		MD5:        upload.MD5,
		OnProgress: opts.OnProgress,
		Logger:     opts.Logger,
	}); err != nil {
		return task.Fail(err)
	}
	return task.Complete(dest)
}
