// Package tasks holds the built-in tasks: download fetches the selected
// upload of a cave, find-upload refreshes the upload cache and picks an
// upload, login obtains a session.
//
//go:generate mockgen -destination=./mocks/tasks.go . CaveStore,CredentialStore,Transferer
package tasks

import (
	"context"
	"errors"

	"github.com/cperrin88/cavern/pkg/credentials"
	"github.com/cperrin88/cavern/pkg/model"
	"github.com/cperrin88/cavern/pkg/platform"
	"github.com/cperrin88/cavern/pkg/task"
	"github.com/cperrin88/cavern/pkg/transfer"
)

// Built-in task names.
const (
	Download   task.Name = "download"
	FindUpload task.Name = "find-upload"
	Login      task.Name = "login"
)

// Transition reasons.
const (
	ReasonNeedUploadID      = "need upload id"
	ReasonNeedCachedUploads = "need cached uploads"
	ReasonNeedUploadInCache = "need upload in upload cache"
	ReasonNeedCredentials   = "need credentials"
)

// CaveStore is the part of the record store the tasks use.
type CaveStore interface {
	Find(ctx context.Context, id string) (*model.Cave, error)
	Save(ctx context.Context, c *model.Cave) error
	ArchivePath(upload *model.Upload) string
}

// CredentialStore hands out the current session.
type CredentialStore interface {
	CurrentUser() (credentials.Session, error)
	Login(ctx context.Context, creds credentials.Credentials) (credentials.Session, error)
}

// Transferer fetches a URL to a local file.
type Transferer interface {
	Request(ctx context.Context, req transfer.Request) error
}

// Deps are the collaborators of the built-in tasks.
type Deps struct {
	Caves       CaveStore
	Credentials CredentialStore
	Transfer    Transferer
	// APIKey is used by login when no session exists.
	APIKey string
	// Platform filters uploads during selection.
	Platform platform.Platform
}

// Register adds the built-in tasks to reg.
func Register(reg *task.Registry, deps Deps) error {
	if deps.Caves == nil || deps.Credentials == nil || deps.Transfer == nil {
		return errors.New("tasks: cave store, credential store and transfer client are required")
	}
	specs := []task.Spec{
		{
			Name:        Download,
			Run:         deps.download,
			Targets:     []task.Name{FindUpload},
			Description: "Download the selected upload of a cave into the archives directory",
		},
		{
			Name:        FindUpload,
			Run:         deps.findUpload,
			Targets:     []task.Name{Login},
			Description: "Refresh the upload cache of a cave and select an upload",
		},
		{
			Name:        Login,
			Run:         deps.login,
			Description: "Obtain a session from stored credentials or the configured API key",
		},
	}
	for _, s := range specs {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}
