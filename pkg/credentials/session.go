// Package credentials keeps the logged-in user's credentials and exposes an
// authenticated session against the content API.
//
//go:generate mockgen -destination=./mocks/session.go . Session
package credentials

import (
	"context"
	"errors"

	"github.com/cperrin88/cavern/pkg/model"
)

var (
	// ErrUnauthenticated is returned when no usable session exists or the
	// API rejected the credentials.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNotFound is returned when the API reports a missing resource.
	ErrNotFound = errors.New("resource not found")
	// ErrAPI is returned for every other unsuccessful API response.
	ErrAPI = errors.New("content API error")
)

// DownloadURL is a short-lived URL an upload can be fetched from.
type DownloadURL struct {
	URL string `json:"url"`
}

// User is the account a session acts for.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

// Session is an authenticated handle on the content API.
type Session interface {
	DownloadUpload(ctx context.Context, uploadID int64) (DownloadURL, error)
	DownloadUploadWithKey(ctx context.Context, keyID, uploadID int64) (DownloadURL, error)
	ListUploads(ctx context.Context, gameID int64) ([]*model.Upload, error)
	ListUploadsWithKey(ctx context.Context, keyID, gameID int64) ([]*model.Upload, error)
	Me(ctx context.Context) (User, error)
}

// SessionFactory builds a session from stored credentials.
type SessionFactory func(ctx context.Context, creds Credentials) (Session, error)
