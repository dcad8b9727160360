// Package transfer streams remote files to disk with progress reporting,
// integrity checks and retries of transient failures.
package transfer

import (
	"context"
	"crypto/md5" //nolint:gosec // upload descriptors only carry MD5 digests
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	pkgerrors "github.com/cperrin88/cavern/pkg/errors"
	"github.com/cperrin88/cavern/pkg/fsutil"
	"github.com/cperrin88/cavern/pkg/model"
)

var (
	// ErrBadStatus is matched by every non-2xx response.
	ErrBadStatus = errors.New("unexpected status code")
	// ErrNotFound is additionally matched by 404 responses.
	ErrNotFound = errors.New("remote file not found")
	// ErrChecksumMismatch is returned when the received file does not match
	// the expected digest.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Request describes one file to fetch.
type Request struct {
	URL  string
	Dest string
	// MD5 is an optional hex digest the file is verified against.
	MD5        string
	OnProgress model.ProgressFunc
	Logger     *slog.Logger
}

// StatusError carries the HTTP status of a failed response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrBadStatus, e.Code)
}

// Is matches ErrBadStatus, and ErrNotFound for 404.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrBadStatus:
		return true
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	}
	return false
}

// Config holds the client settings.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	// MaxAttempts is the total number of tries per request; values below one
	// mean a single try.
	MaxAttempts int
	Backoff     time.Duration
	HTTPClient  *http.Client
}

// Client downloads files over HTTP.
type Client struct {
	client      *http.Client
	userAgent   string
	maxAttempts int
	backoff     time.Duration
}

// NewClient creates a transfer client.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "cavern/1.0"
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		client:      hc,
		userAgent:   ua,
		maxAttempts: attempts,
		backoff:     cfg.Backoff,
	}
}

// Request fetches req.URL into req.Dest. The destination only appears once
// the complete file is on disk.
func (c *Client) Request(ctx context.Context, req Request) error {
	if req.Dest == "" || !filepath.IsAbs(req.Dest) {
		return fmt.Errorf("destination must be absolute: %s: %w", req.Dest, pkgerrors.ErrInvalidPath)
	}
	u, err := url.Parse(req.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid URL: %w", pkgerrors.ErrDownloadFailed)
	}
	logger := req.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = c.fetchOnce(ctx, u, req)
		if lastErr == nil {
			return nil
		}
		if attempt == c.maxAttempts || !retryable(ctx, lastErr) {
			break
		}
		logger.Warn("transfer attempt failed", "host", u.Hostname(), "attempt", attempt, "error", lastErr)

		t := time.NewTimer(c.backoff * time.Duration(attempt))
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
	return lastErr
}

func (c *Client) fetchOnce(ctx context.Context, u *url.URL, req Request) error {
	resp, err := c.doRequest(ctx, u)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	tmpPath, err := writeBodyToTemp(ctx, resp, req)
	if err != nil {
		return err
	}
	if req.MD5 != "" {
		ok, err := verifyMD5(tmpPath, req.MD5)
		if err != nil {
			_ = os.Remove(tmpPath)
			return err
		}
		if !ok {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("%w for %s", ErrChecksumMismatch, filepath.Base(req.Dest))
		}
	}
	if err := finalizeFile(tmpPath, req.Dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "download failed")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return resp, nil
}

func writeBodyToTemp(ctx context.Context, resp *http.Response, req Request) (string, error) {
	dir := filepath.Dir(req.Dest)
	if err := os.MkdirAll(dir, fsutil.DirModeSecure); err != nil {
		return "", pkgerrors.Wrap(err, "could not create download dir")
	}
	tmp, err := os.CreateTemp(dir, ".dl-*.tmp")
	if err != nil {
		return "", pkgerrors.Wrap(err, "could not create temp file")
	}
	tmpPath := tmp.Name()

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	w := &progressWriter{w: tmp, total: total, onProgress: req.OnProgress}
	_, copyErr := io.Copy(w, &contextReader{r: resp.Body, ctx: ctx})
	syncErr := tmp.Sync()
	closeErr := tmp.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(tmpPath)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", pkgerrors.Wrap(copyErr, "could not write file")
	case syncErr != nil:
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(syncErr, "could not sync file")
	case closeErr != nil:
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(closeErr, "could not close file")
	}
	if total == 0 {
		w.report()
	}
	return tmpPath, nil
}

func finalizeFile(tmpPath, absPath string) error {
	if err := fsutil.Move(tmpPath, absPath); err != nil {
		return pkgerrors.Wrap(err, "could not finalize file")
	}
	if err := os.Chmod(absPath, fsutil.FileModeSecure); err != nil {
		return pkgerrors.Wrap(err, "could not set permissions")
	}
	return nil
}

func verifyMD5(path, wantHex string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, pkgerrors.Wrap(err, "open for checksum")
	}
	defer func() { _ = f.Close() }()
	h := md5.New() //nolint:gosec
	if _, err := io.Copy(h, f); err != nil {
		return false, pkgerrors.Wrap(err, "hashing")
	}
	return hex.EncodeToString(h.Sum(nil)) == strings.ToLower(strings.TrimSpace(wantHex)), nil
}

// retryable reports whether a failed attempt may succeed when repeated:
// network errors and 5xx responses are, cancellation and 4xx are not.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) || errors.Is(err, io.ErrUnexpectedEOF)
}
