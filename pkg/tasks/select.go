package tasks

import (
	"errors"
	"fmt"
	"sort"

	version "github.com/hashicorp/go-version"

	"github.com/cperrin88/cavern/pkg/model"
	"github.com/cperrin88/cavern/pkg/platform"
)

var (
	// ErrUploadNotFound is returned when a pinned upload is not listed.
	ErrUploadNotFound = errors.New("upload not found")
	// ErrNoCompatibleUpload is returned when nothing runs on the platform.
	ErrNoCompatibleUpload = errors.New("no compatible upload")
)

// SelectUpload picks the upload to download. A pinned id wins, then the
// previous selection if it is still listed and compatible, then the best
// ranked compatible upload.
func SelectUpload(uploads []*model.Upload, pinned, previous int64, p platform.Platform) (*model.Upload, error) {
	if pinned != 0 {
		for _, u := range uploads {
			if u != nil && u.ID == pinned {
				return u, nil
			}
		}
		return nil, fmt.Errorf("%w: %d", ErrUploadNotFound, pinned)
	}

	candidates := make([]*model.Upload, 0, len(uploads))
	for _, u := range uploads {
		if u != nil && p.Supports(u.Platforms) {
			candidates = append(candidates, u)
		}
	}
	if previous != 0 {
		for _, u := range candidates {
			if u.ID == previous {
				return u, nil
			}
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w for %s among %d uploads", ErrNoCompatibleUpload, p, len(uploads))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return better(candidates[i], candidates[j])
	})
	return candidates[0], nil
}

// better reports whether a ranks above b.
func better(a, b *model.Upload) bool {
	aDefault, bDefault := isDefaultType(a), isDefaultType(b)
	if aDefault != bDefault {
		return aDefault
	}
	if a.Demo != b.Demo {
		return !a.Demo
	}
	if c := compareVersions(a.Version, b.Version); c != 0 {
		return c > 0
	}
	return a.ID > b.ID
}

func isDefaultType(u *model.Upload) bool {
	return u.Type == "" || u.Type == model.UploadTypeDefault
}

// compareVersions orders unparseable or missing versions below valid ones.
func compareVersions(a, b string) int {
	va, errA := version.NewVersion(a)
	vb, errB := version.NewVersion(b)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	default:
		return va.Compare(vb)
	}
}
