// Package model provides the data structures shared between the record
// store, the credential session and the tasks: caves, uploads, download
// keys and progress reports.
package model

import (
	"maps"
	"time"
)

// Cave is the persisted record for one installed or installable piece of
// content.
//
// UploadID is zero when no upload has been selected yet. Uploads is nil when
// the upload cache was never filled; an empty, non-nil map means the cache
// exists but holds nothing.
type Cave struct {
	ID        string            `json:"id"`
	GameID    int64             `json:"game_id"`
	Title     string            `json:"title,omitempty"`
	UploadID  int64             `json:"upload_id,omitempty"`
	Uploads   map[int64]*Upload `json:"uploads"`
	Key       *DownloadKey      `json:"key,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SelectedUpload returns the cached descriptor of the selected upload.
func (c *Cave) SelectedUpload() (*Upload, bool) {
	if c == nil || c.UploadID == 0 || c.Uploads == nil {
		return nil, false
	}
	u, ok := c.Uploads[c.UploadID]
	if !ok || u == nil {
		return nil, false
	}
	return u, true
}

// Clone returns a copy of the cave whose upload cache and key can be mutated
// without affecting the original.
func (c *Cave) Clone() *Cave {
	if c == nil {
		return nil
	}
	out := *c
	if c.Uploads != nil {
		out.Uploads = make(map[int64]*Upload, len(c.Uploads))
		for id, u := range c.Uploads {
			out.Uploads[id] = u.Clone()
		}
	}
	if c.Key != nil {
		k := *c.Key
		out.Key = &k
	}
	return &out
}

// DownloadKey grants access to paid content that the current user owns.
type DownloadKey struct {
	ID     int64 `json:"id"`
	GameID int64 `json:"game_id"`
}

// Upload describes one downloadable artifact of a game.
type Upload struct {
	ID          int64    `json:"id"`
	GameID      int64    `json:"game_id"`
	Filename    string   `json:"filename"`
	DisplayName string   `json:"display_name,omitempty"`
	Size        int64    `json:"size,omitempty"`
	Type        string   `json:"type,omitempty"`
	ChannelName string   `json:"channel_name,omitempty"`
	Version     string   `json:"version,omitempty"`
	Demo        bool     `json:"demo,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	MD5         string   `json:"md5_hash,omitempty"`
}

// UploadTypeDefault is the type of regular game builds.
const UploadTypeDefault = "default"

// Name returns the display name, falling back to the filename.
func (u *Upload) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Filename
}

// Clone returns a deep copy of the upload.
func (u *Upload) Clone() *Upload {
	if u == nil {
		return nil
	}
	out := *u
	if u.Platforms != nil {
		out.Platforms = append([]string(nil), u.Platforms...)
	}
	return &out
}

// UploadCache builds the id → descriptor map stored on a cave.
func UploadCache(uploads []*Upload) map[int64]*Upload {
	cache := make(map[int64]*Upload, len(uploads))
	for _, u := range uploads {
		if u == nil {
			continue
		}
		cache[u.ID] = u
	}
	return cache
}

// CopyUploads returns a shallow copy of an upload cache, preserving nil.
func CopyUploads(in map[int64]*Upload) map[int64]*Upload {
	if in == nil {
		return nil
	}
	return maps.Clone(in)
}
