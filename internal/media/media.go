// Package media stores uploaded files on the object storage host.
package media

import (
	"context"
	"errors"
)

// Kind selects the key prefix and bookkeeping of an upload.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// ErrEmptyPath is returned when Upload is called without a local file.
var ErrEmptyPath = errors.New("media: empty local path")

// Asset is a stored file.
type Asset struct {
	URL      string
	PublicID string
	// Duration is the probed length in seconds, videos only.
	Duration float64
}

// Store uploads and deletes media files.
type Store interface {
	// Upload moves the local file to the media host. The local file is
	// removed whether the upload succeeds or not.
	Upload(ctx context.Context, localPath string, kind Kind) (*Asset, error)
	Delete(ctx context.Context, publicID string) error
}
