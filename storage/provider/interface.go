// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package provider

import (
	"context"
	"io"
	"time"
)

// Stat holds storage-level metadata for a stored object.
type Stat struct {
	Size       int64
	ModifiedAt time.Time
}

// Driver is the per-storage-root adapter over an object store.
// Implementations exist for S3-compatible providers (AWS S3, Cloudflare R2,
// Alibaba OSS) and the local filesystem.
type Driver interface {
	// DriverName identifies the backing provider (e.g. "s3", "alioss", "local").
	DriverName() string

	// Exists reports whether an object is present under name.
	Exists(ctx context.Context, name string) (bool, error)

	// GetStream opens a read stream over the object. Non-nil start/end
	// restrict the stream to the inclusive [start, end] slice; the range is
	// assumed to be normalized against the object size by the caller.
	GetStream(ctx context.Context, name string, start, end *int64) (io.ReadCloser, error)

	// GetStat returns size and modification time of the object.
	GetStat(ctx context.Context, name string) (*Stat, error)

	// Put writes the full content of r under name with the given content type.
	Put(ctx context.Context, name string, r io.Reader, contentType string) error

	// GetURL returns the public URL of the object (CDN URL when configured,
	// presigned URL otherwise).
	GetURL(ctx context.Context, name string) (string, error)
}

// Registry maps storage-root identifiers from file records to their drivers.
type Registry map[string]Driver

// Get looks up the driver for a storage root.
func (r Registry) Get(root string) (Driver, bool) {
	d, ok := r[root]
	return d, ok
}
