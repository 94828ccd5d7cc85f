// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package provider

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localDriver implements Driver on top of a local filesystem root.
// It is used for development and as the default storage root in tests.
type localDriver struct {
	root      string
	publicURL string
}

// NewLocalDriver creates a filesystem driver rooted at dir.
func NewLocalDriver(dir string, publicURL string) (Driver, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage root directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &localDriver{root: dir, publicURL: publicURL}, nil
}

func (d *localDriver) DriverName() string {
	return "local"
}

func (d *localDriver) fullPath(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(name))
}

func (d *localDriver) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(d.fullPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return true, nil
}

// rangeReadCloser limits a file stream to an inclusive byte range while
// keeping the underlying file closable.
type rangeReadCloser struct {
	io.Reader
	f *os.File
}

func (r *rangeReadCloser) Close() error {
	return r.f.Close()
}

func (d *localDriver) GetStream(ctx context.Context, name string, start, end *int64) (io.ReadCloser, error) {
	f, err := os.Open(d.fullPath(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	if start == nil && end == nil {
		return f, nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	// Resolve the inclusive bounds the same way an HTTP Range header would.
	var from, to int64
	switch {
	case start != nil && end != nil:
		from, to = *start, *end
	case start != nil:
		from, to = *start, info.Size()-1
	default:
		from, to = info.Size()-*end, info.Size()-1
		if from < 0 {
			from = 0
		}
	}

	if _, err := f.Seek(from, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to seek: %w", err)
	}

	return &rangeReadCloser{
		Reader: io.LimitReader(f, to-from+1),
		f:      f,
	}, nil
}

func (d *localDriver) GetStat(ctx context.Context, name string) (*Stat, error) {
	info, err := os.Stat(d.fullPath(name))
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return &Stat{Size: info.Size(), ModifiedAt: info.ModTime()}, nil
}

func (d *localDriver) Put(ctx context.Context, name string, r io.Reader, contentType string) error {
	path := d.fullPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		// Remove the partial write so a later existence check does not treat
		// it as a valid cached variant.
		os.Remove(path)
		return fmt.Errorf("failed to write file: %w", err)
	}

	return f.Close()
}

func (d *localDriver) GetURL(ctx context.Context, name string) (string, error) {
	if d.publicURL == "" {
		return "", fmt.Errorf("no public URL configured for local storage")
	}
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(d.publicURL, "/"), name), nil
}
