// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transform

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/semaphore"

	"github.com/7maceX1D/assetd/assets/models"
	"github.com/7maceX1D/assetd/internal/pkg/log"
	"github.com/7maceX1D/assetd/storage/provider"
)

// ErrIllegalTransformation rejects transforms whose source dimensions are
// unknown or exceed the configured ceiling, before any resource-heavy work.
var ErrIllegalTransformation = fmt.Errorf("illegal transformation: image dimensions unknown or exceed the configured maximum")

// Gate is the process-wide counting semaphore limiting simultaneous
// transform executions. Pixel transforms are CPU and memory bound; every
// service instance must share one Gate so the process respects a single
// system-wide ceiling. Construct it once at startup and inject it everywhere.
type Gate struct {
	sem *semaphore.Weighted
}

// NewGate creates a concurrency gate with the given slot capacity.
func NewGate(capacity int64) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{sem: semaphore.NewWeighted(capacity)}
}

// Acquire blocks until a slot is free or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// Release frees a slot.
func (g *Gate) Release() {
	g.sem.Release(1)
}

// Executor materializes transformed variants. It holds no per-request state;
// the gate is the only shared resource.
type Executor struct {
	gate         *Gate
	maxDimension int
}

// NewExecutor creates an executor bound to the shared gate and the configured
// dimension ceiling.
func NewExecutor(gate *Gate, maxDimension int) *Executor {
	return &Executor{gate: gate, maxDimension: maxDimension}
}

// ValidateDimensions is the pre-scheduling guard: the source must have known
// positive dimensions, both within the ceiling. Violations abort with
// ErrIllegalTransformation before any gate acquisition or storage write.
func (e *Executor) ValidateDimensions(file *models.File) error {
	if file.Width <= 0 || file.Height <= 0 {
		return fmt.Errorf("%w: unknown dimensions for file %s", ErrIllegalTransformation, file.ID)
	}
	if file.Width > e.maxDimension || file.Height > e.maxDimension {
		return fmt.Errorf("%w: %dx%d exceeds maximum of %d", ErrIllegalTransformation, file.Width, file.Height, e.maxDimension)
	}
	return nil
}

// Run streams the source image through the transform pipeline and writes the
// result to store under variantName with the given content type. It acquires
// one gate slot for the strict duration of the transform-and-persist
// operation and releases it on both success and failure paths.
func (e *Executor) Run(ctx context.Context, store provider.Driver, source io.Reader, file *models.File, ops []Operation, variantName string, contentType string) error {
	if err := e.gate.Acquire(ctx); err != nil {
		return fmt.Errorf("failed to acquire transform slot: %w", err)
	}
	defer e.gate.Release()

	// Buffer the source so the header check and the decode read the same
	// bytes. Sources passed the dimension guard, so this stays bounded.
	raw, err := io.ReadAll(source)
	if err != nil {
		// Detach from the source rather than producing truncated output that
		// looks successful. Not retried.
		log.ErrorWithContext(ctx, "failed to read source stream for file %s: %v", file.ID, err)
		return fmt.Errorf("failed to read source stream: %w", err)
	}

	// Hard decode ceiling, independent of the DB-recorded dimensions the
	// guard checked: the actual header must also fit MaxDimension².
	header, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		log.ErrorWithContext(ctx, "failed to decode image header for file %s: %v", file.ID, err)
		return fmt.Errorf("failed to decode image header: %w", err)
	}
	if int64(header.Width)*int64(header.Height) > int64(e.maxDimension)*int64(e.maxDimension) {
		return fmt.Errorf("%w: %dx%d exceeds maximum pixel count", ErrIllegalTransformation, header.Width, header.Height)
	}

	// Respect EXIF orientation by default; an explicit rotate operation
	// takes over orientation handling entirely.
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(!HasExplicitRotate(ops)))
	if err != nil {
		log.ErrorWithContext(ctx, "failed to decode image for file %s: %v", file.ID, err)
		return fmt.Errorf("failed to decode image: %w", err)
	}

	img, err = ApplyOperations(img, ops)
	if err != nil {
		return err
	}

	format, encodeOpts, err := resolveEncoding(file, ops)
	if err != nil {
		return err
	}

	// Stream the encoded result into storage instead of buffering it.
	pr, pw := io.Pipe()
	go func() {
		encodeErr := imaging.Encode(pw, img, format, encodeOpts...)
		pw.CloseWithError(encodeErr)
	}()

	if err := store.Put(ctx, variantName, pr, contentType); err != nil {
		pr.Close()
		log.ErrorWithContext(ctx, "failed to store variant %s for file %s: %v", variantName, file.ID, err)
		return fmt.Errorf("failed to store variant: %w", err)
	}

	return nil
}

// resolveEncoding picks the output encode format and options from the
// operation list, falling back to the source content type.
func resolveEncoding(file *models.File, ops []Operation) (imaging.Format, []imaging.EncodeOption, error) {
	name := ""
	if target, ok := OutputFormat(ops); ok {
		name = target
	} else {
		name = formatFromContentType(file.MimeType)
	}

	info, ok := formatInfo[name]
	if !ok {
		return 0, nil, fmt.Errorf("unsupported output format: %q", name)
	}

	var opts []imaging.EncodeOption
	for _, op := range ops {
		if op.Name == OpQuality && len(op.Args) > 0 {
			if q, ok := argAsInt(op.Args[0]); ok && q > 0 && q <= 100 {
				opts = append(opts, imaging.JPEGQuality(q))
			}
		}
	}

	return info.Format, opts, nil
}

func formatFromContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/tiff":
		return "tiff"
	case "image/bmp":
		return "bmp"
	default:
		return ""
	}
}
