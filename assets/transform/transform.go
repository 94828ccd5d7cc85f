// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transform

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/7maceX1D/assetd/assets/models"
)

// Operation names form a closed set; ApplyOperations resolves them through a
// static dispatch table instead of runtime name lookup.
const (
	OpResize    = "resize"
	OpRotate    = "rotate"
	OpFlip      = "flip"
	OpFlop      = "flop"
	OpGrayscale = "grayscale"
	OpBlur      = "blur"
	OpSharpen   = "sharpen"
	OpFormat    = "format"
	OpQuality   = "quality"
)

// Fit modes for the resize operation.
const (
	FitContain = "contain"
	FitCover   = "cover"
	FitInside  = "inside"
	FitOutside = "outside"
	FitFill    = "fill"
)

// Operation is one primitive transformation step: a name from the closed set
// above plus its ordered argument list. Operations are applied in the order
// they appear in the request.
type Operation struct {
	Name string        `json:"name"`
	Args []interface{} `json:"args"`
}

// ResizeArgs decodes the argument list of a resize operation.
type ResizeArgs struct {
	Width              int
	Height             int
	Fit                string
	WithoutEnlargement bool
}

// Resize builds a resize operation.
func Resize(width, height int, fit string, withoutEnlargement bool) Operation {
	return Operation{
		Name: OpResize,
		Args: []interface{}{width, height, fit, withoutEnlargement},
	}
}

// Rotate builds a rotate operation (degrees, counter-clockwise multiples of 90
// are lossless; arbitrary angles are filled with black).
func Rotate(degrees int) Operation {
	return Operation{Name: OpRotate, Args: []interface{}{degrees}}
}

// Format builds a format-conversion operation.
func Format(format string) Operation {
	return Operation{Name: OpFormat, Args: []interface{}{strings.ToLower(format)}}
}

// Quality builds an encode-quality operation (1-100, JPEG only).
func Quality(quality int) Operation {
	return Operation{Name: OpQuality, Args: []interface{}{quality}}
}

// FromParams expands inline transformation params to the ordered operation
// list: resize first, then rotate, then the raw transforms list in request
// order, then format, then quality. The expansion
// is pure; identical params always produce an identical list, which the
// cache-key derivation depends on.
func FromParams(p *models.TransformationParams) []Operation {
	if p == nil {
		return nil
	}

	var ops []Operation
	if p.Width > 0 || p.Height > 0 {
		fit := p.Fit
		if fit == "" {
			fit = FitCover
		}
		ops = append(ops, Resize(p.Width, p.Height, fit, p.WithoutEnlargement))
	}
	if p.Rotate != 0 {
		ops = append(ops, Rotate(p.Rotate))
	}
	for _, raw := range p.Transforms {
		if len(raw) == 0 {
			continue
		}
		name, ok := argAsString(raw[0])
		if !ok {
			continue
		}
		ops = append(ops, Operation{Name: name, Args: raw[1:]})
	}
	if p.Format != "" {
		ops = append(ops, Format(p.Format))
	}
	if p.Quality > 0 {
		ops = append(ops, Quality(p.Quality))
	}
	return ops
}

// OutputFormat scans the operation list for a format-changing operation and
// returns the target format when present.
func OutputFormat(ops []Operation) (string, bool) {
	for _, op := range ops {
		if op.Name == OpFormat && len(op.Args) > 0 {
			if format, ok := argAsString(op.Args[0]); ok && format != "" {
				return format, true
			}
		}
	}
	return "", false
}

// HasExplicitRotate reports whether the list contains a rotate operation.
// Without one, EXIF auto-orientation is applied before any other work.
func HasExplicitRotate(ops []Operation) bool {
	for _, op := range ops {
		if op.Name == OpRotate {
			return true
		}
	}
	return false
}

// formatInfo maps the supported output formats to their encode format,
// file extension and content type.
var formatInfo = map[string]struct {
	Format      imaging.Format
	Extension   string
	ContentType string
}{
	"jpg":  {imaging.JPEG, ".jpg", "image/jpeg"},
	"jpeg": {imaging.JPEG, ".jpeg", "image/jpeg"},
	"png":  {imaging.PNG, ".png", "image/png"},
	"gif":  {imaging.GIF, ".gif", "image/gif"},
	"tif":  {imaging.TIFF, ".tif", "image/tiff"},
	"tiff": {imaging.TIFF, ".tiff", "image/tiff"},
	"bmp":  {imaging.BMP, ".bmp", "image/bmp"},
}

// TransformableTypes lists the content types eligible for transformation.
// Anything else is restreamed unmodified.
var TransformableTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/tiff",
	"image/bmp",
}

// IsTransformable reports whether a content type can go through the pixel
// pipeline.
func IsTransformable(contentType string) bool {
	for _, t := range TransformableTypes {
		if strings.EqualFold(contentType, t) {
			return true
		}
	}
	return false
}

// FormatExtension returns the file extension for an output format.
func FormatExtension(format string) (string, bool) {
	info, ok := formatInfo[strings.ToLower(format)]
	if !ok {
		return "", false
	}
	return info.Extension, true
}

// FormatContentType returns the content type for an output format.
func FormatContentType(format string) (string, bool) {
	info, ok := formatInfo[strings.ToLower(format)]
	if !ok {
		return "", false
	}
	return info.ContentType, true
}

// applyFunc applies one operation to a decoded image.
type applyFunc func(img image.Image, args []interface{}) (image.Image, error)

// dispatch is the static operation table. Format and quality are consumed by
// the encode step, so their entries are pixel no-ops.
var dispatch = map[string]applyFunc{
	OpResize:    applyResize,
	OpRotate:    applyRotate,
	OpFlip:      func(img image.Image, _ []interface{}) (image.Image, error) { return imaging.FlipV(img), nil },
	OpFlop:      func(img image.Image, _ []interface{}) (image.Image, error) { return imaging.FlipH(img), nil },
	OpGrayscale: func(img image.Image, _ []interface{}) (image.Image, error) { return imaging.Grayscale(img), nil },
	OpBlur:      applyBlur,
	OpSharpen:   applySharpen,
	OpFormat:    func(img image.Image, _ []interface{}) (image.Image, error) { return img, nil },
	OpQuality:   func(img image.Image, _ []interface{}) (image.Image, error) { return img, nil },
}

// ApplyOperations runs every operation against the image in list order.
func ApplyOperations(img image.Image, ops []Operation) (image.Image, error) {
	for _, op := range ops {
		apply, ok := dispatch[op.Name]
		if !ok {
			return nil, fmt.Errorf("unknown transformation operation: %s", op.Name)
		}
		next, err := apply(img, op.Args)
		if err != nil {
			return nil, fmt.Errorf("operation %s failed: %w", op.Name, err)
		}
		img = next
	}
	return img, nil
}

func applyResize(img image.Image, args []interface{}) (image.Image, error) {
	resize, err := decodeResizeArgs(args)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	if resize.WithoutEnlargement && resize.Width >= srcW && resize.Height >= srcH {
		return img, nil
	}

	w, h := resize.Width, resize.Height
	switch resize.Fit {
	case FitContain, FitInside:
		if w == 0 || h == 0 {
			return imaging.Resize(img, w, h, imaging.Lanczos), nil
		}
		return imaging.Fit(img, w, h, imaging.Lanczos), nil
	case FitCover, FitFill:
		if w == 0 {
			w = srcW
		}
		if h == 0 {
			h = srcH
		}
		return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos), nil
	case FitOutside:
		return resizeOutside(img, w, h), nil
	default:
		return nil, fmt.Errorf("unsupported fit mode: %s", resize.Fit)
	}
}

// resizeOutside scales to the smallest image that covers both target
// dimensions while preserving aspect ratio, without cropping.
func resizeOutside(img image.Image, w, h int) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 || (w == 0 && h == 0) {
		return img
	}

	scaleW := float64(w) / float64(srcW)
	scaleH := float64(h) / float64(srcH)
	scale := scaleW
	if scaleH > scale {
		scale = scaleH
	}

	return imaging.Resize(img, int(float64(srcW)*scale+0.5), 0, imaging.Lanczos)
}

func applyRotate(img image.Image, args []interface{}) (image.Image, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("rotate requires an angle argument")
	}
	degrees, ok := argAsInt(args[0])
	if !ok {
		return nil, fmt.Errorf("rotate angle must be a number")
	}
	// imaging rotates counter-clockwise; requests use clockwise degrees.
	return imaging.Rotate(img, float64(-degrees), image.Black), nil
}

func applyBlur(img image.Image, args []interface{}) (image.Image, error) {
	sigma := 1.0
	if len(args) > 0 {
		if v, ok := argAsFloat(args[0]); ok {
			sigma = v
		}
	}
	return imaging.Blur(img, sigma), nil
}

func applySharpen(img image.Image, args []interface{}) (image.Image, error) {
	sigma := 1.0
	if len(args) > 0 {
		if v, ok := argAsFloat(args[0]); ok {
			sigma = v
		}
	}
	return imaging.Sharpen(img, sigma), nil
}

// DecodeResizeArgs exposes resize argument decoding for the offload encoder.
func DecodeResizeArgs(args []interface{}) (*ResizeArgs, error) {
	return decodeResizeArgs(args)
}

func decodeResizeArgs(args []interface{}) (*ResizeArgs, error) {
	resize := &ResizeArgs{}
	if len(args) > 0 {
		if v, ok := argAsInt(args[0]); ok {
			resize.Width = v
		}
	}
	if len(args) > 1 {
		if v, ok := argAsInt(args[1]); ok {
			resize.Height = v
		}
	}
	if len(args) > 2 {
		if v, ok := argAsString(args[2]); ok {
			resize.Fit = v
		}
	}
	if len(args) > 3 {
		if v, ok := args[3].(bool); ok {
			resize.WithoutEnlargement = v
		}
	}
	if resize.Width == 0 && resize.Height == 0 {
		return nil, fmt.Errorf("resize requires a width or height")
	}
	return resize, nil
}

// Args arrive either as native ints (built in-process) or as float64 when the
// operation list round-tripped through JSON.
func argAsInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func argAsFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func argAsString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
