// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transform

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7maceX1D/assetd/assets/models"
)

func TestFromParams_Expansion(t *testing.T) {
	params := &models.TransformationParams{
		Width:   200,
		Height:  300,
		Fit:     FitContain,
		Format:  "png",
		Quality: 80,
	}

	ops := FromParams(params)
	require.Len(t, ops, 3)
	assert.Equal(t, OpResize, ops[0].Name)
	assert.Equal(t, OpFormat, ops[1].Name)
	assert.Equal(t, OpQuality, ops[2].Name)
}

func TestFromParams_Deterministic(t *testing.T) {
	params := &models.TransformationParams{Width: 100, Fit: FitCover, Quality: 70}

	assert.Equal(t, HashOperations(FromParams(params)), HashOperations(FromParams(params)),
		"resolver must be pure: identical input, byte-identical output")
}

func TestFromParams_Empty(t *testing.T) {
	assert.Nil(t, FromParams(nil))
	assert.Empty(t, FromParams(&models.TransformationParams{}))
}

func TestFromParams_DefaultFitIsCover(t *testing.T) {
	ops := FromParams(&models.TransformationParams{Width: 100, Height: 100})
	require.Len(t, ops, 1)

	resize, err := DecodeResizeArgs(ops[0].Args)
	require.NoError(t, err)
	assert.Equal(t, FitCover, resize.Fit)
}

func TestFromParams_RawTransformsList(t *testing.T) {
	params := &models.TransformationParams{
		Width: 100,
		Transforms: [][]interface{}{
			{"grayscale"},
			{"blur", 2.5},
		},
		Format: "jpg",
	}

	ops := FromParams(params)
	require.Len(t, ops, 4)
	assert.Equal(t, OpResize, ops[0].Name)
	assert.Equal(t, OpGrayscale, ops[1].Name)
	assert.Equal(t, OpBlur, ops[2].Name)
	assert.Equal(t, []interface{}{2.5}, ops[2].Args)
	assert.Equal(t, OpFormat, ops[3].Name)
}

func TestOutputFormat(t *testing.T) {
	format, ok := OutputFormat([]Operation{Resize(10, 10, FitCover, false), Format("PNG")})
	assert.True(t, ok)
	assert.Equal(t, "png", format)

	_, ok = OutputFormat([]Operation{Resize(10, 10, FitCover, false)})
	assert.False(t, ok)
}

func TestHasExplicitRotate(t *testing.T) {
	assert.True(t, HasExplicitRotate([]Operation{Rotate(90)}))
	assert.False(t, HasExplicitRotate([]Operation{Resize(10, 10, FitCover, false)}))
}

func TestIsTransformable(t *testing.T) {
	assert.True(t, IsTransformable("image/jpeg"))
	assert.True(t, IsTransformable("IMAGE/PNG"))
	assert.False(t, IsTransformable("application/pdf"))
	assert.False(t, IsTransformable("video/mp4"))
}

func testImage(w, h int) image.Image {
	return imaging.New(w, h, color.NRGBA{R: 128, G: 64, B: 32, A: 255})
}

func TestApplyOperations_ResizeFitModes(t *testing.T) {
	src := testImage(400, 200)

	tests := []struct {
		name       string
		fit        string
		wantWidth  int
		wantHeight int
	}{
		{name: "contain keeps aspect ratio within bounds", fit: FitContain, wantWidth: 100, wantHeight: 50},
		{name: "cover crops to exact size", fit: FitCover, wantWidth: 100, wantHeight: 100},
		{name: "fill crops to exact size", fit: FitFill, wantWidth: 100, wantHeight: 100},
		{name: "outside covers both bounds without cropping", fit: FitOutside, wantWidth: 200, wantHeight: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ApplyOperations(src, []Operation{Resize(100, 100, tt.fit, false)})
			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, out.Bounds().Dx())
			assert.Equal(t, tt.wantHeight, out.Bounds().Dy())
		})
	}
}

func TestApplyOperations_WithoutEnlargement(t *testing.T) {
	src := testImage(50, 50)

	out, err := ApplyOperations(src, []Operation{Resize(200, 200, FitCover, true)})
	require.NoError(t, err)
	assert.Equal(t, 50, out.Bounds().Dx(), "upscale must be skipped when withoutEnlargement is set")
}

func TestApplyOperations_OrderPreserved(t *testing.T) {
	src := testImage(400, 200)

	// Resize-then-rotate and rotate-then-resize give different dimensions.
	first, err := ApplyOperations(src, []Operation{Resize(100, 50, FitFill, false), Rotate(90)})
	require.NoError(t, err)
	second, err := ApplyOperations(src, []Operation{Rotate(90), Resize(100, 50, FitFill, false)})
	require.NoError(t, err)

	assert.Equal(t, 50, first.Bounds().Dx())
	assert.Equal(t, 100, first.Bounds().Dy())
	assert.Equal(t, 100, second.Bounds().Dx())
	assert.Equal(t, 50, second.Bounds().Dy())
}

func TestApplyOperations_PixelFilters(t *testing.T) {
	src := testImage(20, 10)

	ops := []Operation{
		{Name: OpFlip},
		{Name: OpFlop},
		{Name: OpGrayscale},
		{Name: OpBlur, Args: []interface{}{1.5}},
		{Name: OpSharpen},
	}
	out, err := ApplyOperations(src, ops)
	require.NoError(t, err)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 10, out.Bounds().Dy())
}

func TestApplyOperations_UnknownOperation(t *testing.T) {
	_, err := ApplyOperations(testImage(10, 10), []Operation{{Name: "sepia"}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transformation operation")
}

func TestApplyOperations_UnsupportedFit(t *testing.T) {
	_, err := ApplyOperations(testImage(10, 10), []Operation{Resize(5, 5, "stretch", false)})
	assert.Error(t, err)
}
