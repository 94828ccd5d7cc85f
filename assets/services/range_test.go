// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7maceX1D/assetd/assets/models"
)

func ptr(v int64) *int64 { return &v }

func TestNormalizeRange_NilPassesThrough(t *testing.T) {
	rng, err := NormalizeRange(nil, 100)
	require.NoError(t, err)
	assert.Nil(t, rng)
}

func TestNormalizeRange_Rejections(t *testing.T) {
	tests := []struct {
		name string
		rng  *models.Range
	}{
		{name: "both bounds absent", rng: &models.Range{}},
		{name: "end equals start", rng: &models.Range{Start: ptr(10), End: ptr(10)}},
		{name: "end before start", rng: &models.Range{Start: ptr(10), End: ptr(5)}},
		{name: "start at filesize", rng: &models.Range{Start: ptr(100)}},
		{name: "start beyond filesize", rng: &models.Range{Start: ptr(150)}},
		{name: "zero suffix length", rng: &models.Range{End: ptr(0)}},
		{name: "negative suffix length", rng: &models.Range{End: ptr(-5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeRange(tt.rng, 100)
			assert.ErrorIs(t, err, ErrRangeNotSatisfiable)
		})
	}
}

func TestNormalizeRange_Normalization(t *testing.T) {
	tests := []struct {
		name      string
		rng       *models.Range
		size      int64
		wantStart int64
		wantEnd   int64
	}{
		{name: "both bounds kept", rng: &models.Range{Start: ptr(10), End: ptr(20)}, size: 100, wantStart: 10, wantEnd: 20},
		{name: "end clamped to filesize", rng: &models.Range{Start: ptr(10), End: ptr(500)}, size: 100, wantStart: 10, wantEnd: 99},
		{name: "start only defaults end", rng: &models.Range{Start: ptr(40)}, size: 100, wantStart: 40, wantEnd: 99},
		{name: "negative start clamps to zero", rng: &models.Range{Start: ptr(-5), End: ptr(10)}, size: 100, wantStart: 0, wantEnd: 10},
		{name: "last N bytes", rng: &models.Range{End: ptr(30)}, size: 100, wantStart: 70, wantEnd: 99},
		{name: "suffix covering whole file", rng: &models.Range{End: ptr(100)}, size: 100, wantStart: 0, wantEnd: 99},
		{name: "suffix beyond whole file", rng: &models.Range{End: ptr(500)}, size: 100, wantStart: 0, wantEnd: 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, err := NormalizeRange(tt.rng, tt.size)
			require.NoError(t, err)
			require.NotNil(t, rng)
			assert.Equal(t, tt.wantStart, *rng.Start)
			assert.Equal(t, tt.wantEnd, *rng.End)
		})
	}
}
