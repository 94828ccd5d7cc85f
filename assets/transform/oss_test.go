// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeOSSProcess_FitModeMapping(t *testing.T) {
	tests := []struct {
		fit  string
		mode string
	}{
		{FitContain, "lfit"},
		{FitCover, "fill"},
		{FitInside, "lfit"},
		{FitOutside, "fit"},
		{FitFill, "fill"},
	}

	for _, tt := range tests {
		t.Run(tt.fit, func(t *testing.T) {
			url := EncodeOSSProcess("https://bucket.example.com/photo.jpg",
				[]Operation{Resize(200, 300, tt.fit, false)})
			assert.Contains(t, url, "m_"+tt.mode)
			assert.Contains(t, url, "w_200")
			assert.Contains(t, url, "h_300")
			assert.Contains(t, url, "x-oss-process=")
		})
	}
}

func TestEncodeOSSProcess_UnsupportedFitIsIneligible(t *testing.T) {
	url := EncodeOSSProcess("https://bucket.example.com/photo.jpg",
		[]Operation{Resize(200, 300, "stretch", false)})
	assert.Equal(t, "", url, "unknown fit modes must force the local fallback")
}

func TestEncodeOSSProcess_NonResizeOperationIsIneligible(t *testing.T) {
	url := EncodeOSSProcess("https://bucket.example.com/photo.jpg",
		[]Operation{Resize(200, 300, FitCover, false), Rotate(90)})
	assert.Equal(t, "", url, "only pure resize lists may be offloaded")
}

func TestEncodeOSSProcess_EmptyOperations(t *testing.T) {
	assert.Equal(t, "", EncodeOSSProcess("https://bucket.example.com/photo.jpg", nil))
}

func TestEncodeOSSProcess_PreservesBaseURL(t *testing.T) {
	url := EncodeOSSProcess("https://bucket.example.com/dir/photo.jpg",
		[]Operation{Resize(100, 0, FitContain, false)})
	assert.Contains(t, url, "https://bucket.example.com/dir/photo.jpg?")
	assert.Contains(t, url, "w_100")
	assert.NotContains(t, url, "h_")
}
