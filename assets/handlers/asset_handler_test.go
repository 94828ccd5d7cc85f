// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7maceX1D/assetd/assets/models"
	"github.com/7maceX1D/assetd/assets/services"
	platformconfig "github.com/7maceX1D/assetd/internal/platform/config"
)

// stubAssetService serves fixed content whose length deliberately differs
// from the file record's SizeBytes, the way a transformed variant does.
type stubAssetService struct {
	content []byte
	file    *models.File
}

func (s *stubAssetService) GetAsset(ctx context.Context, id string, req *models.TransformationRequest, rng *models.Range, privileged bool) (*services.Asset, error) {
	size := int64(len(s.content))
	rng, err := services.NormalizeRange(rng, size)
	if err != nil {
		return nil, err
	}

	data := s.content
	if rng != nil {
		data = data[*rng.Start : *rng.End+1]
	}

	return &services.Asset{
		Stream: io.NopCloser(bytes.NewReader(data)),
		File:   s.file,
		Stat:   &models.Stat{Size: size, ModifiedAt: time.Unix(1700000000, 0)},
		Range:  rng,
	}, nil
}

func (s *stubAssetService) GetURL(ctx context.Context, id string, req *models.TransformationRequest, privileged bool) (string, *models.File, error) {
	return "", nil, nil
}

func newTestApp(content []byte, file *models.File) *fiber.App {
	cfg := &platformconfig.Config{
		Storage: platformconfig.StorageConfig{AssetCacheTTL: time.Minute},
	}
	handler := NewAssetHandler(&stubAssetService{content: content, file: file}, cfg)

	app := fiber.New()
	app.Get("/assets/:id", handler.GetAsset)
	return app
}

func TestGetAsset_RangedResponseHeadersMatchStream(t *testing.T) {
	content := make([]byte, 300)
	for i := range content {
		content[i] = byte(i)
	}
	file := &models.File{
		ID:               uuid.Must(uuid.NewV4()),
		FilenameDisk:     "pic.png",
		FilenameDownload: "pic.png",
		MimeType:         "image/png",
		// Recorded size of the original, not of the served bytes.
		SizeBytes: 82,
	}

	tests := []struct {
		name      string
		header    string
		wantBody  []byte
		wantRange string
	}{
		{name: "open ended covers served length", header: "bytes=0-", wantBody: content, wantRange: "bytes 0-299/300"},
		{name: "slice of served bytes", header: "bytes=100-199", wantBody: content[100:200], wantRange: "bytes 100-199/300"},
		{name: "beyond the original's recorded size", header: "bytes=90-289", wantBody: content[90:290], wantRange: "bytes 90-289/300"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(content, file)

			req := httptest.NewRequest(http.MethodGet, "/assets/"+file.ID.String()+"?width=100&height=100", nil)
			req.Header.Set(fiber.HeaderRange, tt.header)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusPartialContent, resp.StatusCode)
			assert.Equal(t, tt.wantRange, resp.Header.Get(fiber.HeaderContentRange))

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, body, "declared length and streamed bytes must agree")
		})
	}
}

func TestGetAsset_WholeFileResponse(t *testing.T) {
	content := []byte("whole file body")
	file := &models.File{
		ID:               uuid.Must(uuid.NewV4()),
		FilenameDisk:     "doc.bin",
		FilenameDownload: "doc.bin",
		MimeType:         "application/octet-stream",
		SizeBytes:        int64(len(content)),
	}

	app := newTestApp(content, file)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/assets/"+file.ID.String(), nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(fiber.HeaderContentRange))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, content, body)
}

func TestParseRangeHeader(t *testing.T) {
	i64 := func(v int64) *int64 { return &v }

	tests := []struct {
		name      string
		header    string
		wantStart *int64
		wantEnd   *int64
		wantNil   bool
		wantErr   bool
	}{
		{name: "absent header", header: "", wantNil: true},
		{name: "full form", header: "bytes=0-499", wantStart: i64(0), wantEnd: i64(499)},
		{name: "open ended", header: "bytes=500-", wantStart: i64(500)},
		{name: "suffix form", header: "bytes=-200", wantEnd: i64(200)},
		{name: "multi range keeps first", header: "bytes=0-99,200-299", wantStart: i64(0), wantEnd: i64(99)},
		{name: "wrong unit", header: "items=0-5", wantErr: true},
		{name: "no bounds", header: "bytes=-", wantErr: true},
		{name: "garbage", header: "bytes=abc-def", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, err := parseRangeHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, rng)
				return
			}
			require.NotNil(t, rng)
			if tt.wantStart != nil {
				require.NotNil(t, rng.Start)
				assert.Equal(t, *tt.wantStart, *rng.Start)
			} else {
				assert.Nil(t, rng.Start)
			}
			if tt.wantEnd != nil {
				require.NotNil(t, rng.End)
				assert.Equal(t, *tt.wantEnd, *rng.End)
			} else {
				assert.Nil(t, rng.End)
			}
		})
	}
}
