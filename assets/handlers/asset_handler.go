// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/schema"

	assetErrors "github.com/7maceX1D/assetd/assets/errors"
	"github.com/7maceX1D/assetd/assets/models"
	"github.com/7maceX1D/assetd/assets/services"
	"github.com/7maceX1D/assetd/internal/middleware/servicekey"
	platformconfig "github.com/7maceX1D/assetd/internal/platform/config"
)

// AssetHandler handles all asset-serving HTTP requests
type AssetHandler struct {
	assetService services.AssetService
	decoder      *schema.Decoder
	cacheTTL     int
}

// NewAssetHandler creates a new AssetHandler with injected dependencies
func NewAssetHandler(assetService services.AssetService, cfg *platformconfig.Config) *AssetHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &AssetHandler{
		assetService: assetService,
		decoder:      decoder,
		cacheTTL:     int(cfg.Storage.AssetCacheTTL.Seconds()),
	}
}

// parseTransformationRequest decodes the transformation query parameters.
func (h *AssetHandler) parseTransformationRequest(c *fiber.Ctx) (*models.TransformationRequest, error) {
	values := make(map[string][]string)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		values[string(key)] = append(values[string(key)], string(value))
	})

	var params models.TransformationParams
	if err := h.decoder.Decode(&params, values); err != nil {
		return nil, fmt.Errorf("invalid transformation parameters: %w", err)
	}

	// The raw operation list arrives as a JSON array, which gorilla/schema
	// cannot decode.
	if raw := c.Query("transforms"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params.Transforms); err != nil {
			return nil, fmt.Errorf("invalid transforms parameter: %w", err)
		}
	}

	req := &models.TransformationRequest{
		Key:         params.Key,
		CacheSuffix: c.Query("suffix"),
	}
	if params.Key == "" {
		req.Params = &params
	}
	return req, nil
}

// parseRangeHeader parses a "bytes=start-end" Range header into the raw
// optional bounds. Multi-range requests serve only the first range.
func parseRangeHeader(header string) (*models.Range, error) {
	if header == "" {
		return nil, nil
	}

	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return nil, fmt.Errorf("unsupported range unit")
	}
	if i := strings.IndexByte(spec, ','); i >= 0 {
		spec = spec[:i]
	}

	startStr, endStr, ok := strings.Cut(strings.TrimSpace(spec), "-")
	if !ok {
		return nil, fmt.Errorf("malformed range")
	}

	rng := &models.Range{}
	if startStr != "" {
		start, err := strconv.ParseInt(startStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed range start")
		}
		rng.Start = &start
	}
	if endStr != "" {
		end, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed range end")
		}
		// In the suffix form "bytes=-N" the end is a length, resolved
		// during normalization.
		rng.End = &end
	}

	if rng.Start == nil && rng.End == nil {
		return nil, fmt.Errorf("empty range")
	}
	return rng, nil
}

// GetAsset serves an asset, optionally transformed and range-restricted.
// GET /assets/:id
func (h *AssetHandler) GetAsset(c *fiber.Ctx) error {
	req, err := h.parseTransformationRequest(c)
	if err != nil {
		return assetErrors.HandleInvalidRequestError(c, err.Error())
	}

	rng, err := parseRangeHeader(c.Get(fiber.HeaderRange))
	if err != nil {
		return assetErrors.HandleServiceError(c, fmt.Errorf("%w: %v", services.ErrRangeNotSatisfiable, err))
	}

	privileged, _ := c.Locals(servicekey.LocalsPrivileged).(bool)

	asset, err := h.assetService.GetAsset(c.UserContext(), c.Params("id"), req, rng, privileged)
	if err != nil {
		return assetErrors.HandleServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, asset.File.MimeType)
	c.Set(fiber.HeaderAcceptRanges, "bytes")
	c.Set(fiber.HeaderCacheControl, fmt.Sprintf("max-age=%d", h.cacheTTL))
	c.Set(fiber.HeaderLastModified, asset.Stat.ModifiedAt.UTC().Format(http.TimeFormat))

	if _, download := c.Queries()["download"]; download {
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=%q", asset.File.FilenameDownload))
	}

	// The service normalized the range against the size of the file it
	// actually serves; headers and stream length come from the same bounds.
	if asset.Range != nil {
		start, end := *asset.Range.Start, *asset.Range.End
		c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes %d-%d/%d", start, end, asset.Stat.Size))
		c.Set(fiber.HeaderContentLength, strconv.FormatInt(end-start+1, 10))
		c.Status(http.StatusPartialContent)
		return c.SendStream(asset.Stream, int(end-start+1))
	}

	c.Set(fiber.HeaderContentLength, strconv.FormatInt(asset.Stat.Size, 10))
	return c.SendStream(asset.Stream, int(asset.Stat.Size))
}

// GetAssetURL returns a provider URL for the asset, offloading the
// transformation to the provider when eligible.
// GET /assets/:id/url
func (h *AssetHandler) GetAssetURL(c *fiber.Ctx) error {
	req, err := h.parseTransformationRequest(c)
	if err != nil {
		return assetErrors.HandleInvalidRequestError(c, err.Error())
	}

	privileged, _ := c.Locals(servicekey.LocalsPrivileged).(bool)

	url, file, err := h.assetService.GetURL(c.UserContext(), c.Params("id"), req, privileged)
	if err != nil {
		return assetErrors.HandleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"url":  url,
		"file": file,
	})
}
