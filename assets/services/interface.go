// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"fmt"
	"io"

	"github.com/7maceX1D/assetd/assets/models"
	"github.com/7maceX1D/assetd/assets/transform"
)

var (
	// ErrForbidden covers malformed ids, missing records, denied access and
	// missing original bytes. The cases are deliberately indistinguishable
	// to the caller so asset existence cannot be probed.
	ErrForbidden = fmt.Errorf("forbidden")

	// ErrRangeNotSatisfiable rejects byte ranges invalid against the file size.
	ErrRangeNotSatisfiable = fmt.Errorf("range not satisfiable")

	// ErrIllegalTransformation rejects oversized or dimensionless sources
	// before any resource-intensive work begins.
	ErrIllegalTransformation = transform.ErrIllegalTransformation

	// ErrInvalidQuery rejects requests naming an unknown transformation preset.
	ErrInvalidQuery = fmt.Errorf("invalid query")
)

// Asset is a served file: a range-aware stream plus the metadata and
// storage stat of whatever was actually served (original or variant).
// Range carries the bounds the stream was clipped to, normalized against
// Stat.Size; nil means the whole file.
type Asset struct {
	Stream io.ReadCloser
	File   *models.File
	Stat   *models.Stat
	Range  *models.Range
}

// AssetService defines the interface for asset retrieval operations
type AssetService interface {
	// GetAsset resolves the file, applies the requested transformation
	// (serving a cached variant when one exists) and returns a range-aware
	// stream. privileged callers skip the external authorization check.
	GetAsset(ctx context.Context, id string, req *models.TransformationRequest, rng *models.Range, privileged bool) (*Asset, error)

	// GetURL returns a provider URL for the asset, offloading eligible
	// transformations to the storage provider's native image processing.
	// An empty url with no error signals "not eligible, use GetAsset".
	GetURL(ctx context.Context, id string, req *models.TransformationRequest, privileged bool) (string, *models.File, error)
}
