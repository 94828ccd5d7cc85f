// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"

	uuid "github.com/gofrs/uuid"

	"github.com/7maceX1D/assetd/assets/models"
)

// Repository defines the interface for file-metadata store operations.
// Records are read-only snapshots; this service never persists them back.
type Repository interface {
	// FindByID retrieves a file record by its ID, or nil when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*models.File, error)

	// FindPublicAssetIDs returns the ids of the configured public system
	// assets (project logo, background, foreground) from settings.
	FindPublicAssetIDs(ctx context.Context) ([]uuid.UUID, error)

	// FindPresetByKey resolves a stored transformation preset by its key,
	// or nil when no such preset exists.
	FindPresetByKey(ctx context.Context, key string) (*models.TransformationPreset, error)
}
