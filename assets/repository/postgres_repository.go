// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	uuid "github.com/gofrs/uuid"

	"github.com/7maceX1D/assetd/assets/models"
	"github.com/7maceX1D/assetd/internal/database/postgres"
)

type postgresRepository struct {
	client *postgres.Client
	schema string
}

// NewPostgresRepository creates a repository using the default schema.
func NewPostgresRepository(client *postgres.Client) Repository {
	return &postgresRepository{client: client, schema: ""}
}

// NewPostgresRepositoryWithSchema creates a repository using a specific schema.
func NewPostgresRepositoryWithSchema(client *postgres.Client, schema string) Repository {
	return &postgresRepository{client: client, schema: schema}
}

func (r *postgresRepository) prefixSchema(query string) string {
	if r.schema != "" {
		return fmt.Sprintf(query, r.schema+".")
	}
	return fmt.Sprintf(query, "")
}

// FindByID retrieves a file record by its ID. A missing record returns
// (nil, nil); callers translate that into their own failure mode.
func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	query := `
		SELECT id, storage, filename_disk, filename_download, mime_type, size_bytes, width, height, uploaded_at, modified_at
		FROM %sfiles
		WHERE id = $1
	`

	var file models.File
	err := r.client.DB().GetContext(ctx, &file, r.prefixSchema(query), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find file: %w", err)
	}
	return &file, nil
}

// FindPublicAssetIDs returns the configured public system asset ids from the
// settings table.
func (r *postgresRepository) FindPublicAssetIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		SELECT project_logo, public_background, public_foreground
		FROM %ssettings
		LIMIT 1
	`

	var row struct {
		Logo       *uuid.UUID `db:"project_logo"`
		Background *uuid.UUID `db:"public_background"`
		Foreground *uuid.UUID `db:"public_foreground"`
	}
	err := r.client.DB().GetContext(ctx, &row, r.prefixSchema(query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var ids []uuid.UUID
	for _, id := range []*uuid.UUID{row.Logo, row.Background, row.Foreground} {
		if id != nil {
			ids = append(ids, *id)
		}
	}
	return ids, nil
}

// FindPresetByKey resolves a stored transformation preset from settings.
// Presets live in a jsonb column keyed by preset name.
func (r *postgresRepository) FindPresetByKey(ctx context.Context, key string) (*models.TransformationPreset, error) {
	query := `
		SELECT storage_asset_presets -> $1
		FROM %ssettings
		LIMIT 1
	`

	var raw []byte
	err := r.client.DB().GetContext(ctx, &raw, r.prefixSchema(query), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load preset: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var params models.TransformationParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("failed to decode preset %q: %w", key, err)
	}

	return &models.TransformationPreset{Key: key, Params: &params}, nil
}
