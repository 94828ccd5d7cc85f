// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"testing"

	uuid "github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7maceX1D/assetd/assets/models"
)

type fixedRepository struct {
	publicIDs []uuid.UUID
}

func (f *fixedRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	return nil, nil
}

func (f *fixedRepository) FindPublicAssetIDs(ctx context.Context) ([]uuid.UUID, error) {
	return f.publicIDs, nil
}

func (f *fixedRepository) FindPresetByKey(ctx context.Context, key string) (*models.TransformationPreset, error) {
	return nil, nil
}

func TestWithStaticPublicAssets_MergesWithoutDuplicates(t *testing.T) {
	stored := uuid.Must(uuid.NewV4())
	static := uuid.Must(uuid.NewV4())

	repo := WithStaticPublicAssets(
		&fixedRepository{publicIDs: []uuid.UUID{stored, static}},
		[]uuid.UUID{static},
	)

	ids, err := repo.FindPublicAssetIDs(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{stored, static}, ids)
}

func TestWithStaticPublicAssets_NoStaticIDsReturnsOriginal(t *testing.T) {
	inner := &fixedRepository{}
	repo := WithStaticPublicAssets(inner, nil)
	assert.Same(t, Repository(inner), repo)
}
