// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"

	uuid "github.com/gofrs/uuid"
)

type staticPublicRepository struct {
	Repository
	ids []uuid.UUID
}

// WithStaticPublicAssets wraps a repository so the given ids are treated as
// public system assets in addition to the ones recorded in settings. Used to
// lift env-configured asset ids (logo, background, foreground) into the same
// lookup path as database-configured ones.
func WithStaticPublicAssets(repo Repository, ids []uuid.UUID) Repository {
	if len(ids) == 0 {
		return repo
	}
	return &staticPublicRepository{Repository: repo, ids: ids}
}

func (r *staticPublicRepository) FindPublicAssetIDs(ctx context.Context) ([]uuid.UUID, error) {
	stored, err := r.Repository.FindPublicAssetIDs(ctx)
	if err != nil {
		return nil, err
	}

	merged := append([]uuid.UUID{}, r.ids...)
	for _, id := range stored {
		seen := false
		for _, existing := range merged {
			if existing == id {
				seen = true
				break
			}
		}
		if !seen {
			merged = append(merged, id)
		}
	}
	return merged, nil
}
