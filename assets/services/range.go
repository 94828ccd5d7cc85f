// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"fmt"

	"github.com/7maceX1D/assetd/assets/models"
)

// NormalizeRange resolves an optional raw byte range against the known file
// size. A nil range means "serve whole" and passes through. After
// normalization both bounds are set and 0 <= start <= end <= size-1.
//
// An end-only range of N bytes means "the last N bytes"; when N covers the
// whole file it clamps to a full-file range instead of failing.
func NormalizeRange(r *models.Range, size int64) (*models.Range, error) {
	if r == nil {
		return nil, nil
	}

	if r.Start == nil && r.End == nil {
		return nil, fmt.Errorf("%w: no range bounds given", ErrRangeNotSatisfiable)
	}

	if r.Start != nil && r.End != nil && *r.End <= *r.Start {
		return nil, fmt.Errorf("%w: end must be greater than start", ErrRangeNotSatisfiable)
	}

	if r.Start != nil && *r.Start >= size {
		return nil, fmt.Errorf("%w: start is beyond the end of the file", ErrRangeNotSatisfiable)
	}

	if r.Start == nil && r.End != nil && *r.End <= 0 {
		return nil, fmt.Errorf("%w: suffix length must be positive", ErrRangeNotSatisfiable)
	}

	var start, end int64

	switch {
	case r.Start == nil:
		// Last-N-bytes form.
		if *r.End >= size {
			start = 0
			end = size - 1
		} else {
			start = size - *r.End
			end = size - 1
		}
	case r.End == nil:
		start = *r.Start
		end = size - 1
	default:
		start = *r.Start
		end = *r.End
	}

	if start < 0 {
		start = 0
	}
	if end > size-1 {
		end = size - 1
	}

	return &models.Range{Start: &start, End: &end}, nil
}
