// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"fmt"

	uuid "github.com/gofrs/uuid"

	"github.com/7maceX1D/assetd/assets/access"
	"github.com/7maceX1D/assetd/assets/models"
	"github.com/7maceX1D/assetd/assets/repository"
	"github.com/7maceX1D/assetd/assets/transform"
	"github.com/7maceX1D/assetd/internal/pkg/log"
	"github.com/7maceX1D/assetd/storage/provider"
)

type service struct {
	repo     repository.Repository
	access   access.Checker
	storage  provider.Registry
	executor *transform.Executor
}

// NewAssetService creates a new asset service. The executor must be built
// around the single process-wide concurrency gate; the service itself holds
// no shared mutable state.
func NewAssetService(repo repository.Repository, checker access.Checker, registry provider.Registry, executor *transform.Executor) AssetService {
	return &service{
		repo:     repo,
		access:   checker,
		storage:  registry,
		executor: executor,
	}
}

// resolveFile runs the shared preamble of GetAsset and GetURL: id validation,
// authorization, metadata lookup and original-bytes existence. Every failure
// collapses into ErrForbidden.
func (s *service) resolveFile(ctx context.Context, id string, privileged bool) (*models.File, provider.Driver, error) {
	// Malformed ids fail before any storage or database call.
	fileID, err := uuid.FromString(id)
	if err != nil || fileID.Version() != uuid.V4 {
		return nil, nil, fmt.Errorf("%w: invalid asset id", ErrForbidden)
	}

	if !privileged {
		public, err := s.isPublicAsset(ctx, fileID)
		if err != nil {
			return nil, nil, err
		}
		if !public {
			if err := s.access.Check(ctx, "read", "file", fileID); err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrForbidden, err)
			}
		}
	}

	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load file metadata: %w", err)
	}
	if file == nil {
		// Deliberately Forbidden, not NotFound, to avoid leaking existence.
		return nil, nil, fmt.Errorf("%w: unknown asset", ErrForbidden)
	}

	driver, ok := s.storage.Get(file.Storage)
	if !ok {
		return nil, nil, fmt.Errorf("no storage driver registered for root %q", file.Storage)
	}

	exists, err := driver.Exists(ctx, file.FilenameDisk)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check original file: %w", err)
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w: asset bytes missing", ErrForbidden)
	}

	return file, driver, nil
}

func (s *service) isPublicAsset(ctx context.Context, id uuid.UUID) (bool, error) {
	publicIDs, err := s.repo.FindPublicAssetIDs(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load public asset ids: %w", err)
	}
	for _, publicID := range publicIDs {
		if publicID == id {
			return true, nil
		}
	}
	return false, nil
}

// resolveOperations expands the transformation request into the ordered
// operation list, resolving named presets through the metadata store.
func (s *service) resolveOperations(ctx context.Context, req *models.TransformationRequest) ([]transform.Operation, error) {
	if req == nil {
		return nil, nil
	}

	if req.Key != "" {
		preset, err := s.repo.FindPresetByKey(ctx, req.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve preset: %w", err)
		}
		if preset == nil {
			return nil, fmt.Errorf("%w: unknown transformation preset %q", ErrInvalidQuery, req.Key)
		}
		return transform.FromParams(preset.Params), nil
	}

	return transform.FromParams(req.Params), nil
}

// GetAsset orchestrates resolve, cache-check, execute-or-serve and byte-range
// semantics for one asset request.
func (s *service) GetAsset(ctx context.Context, id string, req *models.TransformationRequest, rng *models.Range, privileged bool) (*Asset, error) {
	file, driver, err := s.resolveFile(ctx, id, privileged)
	if err != nil {
		return nil, err
	}

	ops, err := s.resolveOperations(ctx, req)
	if err != nil {
		return nil, err
	}

	// Non-image content and empty operation lists restream the original.
	if len(ops) == 0 || !transform.IsTransformable(file.MimeType) {
		return s.serve(ctx, driver, file, file.FilenameDisk, rng)
	}

	variantName, err := s.applyOutputFormat(file, ops, req)
	if err != nil {
		return nil, err
	}

	// Cache hit: no transform work, no gate acquisition.
	exists, err := driver.Exists(ctx, variantName)
	if err != nil {
		return nil, fmt.Errorf("failed to check variant: %w", err)
	}
	if exists {
		return s.serve(ctx, driver, file, variantName, rng)
	}

	if err := s.materializeVariant(ctx, driver, file, ops, variantName); err != nil {
		return nil, err
	}

	return s.serve(ctx, driver, file, variantName, rng)
}

// applyOutputFormat derives the variant filename and overwrites the in-memory
// content type when the operation list changes the output format.
func (s *service) applyOutputFormat(file *models.File, ops []transform.Operation, req *models.TransformationRequest) (string, error) {
	newExt := ""
	if format, ok := transform.OutputFormat(ops); ok {
		ext, extOK := transform.FormatExtension(format)
		contentType, typeOK := transform.FormatContentType(format)
		if !extOK || !typeOK {
			return "", fmt.Errorf("%w: unsupported output format %q", ErrInvalidQuery, format)
		}
		newExt = ext
		file.MimeType = contentType
	}

	cacheSuffix := ""
	if req != nil {
		cacheSuffix = req.CacheSuffix
	}

	return transform.VariantName(file.FilenameDisk, ops, cacheSuffix, newExt), nil
}

// materializeVariant validates the dimension guard and runs the transform
// executor. Guard failures abort before any I/O against the variant path.
func (s *service) materializeVariant(ctx context.Context, driver provider.Driver, file *models.File, ops []transform.Operation, variantName string) error {
	if err := s.executor.ValidateDimensions(file); err != nil {
		return err
	}

	source, err := driver.GetStream(ctx, file.FilenameDisk, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to open source stream: %w", err)
	}
	defer source.Close()

	log.InfoWithContext(ctx, "materializing variant %s for file %s", variantName, file.ID)
	return s.executor.Run(ctx, driver, source, file, ops, variantName, file.MimeType)
}

// serve opens a range-aware stream over name and pairs it with the stat of
// the actually served file. The byte range indexes the final served stream,
// so it is normalized here against the size of that file (original or
// variant, which differ in length after a transform), never against the
// original's recorded size.
func (s *service) serve(ctx context.Context, driver provider.Driver, file *models.File, name string, rng *models.Range) (*Asset, error) {
	stat, err := driver.GetStat(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to stat served file: %w", err)
	}

	rng, err = NormalizeRange(rng, stat.Size)
	if err != nil {
		return nil, err
	}

	var start, end *int64
	if rng != nil {
		start, end = rng.Start, rng.End
	}

	stream, err := driver.GetStream(ctx, name, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	return &Asset{
		Stream: stream,
		File:   file,
		Stat:   &models.Stat{Size: stat.Size, ModifiedAt: stat.ModifiedAt},
		Range:  rng,
	}, nil
}

// GetURL offloads eligible transformations to the storage provider's native
// image processing. Ineligible drivers return an empty url and nil file so
// the caller falls back to GetAsset.
func (s *service) GetURL(ctx context.Context, id string, req *models.TransformationRequest, privileged bool) (string, *models.File, error) {
	file, driver, err := s.resolveFile(ctx, id, privileged)
	if err != nil {
		return "", nil, err
	}

	if driver.DriverName() != transform.OSSDriverName {
		return "", nil, nil
	}

	ops, err := s.resolveOperations(ctx, req)
	if err != nil {
		return "", nil, err
	}

	originalURL, err := driver.GetURL(ctx, file.FilenameDisk)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve provider URL: %w", err)
	}

	if len(ops) == 0 || !transform.IsTransformable(file.MimeType) {
		return originalURL, file, nil
	}

	if file.SizeBytes < transform.OSSSizeLimit {
		if rewritten := transform.EncodeOSSProcess(originalURL, ops); rewritten != "" {
			return rewritten, file, nil
		}
	}

	// Oversize or not expressible remotely: materialize locally and hand out
	// the provider URL of the variant instead of a stream.
	variantName, err := s.applyOutputFormat(file, ops, req)
	if err != nil {
		return "", nil, err
	}

	exists, err := driver.Exists(ctx, variantName)
	if err != nil {
		return "", nil, fmt.Errorf("failed to check variant: %w", err)
	}
	if !exists {
		if err := s.materializeVariant(ctx, driver, file, ops, variantName); err != nil {
			return "", nil, err
		}
	}

	variantURL, err := driver.GetURL(ctx, variantName)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve variant URL: %w", err)
	}
	return variantURL, file, nil
}
