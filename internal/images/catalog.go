// Package images lists the images waiting for annotation together with their
// lease state, and lets annotators skip images that are not worth labeling.
package images

import (
	"context"
	"errors"
	"net/http"

	"aerolabel/internal/review/repository"
	"aerolabel/internal/review/validator"
	apperrors "aerolabel/pkg/errors"
	"aerolabel/pkg/logger"
	"aerolabel/pkg/model"
)

// LeaseReader is satisfied by *lease.Store.
type LeaseReader interface {
	Get(resourceID string) (*model.ResourceLease, bool)
}

type Catalog struct {
	files     repository.FileStore
	leases    LeaseReader
	validator *validator.ReviewValidator
	log       *logger.Logger
}

func NewCatalog(files repository.FileStore, leases LeaseReader, v *validator.ReviewValidator, log *logger.Logger) *Catalog {
	return &Catalog{
		files:     files,
		leases:    leases,
		validator: v,
		log:       log,
	}
}

// List returns every waiting image. Images leased by anyone other than
// holderID are flagged as locked; the caller's own leases are not.
func (c *Catalog) List(ctx context.Context, holderID string) (*model.ImageList, error) {
	names, err := c.files.ListImages(ctx)
	if err != nil {
		c.log.Error("Failed to list images", "error", err)
		return nil, apperrors.Internal("Failed to list images", err)
	}

	list := &model.ImageList{
		Total: len(names),
		Items: make([]model.ImageEntry, 0, len(names)),
	}
	for _, name := range names {
		entry := model.ImageEntry{ResourceID: name}
		if l, ok := c.leases.Get(name); ok && l.HolderID != holderID {
			entry.Locked = true
			entry.LockedBy = l.HolderID
		}
		list.Items = append(list.Items, entry)
	}
	return list, nil
}

// Skip permanently excludes an image from listing and ingest. Skipping the
// same image again succeeds with AlreadySkipped set.
func (c *Catalog) Skip(ctx context.Context, resourceID string) (*model.SkipResult, error) {
	if err := c.validator.ValidateSkip(&model.SkipRequest{ResourceID: resourceID}); err != nil {
		return nil, validationError(err)
	}

	exists, err := c.files.ImageExists(ctx, resourceID)
	if err != nil {
		c.log.Error("Failed to look up image", "resource_id", resourceID, "error", err)
		return nil, apperrors.Internal("Failed to look up image", err)
	}
	if !exists {
		return nil, apperrors.NotFoundWithID("image", resourceID)
	}

	excluded, err := c.files.IsExcluded(ctx, resourceID)
	if err != nil {
		c.log.Error("Failed to check image exclusion", "resource_id", resourceID, "error", err)
		return nil, apperrors.Internal("Failed to check image exclusion", err)
	}
	if excluded {
		return &model.SkipResult{ResourceID: resourceID, AlreadySkipped: true}, nil
	}

	if err := c.files.MarkPermanentlyExcluded(ctx, resourceID); err != nil {
		c.log.Error("Failed to skip image", "resource_id", resourceID, "error", err)
		return nil, apperrors.Internal("Failed to skip image", err)
	}

	c.log.Info("Image skipped", "resource_id", resourceID)
	return &model.SkipResult{ResourceID: resourceID}, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.New(apperrors.CodeValidation, "Request validation failed", http.StatusBadRequest).
			WithDetails(map[string]any{"errors": []validator.ValidationError(verrs)})
	}
	return apperrors.InvalidInput(err.Error())
}
