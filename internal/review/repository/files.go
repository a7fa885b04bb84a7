package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	reviewerrors "aerolabel/internal/review/errors"
)

type FileStore interface {
	RelocateToAnnotated(ctx context.Context, resourceID, targetName string) error
	MarkPermanentlyExcluded(ctx context.Context, resourceID string) error
	IsExcluded(ctx context.Context, resourceID string) (bool, error)
	ImageExists(ctx context.Context, resourceID string) (bool, error)
	ListImages(ctx context.Context) ([]string, error)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// IsImageFile reports whether name carries a supported image extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

type exclusionMarker struct {
	ResourceID string    `json:"resource_id"`
	ExcludedAt time.Time `json:"excluded_at"`
}

// afsFileStore moves images between base locations understood by afs
// (local paths, file://, mem://, gs://, s3://).
type afsFileStore struct {
	fs          afs.Service
	imagesDir   string
	labeledDir  string
	excludedDir string
}

// NewFileStore creates the labeled and excluded locations when missing.
func NewFileStore(ctx context.Context, fs afs.Service, imagesDir, labeledDir, excludedDir string) (FileStore, error) {
	for _, dir := range []string{imagesDir, labeledDir, excludedDir} {
		if dir == "" {
			return nil, fmt.Errorf("file store location cannot be empty")
		}
	}

	for _, dir := range []string{labeledDir, excludedDir} {
		exists, _ := fs.Exists(ctx, dir)
		if !exists {
			if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return &afsFileStore{
		fs:          fs,
		imagesDir:   imagesDir,
		labeledDir:  labeledDir,
		excludedDir: excludedDir,
	}, nil
}

func (s *afsFileStore) RelocateToAnnotated(ctx context.Context, resourceID, targetName string) error {
	if err := validateName(resourceID); err != nil {
		return err
	}
	if err := validateName(targetName); err != nil {
		return err
	}

	src := url.Join(s.imagesDir, resourceID)
	exists, err := s.fs.Exists(ctx, src)
	if err != nil {
		return fmt.Errorf("failed to check source image %s: %w", src, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", reviewerrors.ErrImageNotFound, resourceID)
	}

	dst := url.Join(s.labeledDir, targetName)
	if err := s.fs.Move(ctx, src, dst); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	return nil
}

func (s *afsFileStore) MarkPermanentlyExcluded(ctx context.Context, resourceID string) error {
	if err := validateName(resourceID); err != nil {
		return err
	}

	data, err := json.Marshal(exclusionMarker{ResourceID: resourceID, ExcludedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal exclusion marker: %w", err)
	}

	marker := url.Join(s.excludedDir, resourceID)
	if err := s.fs.Upload(ctx, marker, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write exclusion marker %s: %w", marker, err)
	}
	return nil
}

func (s *afsFileStore) IsExcluded(ctx context.Context, resourceID string) (bool, error) {
	if err := validateName(resourceID); err != nil {
		return false, err
	}

	exists, err := s.fs.Exists(ctx, url.Join(s.excludedDir, resourceID))
	if err != nil {
		return false, fmt.Errorf("failed to check exclusion marker: %w", err)
	}
	return exists, nil
}

func (s *afsFileStore) ImageExists(ctx context.Context, resourceID string) (bool, error) {
	if err := validateName(resourceID); err != nil {
		return false, err
	}

	exists, err := s.fs.Exists(ctx, url.Join(s.imagesDir, resourceID))
	if err != nil {
		return false, fmt.Errorf("failed to check image %s: %w", resourceID, err)
	}
	return exists, nil
}

// ListImages returns the sorted names of images still waiting in the images
// location. Annotated images have been moved away; excluded ones are skipped.
func (s *afsFileStore) ListImages(ctx context.Context) ([]string, error) {
	objects, err := s.fs.List(ctx, s.imagesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list images in %s: %w", s.imagesDir, err)
	}

	excluded, err := s.fileNames(ctx, s.excludedDir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(objects))
	for _, obj := range objects {
		if obj.IsDir() || !IsImageFile(obj.Name()) {
			continue
		}
		if _, skip := excluded[obj.Name()]; skip {
			continue
		}
		names = append(names, obj.Name())
	}
	slices.Sort(names)
	return names, nil
}

func (s *afsFileStore) fileNames(ctx context.Context, dir string) (map[string]struct{}, error) {
	objects, err := s.fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	names := make(map[string]struct{}, len(objects))
	for _, obj := range objects {
		if !obj.IsDir() {
			names[obj.Name()] = struct{}{}
		}
	}
	return names, nil
}

// validateName keeps resource and target names inside their base location.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", reviewerrors.ErrInvalidResourceID, name)
	}
	return nil
}
