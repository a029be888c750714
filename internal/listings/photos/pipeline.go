// Package photos implements the photo pipeline: rendition resizing, object
// uploads, URL generation and cleanup for listing photos.
package photos

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"carlisting_backend/internal/adapters/storage"
	"carlisting_backend/platform/apperr"
	"carlisting_backend/platform/config"
	"carlisting_backend/platform/logger"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	variantDesktop  = "desktop"
	variantMobile   = "mobile"
	variantOriginal = "original"

	desktopWidth  = 1280
	desktopHeight = 720
	mobileWidth   = 640
	mobileHeight  = 360

	// URLModePresigned produces presigned GET URLs with a configured expiry.
	URLModePresigned = "presigned"
	// URLModePublic produces unauthenticated bucket URLs.
	URLModePublic = "public"
)

// Pipeline processes uploaded photos for a listing: it produces desktop and
// mobile renditions, uploads all renditions to object storage and returns
// retrievable URLs. It also deletes renditions per photo or per listing.
type Pipeline interface {
	Upload(ctx context.Context, files []UploadFile, listingID uuid.UUID) ([]Photo, error)
	Delete(ctx context.Context, filename string, listingID uuid.UUID) error
	DeleteAll(ctx context.Context, listingID uuid.UUID) error
}

// Service implements Pipeline against an injected object store.
type Service struct {
	store     storage.ObjectStore
	bucket    string
	namespace string
	urlMode   string
	urlTTL    time.Duration
	timeout   time.Duration
	log       *logger.Logger
}

// NewService creates a photo pipeline backed by the given object store.
func NewService(store storage.ObjectStore, bucket string, cfg config.PhotoConfig, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		bucket:    bucket,
		namespace: cfg.GetPhotoNamespace(),
		urlMode:   cfg.GetPhotoURLMode(),
		urlTTL:    cfg.GetPhotoURLTTL(),
		timeout:   cfg.GetStorageTimeout(),
		log:       log,
	}
}

// Compile-time check that Service implements Pipeline.
var _ Pipeline = (*Service)(nil)

// Upload processes the batch of uploaded files for one listing. All three
// renditions of every photo are uploaded concurrently; the first failure
// cancels the remaining uploads and the whole call fails. No partial photo
// list is ever returned.
func (s *Service) Upload(ctx context.Context, files []UploadFile, listingID uuid.UUID) ([]Photo, error) {
	if len(files) == 0 {
		return nil, nil
	}

	for _, file := range files {
		if err := s.store.ValidateContentType(file.ContentType); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		if err := s.store.ValidateFileSize(int64(len(file.Buffer))); err != nil {
			return nil, apperr.Validation(err.Error())
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result := make([]Photo, len(files))
	g, gctx := errgroup.WithContext(ctx)

	for i, file := range files {
		g.Go(func() error {
			img, _, err := image.Decode(bytes.NewReader(file.Buffer))
			if err != nil {
				return apperr.Validation(fmt.Sprintf("file %q is not a decodable image", file.OriginalName))
			}

			desktopBuf, err := encodeRendition(img, desktopWidth, desktopHeight)
			if err != nil {
				return apperr.Storage("encode desktop rendition", err)
			}
			mobileBuf, err := encodeRendition(img, mobileWidth, mobileHeight)
			if err != nil {
				return apperr.Storage("encode mobile rendition", err)
			}

			filename := newFilename(file.OriginalName)

			uploads, upCtx := errgroup.WithContext(gctx)
			uploads.Go(func() error {
				return s.put(upCtx, listingID, variantDesktop, filename, "image/jpeg", desktopBuf)
			})
			uploads.Go(func() error {
				return s.put(upCtx, listingID, variantMobile, filename, "image/jpeg", mobileBuf)
			})
			uploads.Go(func() error {
				return s.put(upCtx, listingID, variantOriginal, filename, file.ContentType, file.Buffer)
			})
			if err := uploads.Wait(); err != nil {
				return err
			}

			photo := Photo{Filename: filename}
			if photo.DesktopURL, err = s.objectURL(gctx, listingID, variantDesktop, filename); err != nil {
				return err
			}
			if photo.MobileURL, err = s.objectURL(gctx, listingID, variantMobile, filename); err != nil {
				return err
			}
			if photo.OriginalURL, err = s.objectURL(gctx, listingID, variantOriginal, filename); err != nil {
				return err
			}

			result[i] = photo
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the three variant objects of a single photo. Deleting a
// filename whose objects are already gone is a no-op.
func (s *Service) Delete(ctx context.Context, filename string, listingID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	keys := []string{
		s.objectKey(listingID, variantDesktop, filename),
		s.objectKey(listingID, variantMobile, filename),
		s.objectKey(listingID, variantOriginal, filename),
	}
	if err := s.store.RemoveObjects(ctx, s.bucket, keys); err != nil {
		return apperr.Storage("delete photo objects", err)
	}
	return nil
}

// DeleteAll removes every stored object under the listing's namespace
// prefix. The prefix listing pages to exhaustion, and an empty prefix is a
// no-op rather than an error.
func (s *Service) DeleteAll(ctx context.Context, listingID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prefix := fmt.Sprintf("%s/%s/", s.namespace, listingID)
	keys, err := s.store.ListObjectKeys(ctx, s.bucket, prefix)
	if err != nil {
		return apperr.Storage("list listing photo objects", err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.store.RemoveObjects(ctx, s.bucket, keys); err != nil {
		return apperr.Storage("delete listing photo objects", err)
	}
	return nil
}

func (s *Service) put(ctx context.Context, listingID uuid.UUID, variant, filename, contentType string, data []byte) error {
	key := s.objectKey(listingID, variant, filename)
	if err := s.store.PutObject(ctx, s.bucket, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return apperr.Storage("upload "+variant+" rendition", err)
	}
	return nil
}

func (s *Service) objectURL(ctx context.Context, listingID uuid.UUID, variant, filename string) (string, error) {
	key := s.objectKey(listingID, variant, filename)
	if s.urlMode == URLModePublic {
		return s.store.PublicURL(s.bucket, key), nil
	}

	url, err := s.store.PresignedGetURL(ctx, s.bucket, key, s.urlTTL)
	if err != nil {
		return "", apperr.Storage("presign "+variant+" URL", err)
	}
	return url, nil
}

func (s *Service) objectKey(listingID uuid.UUID, variant, filename string) string {
	return fmt.Sprintf("%s/%s/%s/%s", s.namespace, listingID, variant, filename)
}

// encodeRendition produces a cover-fit center-cropped JPEG of the requested
// dimensions: the source is scaled to fill the target and the overflow is
// cropped, never letterboxed.
func encodeRendition(img image.Image, width, height int) ([]byte, error) {
	rendition := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, rendition, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// newFilename derives a unique stored filename: millisecond timestamp plus a
// random suffix so concurrent uploads in the same millisecond cannot collide.
func newFilename(originalName string) string {
	base := filepath.Base(strings.TrimSpace(originalName))
	base = strings.ReplaceAll(base, " ", "_")
	if base == "" || base == "." {
		base = "photo"
	}
	return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.New().String()[:8], base)
}
