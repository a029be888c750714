// Package service holds the car listing business logic.
package service

import (
	"context"
	"strings"

	"carlisting_backend/internal/listings/photos"
	"carlisting_backend/internal/listings/repository"
	"carlisting_backend/internal/scheduler"
	"carlisting_backend/platform/apperr"
	"carlisting_backend/platform/logger"
	"carlisting_backend/platform/phone"
	"carlisting_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Service coordinates the repository, the photo pipeline and the purge
// scheduler for listing operations.
type Service struct {
	repo     repository.Repository
	pipeline photos.Pipeline
	purge    scheduler.PurgeScheduler
	log      *logger.Logger
}

// NewService wires the listing service. purge may be a nil client when no
// Redis is configured; cleanup then relies on the inline attempt alone.
func NewService(repo repository.Repository, pipeline photos.Pipeline, purge scheduler.PurgeScheduler, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		pipeline: pipeline,
		purge:    purge,
		log:      log,
	}
}

// ListingInput carries the parsed and converted listing fields shared by
// create and update.
type ListingInput struct {
	SellerEmail  string
	SellerPhone  string
	Make         string
	Model        string
	Year         int
	Mileage      int64
	Vin          string
	EngineSize   string
	Transmission string
	FuelType     string
	Price        int64
	Description  string
	Location     string
}

// Create persists a new listing, then runs the photo pipeline and attaches
// the resulting photo set in a second write. The row is created before any
// upload so a storage failure never yields objects without an owning row.
func (s *Service) Create(ctx context.Context, input ListingInput, createdBy uuid.UUID, files []photos.UploadFile) (*repository.Listing, error) {
	input = normalizeInput(input)

	existing, err := s.repo.GetByVIN(ctx, input.Vin)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("A listing with this VIN already exists.")
	}

	listing, err := s.repo.Insert(ctx, repository.InsertParams{
		SellerEmail:  input.SellerEmail,
		SellerPhone:  input.SellerPhone,
		Make:         input.Make,
		Model:        input.Model,
		Year:         input.Year,
		Mileage:      input.Mileage,
		Vin:          input.Vin,
		EngineSize:   input.EngineSize,
		Transmission: input.Transmission,
		FuelType:     input.FuelType,
		Price:        input.Price,
		Description:  input.Description,
		Location:     input.Location,
		CreatedBy:    createdBy,
	})
	if err != nil {
		return nil, err
	}

	if len(files) > 0 {
		uploaded, err := s.pipeline.Upload(ctx, files, listing.ID)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpdatePhotos(ctx, listing.ID, uploaded); err != nil {
			return nil, err
		}
		listing.Photos = uploaded
	}

	return listing, nil
}

// List returns the listings matching the filter.
func (s *Service) List(ctx context.Context, filter repository.Filter) ([]repository.Listing, error) {
	return s.repo.List(ctx, filter)
}

// Get returns one listing, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Listing, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces the listing's fields, uploads any new photos, detaches the
// requested filenames and stores the reconciled photo set.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input ListingInput, updatedBy uuid.UUID, files []photos.UploadFile, removeFilenames []string) (*repository.Listing, error) {
	input = normalizeInput(input)

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("Car listing not found.")
	}

	if input.Vin != existing.Vin {
		holder, err := s.repo.GetByVIN(ctx, input.Vin)
		if err != nil {
			return nil, err
		}
		if holder != nil && holder.ID != id {
			return nil, apperr.Conflict("A listing with this VIN already exists.")
		}
	}

	uploaded, err := s.pipeline.Upload(ctx, files, id)
	if err != nil {
		return nil, err
	}

	retained := make([]photos.Photo, 0, len(existing.Photos))
	removed := make(map[string]bool, len(removeFilenames))
	for _, name := range removeFilenames {
		removed[name] = true
	}
	for _, p := range existing.Photos {
		if removed[p.Filename] {
			if err := s.pipeline.Delete(ctx, p.Filename, id); err != nil {
				return nil, err
			}
			continue
		}
		retained = append(retained, p)
	}

	updated, err := s.repo.Update(ctx, id, repository.UpdateParams{
		SellerEmail:  input.SellerEmail,
		SellerPhone:  input.SellerPhone,
		Make:         input.Make,
		Model:        input.Model,
		Year:         input.Year,
		Mileage:      input.Mileage,
		Vin:          input.Vin,
		EngineSize:   input.EngineSize,
		Transmission: input.Transmission,
		FuelType:     input.FuelType,
		Price:        input.Price,
		Description:  input.Description,
		Location:     input.Location,
		Photos:       append(retained, uploaded...),
		UpdatedBy:    updatedBy,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("Car listing not found.")
	}
	return updated, nil
}

// Delete removes the listing after checking the requester owns it, then
// purges its stored photo objects. When the inline purge fails the deletion
// stands and the purge is re-enqueued for the worker.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, requester uuid.UUID) error {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing == nil {
		return apperr.NotFound("Car listing not found.")
	}
	if listing.CreatedBy != requester {
		return apperr.Unauthorized("Unauthorized access.")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.pipeline.DeleteAll(ctx, id); err != nil {
		s.log.Error("inline photo purge failed, scheduling retry", "listingId", id, "error", err)
		if s.purge != nil {
			if enqErr := s.purge.EnqueueListingPurge(ctx, id); enqErr != nil {
				s.log.Error("failed to enqueue photo purge", "listingId", id, "error", enqErr)
			}
		}
	}

	return nil
}

func normalizeInput(input ListingInput) ListingInput {
	input.SellerEmail = strings.ToLower(strings.TrimSpace(input.SellerEmail))
	input.SellerPhone = phone.NormalizeE164(input.SellerPhone)
	input.Make = sanitize.Text(input.Make)
	input.Model = sanitize.Text(input.Model)
	input.Vin = strings.ToUpper(strings.TrimSpace(input.Vin))
	input.EngineSize = sanitize.Text(input.EngineSize)
	input.Transmission = sanitize.Text(input.Transmission)
	input.FuelType = sanitize.Text(input.FuelType)
	input.Description = sanitize.Text(input.Description)
	input.Location = sanitize.Text(input.Location)
	return input
}
