// Package repository persists car listings in Postgres.
package repository

import (
	"context"
	"time"

	"carlisting_backend/internal/listings/photos"

	"github.com/google/uuid"
)

// Listing is the stored car listing record.
type Listing struct {
	ID           uuid.UUID
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
	Photos       []photos.Photo
	CreatedBy    uuid.UUID
	UpdatedBy    *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InsertParams carries the fields for a new listing row.
type InsertParams struct {
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
	CreatedBy    uuid.UUID
}

// UpdateParams carries the replacement field values for an existing listing.
// Photos holds the fully reconciled set, retained plus newly uploaded.
type UpdateParams struct {
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
	Photos       []photos.Photo
	UpdatedBy    uuid.UUID
}

// Filter narrows the listing query. String fields match case-insensitively
// on substrings; Year matches exactly. A nil field is not applied.
type Filter struct {
	Make         string
	Model        string
	Year         *int
	Transmission string
	FuelType     string
}

// Repository defines the persistence operations for car listings.
type Repository interface {
	Insert(ctx context.Context, params InsertParams) (*Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	GetByVIN(ctx context.Context, vin string) (*Listing, error)
	List(ctx context.Context, filter Filter) ([]Listing, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Listing, error)
	UpdatePhotos(ctx context.Context, id uuid.UUID, p []photos.Photo) error
	Delete(ctx context.Context, id uuid.UUID) error
}
