package transport

import "github.com/google/uuid"

// ListingForm carries the multipart form fields for create and update.
// Numeric fields arrive as form strings and are validated as numeric before
// conversion; every failing field is reported, not just the first.
type ListingForm struct {
	SellerEmail  string `form:"sellerEmail" validate:"required,email"`
	SellerPhone  string `form:"sellerPhone" validate:"required,min=1"`
	Make         string `form:"make" validate:"required,min=1"`
	Model        string `form:"model" validate:"required,min=1"`
	Year         string `form:"year" validate:"required,number"`
	Mileage      string `form:"mileage" validate:"required,number"`
	Vin          string `form:"vin" validate:"required,min=1"`
	EngineSize   string `form:"engineSize" validate:"required,min=1"`
	Transmission string `form:"transmission" validate:"required,min=1"`
	FuelType     string `form:"fuelType" validate:"required,min=1"`
	Price        string `form:"price" validate:"required,number"`
	Description  string `form:"description" validate:"required,min=1"`
	Location     string `form:"location" validate:"required,min=1"`
	CreatedBy    string `form:"createdBy" validate:"required"`
	// RemovePhotos is a JSON-encoded array of filenames to detach on update.
	RemovePhotos string `form:"removePhotos"`
}

// ListListingsRequest carries the optional query filters for the list endpoint.
type ListListingsRequest struct {
	Make         string `form:"make" validate:"omitempty,max=100"`
	Model        string `form:"model" validate:"omitempty,max=100"`
	Year         string `form:"year" validate:"omitempty,number"`
	Transmission string `form:"transmission" validate:"omitempty,max=100"`
	FuelType     string `form:"fuelType" validate:"omitempty,max=100"`
}

// PhotoResponse is one uploaded photo with its three rendition URLs.
type PhotoResponse struct {
	Filename    string `json:"filename"`
	DesktopURL  string `json:"desktopUrl"`
	MobileURL   string `json:"mobileUrl"`
	OriginalURL string `json:"originalUrl"`
}

// ListingResponse is the logical listing record. Store bookkeeping fields
// (created/updated timestamps) are never included on list and detail reads.
type ListingResponse struct {
	ID           uuid.UUID       `json:"id"`
	SellerEmail  string          `json:"sellerEmail"`
	SellerPhone  string          `json:"sellerPhone"`
	Make         string          `json:"make"`
	Model        string          `json:"model"`
	Year         int             `json:"year"`
	Mileage      int64           `json:"mileage"`
	Vin          string          `json:"vin"`
	EngineSize   string          `json:"engineSize"`
	Transmission string          `json:"transmission"`
	FuelType     string          `json:"fuelType"`
	Price        int64           `json:"price"`
	Description  string          `json:"description"`
	Location     string          `json:"location"`
	Photos       []PhotoResponse `json:"photos"`
	CreatedBy    uuid.UUID       `json:"createdBy"`
	UpdatedBy    *uuid.UUID      `json:"updatedBy,omitempty"`
}
