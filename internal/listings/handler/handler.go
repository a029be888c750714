// Package handler exposes the car listing HTTP endpoints.
package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"

	"carlisting_backend/internal/listings/photos"
	"carlisting_backend/internal/listings/repository"
	"carlisting_backend/internal/listings/service"
	"carlisting_backend/internal/listings/transport"
	"carlisting_backend/platform/httpkit"
	"carlisting_backend/platform/logger"
	"carlisting_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// formMessages maps failing form fields to their user-facing messages.
var formMessages = map[string]string{
	"SellerEmail":  "Valid seller email is required.",
	"SellerPhone":  "Seller phone is required.",
	"Make":         "Make is required.",
	"Model":        "Model is required.",
	"Year":         "Year must be a number.",
	"Mileage":      "Mileage must be a number.",
	"Vin":          "VIN is required.",
	"EngineSize":   "Engine size is required.",
	"Transmission": "Transmission is required.",
	"FuelType":     "Fuel type is required.",
	"Price":        "Price must be a number.",
	"Description":  "Description is required.",
	"Location":     "Location is required.",
	"CreatedBy":    "CreatedBy is required.",
}

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
	log      *logger.Logger
}

func NewHandler(svc *service.Service, validate *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, validate: validate, log: log}
}

// Create handles POST /api/carlisting. The ownership check against the
// bearer token runs before field validation, so a forged createdBy is
// rejected with 401 even when the rest of the form is invalid.
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var form transport.ListingForm
	if err := c.ShouldBind(&form); err != nil {
		httpkit.ValidationError(c, "Validation Error.", nil)
		return
	}

	if form.CreatedBy != identity.UserID().String() {
		httpkit.Unauthorized(c, "Unauthorized access.")
		return
	}

	if err := h.validate.Struct(form); err != nil {
		httpkit.ValidationError(c, "Validation Error.", validator.FieldErrors(err, formMessages))
		return
	}

	input, err := formToInput(form)
	if err != nil {
		httpkit.ValidationError(c, "Validation Error.", nil)
		return
	}

	files, err := collectFiles(c)
	if err != nil {
		httpkit.ValidationError(c, "Validation Error.", []validator.FieldError{
			{Field: "photos", Message: "Photos could not be read."},
		})
		return
	}

	listing, err := h.svc.Create(c.Request.Context(), input, identity.UserID(), files)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, "Car listing added successfully.", toResponse(listing))
}

// List handles GET /api/carlisting with optional query filters.
func (h *Handler) List(c *gin.Context) {
	var req transport.ListListingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.ValidationError(c, "Validation Error.", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.ValidationError(c, "Validation Error.", validator.FieldErrors(err, formMessages))
		return
	}

	filter := repository.Filter{
		Make:         req.Make,
		Model:        req.Model,
		Transmission: req.Transmission,
		FuelType:     req.FuelType,
	}
	if req.Year != "" {
		year, err := strconv.Atoi(req.Year)
		if err != nil {
			httpkit.ValidationError(c, "Validation Error.", []validator.FieldError{
				{Field: "Year", Message: "Year must be a number."},
			})
			return
		}
		filter.Year = &year
	}

	listings, err := h.svc.List(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}

	if len(listings) == 0 {
		httpkit.SuccessWithData(c, "No car listings found", []transport.ListingResponse{})
		return
	}

	responses := make([]transport.ListingResponse, 0, len(listings))
	for i := range listings {
		responses = append(responses, toResponse(&listings[i]))
	}
	httpkit.SuccessWithData(c, "Operation success", responses)
}

// Detail handles GET /api/carlisting/:id. Reads never fail on a missing
// record: a malformed id answers with an empty object and a well-formed id
// with no match answers with empty data, both as a 200 success.
func (h *Handler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.SuccessWithData(c, "Operation success", struct{}{})
		return
	}

	listing, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	if listing == nil {
		httpkit.SuccessWithData(c, "Operation success", nil)
		return
	}

	httpkit.SuccessWithData(c, "Operation success", toResponse(listing))
}

// Update handles PUT /api/carlisting/:id. Like create, the ownership check
// against the submitted createdBy runs before field validation.
func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.ValidationError(c, "Invalid Error.", "Invalid ID")
		return
	}

	var form transport.ListingForm
	if err := c.ShouldBind(&form); err != nil {
		httpkit.ValidationError(c, "Validation Error.", nil)
		return
	}

	if form.CreatedBy != identity.UserID().String() {
		httpkit.Unauthorized(c, "Unauthorized access.")
		return
	}

	if err := h.validate.Struct(form); err != nil {
		httpkit.ValidationError(c, "Validation Error.", validator.FieldErrors(err, formMessages))
		return
	}

	input, err := formToInput(form)
	if err != nil {
		httpkit.ValidationError(c, "Validation Error.", nil)
		return
	}

	removeFilenames, err := parseRemovePhotos(form.RemovePhotos)
	if err != nil {
		httpkit.ValidationError(c, "Validation Error.", []validator.FieldError{
			{Field: "removePhotos", Message: "removePhotos must be a JSON array of filenames."},
		})
		return
	}

	files, err := collectFiles(c)
	if err != nil {
		httpkit.ValidationError(c, "Validation Error.", []validator.FieldError{
			{Field: "photos", Message: "Photos could not be read."},
		})
		return
	}

	listing, err := h.svc.Update(c.Request.Context(), id, input, identity.UserID(), files, removeFilenames)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.SuccessWithData(c, "Car listing updated successfully.", toResponse(listing))
}

// Delete handles DELETE /api/carlisting/:id. Ownership is checked against
// the stored record, not the request payload.
func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.ValidationError(c, "Invalid Error.", "Invalid ID")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, identity.UserID()); httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, "Car listing deleted successfully.")
}

func formToInput(form transport.ListingForm) (service.ListingInput, error) {
	year, err := strconv.Atoi(form.Year)
	if err != nil {
		return service.ListingInput{}, err
	}
	mileage, err := strconv.ParseInt(form.Mileage, 10, 64)
	if err != nil {
		return service.ListingInput{}, err
	}
	price, err := strconv.ParseInt(form.Price, 10, 64)
	if err != nil {
		return service.ListingInput{}, err
	}

	return service.ListingInput{
		SellerEmail:  form.SellerEmail,
		SellerPhone:  form.SellerPhone,
		Make:         form.Make,
		Model:        form.Model,
		Year:         year,
		Mileage:      mileage,
		Vin:          form.Vin,
		EngineSize:   form.EngineSize,
		Transmission: form.Transmission,
		FuelType:     form.FuelType,
		Price:        price,
		Description:  form.Description,
		Location:     form.Location,
	}, nil
}

func parseRemovePhotos(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var filenames []string
	if err := json.Unmarshal([]byte(raw), &filenames); err != nil {
		return nil, err
	}
	return filenames, nil
}

// collectFiles reads every uploaded "photos" part into memory. Size limits
// are enforced by the pipeline against the configured maximum.
func collectFiles(c *gin.Context) ([]photos.UploadFile, error) {
	if c.Request.MultipartForm == nil {
		return nil, nil
	}

	headers := c.Request.MultipartForm.File["photos"]
	if len(headers) == 0 {
		return nil, nil
	}

	files := make([]photos.UploadFile, 0, len(headers))
	for _, header := range headers {
		buf, err := readFileHeader(header)
		if err != nil {
			return nil, err
		}
		files = append(files, photos.UploadFile{
			Buffer:       buf,
			OriginalName: header.Filename,
			ContentType:  header.Header.Get("Content-Type"),
		})
	}
	return files, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func toResponse(listing *repository.Listing) transport.ListingResponse {
	photoResponses := make([]transport.PhotoResponse, 0, len(listing.Photos))
	for _, p := range listing.Photos {
		photoResponses = append(photoResponses, transport.PhotoResponse{
			Filename:    p.Filename,
			DesktopURL:  p.DesktopURL,
			MobileURL:   p.MobileURL,
			OriginalURL: p.OriginalURL,
		})
	}

	return transport.ListingResponse{
		ID:           listing.ID,
		SellerEmail:  listing.SellerEmail,
		SellerPhone:  listing.SellerPhone,
		Make:         listing.Make,
		Model:        listing.Model,
		Year:         listing.Year,
		Mileage:      listing.Mileage,
		Vin:          listing.Vin,
		EngineSize:   listing.EngineSize,
		Transmission: listing.Transmission,
		FuelType:     listing.FuelType,
		Price:        listing.Price,
		Description:  listing.Description,
		Location:     listing.Location,
		Photos:       photoResponses,
		CreatedBy:    listing.CreatedBy,
		UpdatedBy:    listing.UpdatedBy,
	}
}
