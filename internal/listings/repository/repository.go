package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"carlisting_backend/internal/listings/photos"
	"carlisting_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const listingColumns = `id, seller_email, seller_phone, make, model, year, mileage, vin,
	engine_size, transmission, fuel_type, price, description, location, photos,
	created_by, updated_by, created_at, updated_at`

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Postgres-backed listings repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var _ Repository = (*PostgresRepository)(nil)

// Insert creates a new listing row. A duplicate VIN surfaces as a conflict
// even when two inserts race past the pre-check, via the unique index.
func (r *PostgresRepository) Insert(ctx context.Context, params InsertParams) (*Listing, error) {
	query := `
		INSERT INTO car_listings (
			seller_email, seller_phone, make, model, year, mileage, vin,
			engine_size, transmission, fuel_type, price, description, location,
			photos, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + listingColumns

	row := r.pool.QueryRow(ctx, query,
		params.SellerEmail, params.SellerPhone, params.Make, params.Model,
		params.Year, params.Mileage, params.Vin, params.EngineSize,
		params.Transmission, params.FuelType, params.Price, params.Description,
		params.Location, emptyPhotosJSON(), params.CreatedBy,
	)

	listing, err := scanListing(row)
	if err != nil {
		return nil, wrapWriteError("insert listing", err)
	}
	return listing, nil
}

// GetByID fetches one listing, or nil when no row matches.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM car_listings WHERE id = $1`

	listing, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Database("get listing by id", err)
	}
	return listing, nil
}

// GetByVIN fetches the listing holding the given VIN, or nil when none does.
func (r *PostgresRepository) GetByVIN(ctx context.Context, vin string) (*Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM car_listings WHERE vin = $1`

	listing, err := scanListing(r.pool.QueryRow(ctx, query, vin))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Database("get listing by vin", err)
	}
	return listing, nil
}

// List returns the listings matching the filter, newest first. No filter
// fields set means every listing.
func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]Listing, error) {
	where, args := buildFilterClause(filter)
	query := `SELECT ` + listingColumns + ` FROM car_listings` + where + ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Database("list listings", err)
	}
	defer rows.Close()

	listings := make([]Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, apperr.Database("scan listing row", err)
		}
		listings = append(listings, *listing)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Database("iterate listing rows", err)
	}
	return listings, nil
}

// Update replaces every mutable field of the listing, photos included, and
// returns the updated row. Nil when the listing no longer exists.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Listing, error) {
	photosJSON, err := marshalPhotos(params.Photos)
	if err != nil {
		return nil, apperr.Database("encode photos", err)
	}

	query := `
		UPDATE car_listings SET
			seller_email = $1, seller_phone = $2, make = $3, model = $4,
			year = $5, mileage = $6, vin = $7, engine_size = $8,
			transmission = $9, fuel_type = $10, price = $11, description = $12,
			location = $13, photos = $14, updated_by = $15, updated_at = NOW()
		WHERE id = $16
		RETURNING ` + listingColumns

	row := r.pool.QueryRow(ctx, query,
		params.SellerEmail, params.SellerPhone, params.Make, params.Model,
		params.Year, params.Mileage, params.Vin, params.EngineSize,
		params.Transmission, params.FuelType, params.Price, params.Description,
		params.Location, photosJSON, params.UpdatedBy, id,
	)

	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapWriteError("update listing", err)
	}
	return listing, nil
}

// UpdatePhotos writes only the photos column. Used after the upload pipeline
// finishes so a failed upload never leaves dangling photo references.
func (r *PostgresRepository) UpdatePhotos(ctx context.Context, id uuid.UUID, p []photos.Photo) error {
	photosJSON, err := marshalPhotos(p)
	if err != nil {
		return apperr.Database("encode photos", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE car_listings SET photos = $1, updated_at = NOW() WHERE id = $2`,
		photosJSON, id,
	)
	if err != nil {
		return apperr.Database("update listing photos", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Car listing not found.")
	}
	return nil
}

// Delete removes the listing row. Deleting a missing row is not an error so
// the handler can report not-found from its own read.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM car_listings WHERE id = $1`, id); err != nil {
		return apperr.Database("delete listing", err)
	}
	return nil
}

// wrapWriteError types a failed insert or update. A unique violation on the
// vin index means two writes raced past the service pre-check; it surfaces
// as a conflict so the client sees the same answer as the pre-check path.
func wrapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict("A listing with this VIN already exists.")
	}
	return apperr.Database(op, err)
}

// buildFilterClause renders the WHERE clause for the given filter. Text
// filters match case-insensitive substrings, year matches exactly.
func buildFilterClause(filter Filter) (string, []any) {
	conditions := make([]string, 0, 5)
	args := make([]any, 0, 5)

	addLike := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, "%"+value+"%")
		conditions = append(conditions, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
	}

	addLike("make", filter.Make)
	addLike("model", filter.Model)
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}
	addLike("transmission", filter.Transmission)
	addLike("fuel_type", filter.FuelType)

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func marshalPhotos(p []photos.Photo) ([]byte, error) {
	if p == nil {
		p = []photos.Photo{}
	}
	return json.Marshal(p)
}

func emptyPhotosJSON() []byte {
	return []byte("[]")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*Listing, error) {
	var (
		listing    Listing
		photosJSON []byte
	)
	err := row.Scan(
		&listing.ID, &listing.SellerEmail, &listing.SellerPhone, &listing.Make,
		&listing.Model, &listing.Year, &listing.Mileage, &listing.Vin,
		&listing.EngineSize, &listing.Transmission, &listing.FuelType,
		&listing.Price, &listing.Description, &listing.Location, &photosJSON,
		&listing.CreatedBy, &listing.UpdatedBy, &listing.CreatedAt, &listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(photosJSON) > 0 {
		if err := json.Unmarshal(photosJSON, &listing.Photos); err != nil {
			return nil, fmt.Errorf("decode photos column: %w", err)
		}
	}
	if listing.Photos == nil {
		listing.Photos = []photos.Photo{}
	}
	return &listing, nil
}
