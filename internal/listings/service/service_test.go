package service

import (
	"context"
	"errors"
	"testing"

	"carlisting_backend/internal/listings/photos"
	"carlisting_backend/internal/listings/repository"
	"carlisting_backend/platform/apperr"
	"carlisting_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	listings map[uuid.UUID]*repository.Listing

	insertParams *repository.InsertParams
	updateParams *repository.UpdateParams
	photoWrites  [][]photos.Photo
	deletedIDs   []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{listings: make(map[uuid.UUID]*repository.Listing)}
}

func (r *fakeRepo) Insert(ctx context.Context, params repository.InsertParams) (*repository.Listing, error) {
	r.insertParams = &params
	listing := &repository.Listing{
		ID:          uuid.New(),
		SellerEmail: params.SellerEmail,
		Make:        params.Make,
		Vin:         params.Vin,
		CreatedBy:   params.CreatedBy,
		Photos:      []photos.Photo{},
	}
	r.listings[listing.ID] = listing
	return listing, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*repository.Listing, error) {
	return r.listings[id], nil
}

func (r *fakeRepo) GetByVIN(ctx context.Context, vin string) (*repository.Listing, error) {
	for _, listing := range r.listings {
		if listing.Vin == vin {
			return listing, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) List(ctx context.Context, filter repository.Filter) ([]repository.Listing, error) {
	result := make([]repository.Listing, 0, len(r.listings))
	for _, listing := range r.listings {
		result = append(result, *listing)
	}
	return result, nil
}

func (r *fakeRepo) Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (*repository.Listing, error) {
	r.updateParams = &params
	listing, ok := r.listings[id]
	if !ok {
		return nil, nil
	}
	listing.Vin = params.Vin
	listing.Photos = params.Photos
	listing.UpdatedBy = &params.UpdatedBy
	return listing, nil
}

func (r *fakeRepo) UpdatePhotos(ctx context.Context, id uuid.UUID, p []photos.Photo) error {
	r.photoWrites = append(r.photoWrites, p)
	if listing, ok := r.listings[id]; ok {
		listing.Photos = p
	}
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.deletedIDs = append(r.deletedIDs, id)
	delete(r.listings, id)
	return nil
}

type fakePipeline struct {
	uploaded     []photos.Photo
	uploadErr    error
	deleted      []string
	deleteAllErr error
	purgedIDs    []uuid.UUID
}

func (p *fakePipeline) Upload(ctx context.Context, files []photos.UploadFile, listingID uuid.UUID) ([]photos.Photo, error) {
	if p.uploadErr != nil {
		return nil, p.uploadErr
	}
	if len(files) == 0 {
		return nil, nil
	}
	return p.uploaded, nil
}

func (p *fakePipeline) Delete(ctx context.Context, filename string, listingID uuid.UUID) error {
	p.deleted = append(p.deleted, filename)
	return nil
}

func (p *fakePipeline) DeleteAll(ctx context.Context, listingID uuid.UUID) error {
	if p.deleteAllErr != nil {
		return p.deleteAllErr
	}
	p.purgedIDs = append(p.purgedIDs, listingID)
	return nil
}

type fakePurge struct {
	enqueued []uuid.UUID
	err      error
}

func (f *fakePurge) EnqueueListingPurge(ctx context.Context, listingID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, listingID)
	return nil
}

func validInput() ListingInput {
	return ListingInput{
		SellerEmail:  "Seller@Example.COM",
		SellerPhone:  "(202) 555-0175",
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2020,
		Mileage:      42000,
		Vin:          "4y1sl65848z411439",
		EngineSize:   "1.8L",
		Transmission: "Automatic",
		FuelType:     "Petrol",
		Price:        1550000,
		Description:  "Well maintained",
		Location:     "Austin, TX",
	}
}

func newTestService(repo *fakeRepo, pipeline *fakePipeline, purge *fakePurge) *Service {
	if purge == nil {
		return NewService(repo, pipeline, nil, logger.New("test"))
	}
	return NewService(repo, pipeline, purge, logger.New("test"))
}

func TestCreateNormalizesFields(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePipeline{}, nil)

	input := validInput()
	input.Make = "<b>Toyota</b>"

	_, err := svc.Create(context.Background(), input, uuid.New(), nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if repo.insertParams.SellerEmail != "seller@example.com" {
		t.Fatalf("email not lowercased: %q", repo.insertParams.SellerEmail)
	}
	if repo.insertParams.Make != "Toyota" {
		t.Fatalf("make not sanitized: %q", repo.insertParams.Make)
	}
	if repo.insertParams.Vin != "4Y1SL65848Z411439" {
		t.Fatalf("vin not uppercased: %q", repo.insertParams.Vin)
	}
	if repo.insertParams.SellerPhone != "+12025550175" {
		t.Fatalf("phone not normalized: %q", repo.insertParams.SellerPhone)
	}
}

func TestCreateRejectsDuplicateVIN(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePipeline{}, nil)

	if _, err := svc.Create(context.Background(), validInput(), uuid.New(), nil); err != nil {
		t.Fatalf("first Create returned error: %v", err)
	}

	_, err := svc.Create(context.Background(), validInput(), uuid.New(), nil)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateAttachesUploadedPhotos(t *testing.T) {
	repo := newFakeRepo()
	pipeline := &fakePipeline{uploaded: []photos.Photo{{Filename: "1-abc-a.png"}}}
	svc := newTestService(repo, pipeline, nil)

	files := []photos.UploadFile{{Buffer: []byte("x"), OriginalName: "a.png", ContentType: "image/png"}}
	listing, err := svc.Create(context.Background(), validInput(), uuid.New(), files)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if len(repo.photoWrites) != 1 {
		t.Fatalf("expected one photo write, got %d", len(repo.photoWrites))
	}
	if len(listing.Photos) != 1 || listing.Photos[0].Filename != "1-abc-a.png" {
		t.Fatalf("photos not attached to result: %v", listing.Photos)
	}
}

func TestCreateFailsWhenUploadFails(t *testing.T) {
	repo := newFakeRepo()
	pipeline := &fakePipeline{uploadErr: apperr.Storage("upload", errors.New("boom"))}
	svc := newTestService(repo, pipeline, nil)

	files := []photos.UploadFile{{Buffer: []byte("x"), OriginalName: "a.png", ContentType: "image/png"}}
	_, err := svc.Create(context.Background(), validInput(), uuid.New(), files)
	if !apperr.Is(err, apperr.KindStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(repo.photoWrites) != 0 {
		t.Fatalf("photos must not be written after a failed upload")
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakePipeline{}, nil)

	_, err := svc.Update(context.Background(), uuid.New(), validInput(), uuid.New(), nil, nil)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestUpdateRejectsVINHeldByOtherListing(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePipeline{}, nil)

	first, err := svc.Create(context.Background(), validInput(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	other := validInput()
	other.Vin = "1HGBH41JXMN109186"
	second, err := svc.Create(context.Background(), other, uuid.New(), nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	update := validInput()
	update.Vin = first.Vin
	_, err = svc.Update(context.Background(), second.ID, update, uuid.New(), nil, nil)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestUpdateReconcilesPhotos(t *testing.T) {
	repo := newFakeRepo()
	pipeline := &fakePipeline{uploaded: []photos.Photo{{Filename: "new.png"}}}
	svc := newTestService(repo, pipeline, nil)

	listing, err := svc.Create(context.Background(), validInput(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	listing.Photos = []photos.Photo{{Filename: "keep.png"}, {Filename: "drop.png"}}

	files := []photos.UploadFile{{Buffer: []byte("x"), OriginalName: "new.png", ContentType: "image/png"}}
	updated, err := svc.Update(context.Background(), listing.ID, validInput(), uuid.New(), files, []string{"drop.png"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if len(pipeline.deleted) != 1 || pipeline.deleted[0] != "drop.png" {
		t.Fatalf("expected drop.png deleted from storage, got %v", pipeline.deleted)
	}
	if len(updated.Photos) != 2 {
		t.Fatalf("expected 2 photos after reconciliation, got %d", len(updated.Photos))
	}
	if updated.Photos[0].Filename != "keep.png" || updated.Photos[1].Filename != "new.png" {
		t.Fatalf("unexpected photo set: %v", updated.Photos)
	}
}

func TestDeleteChecksStoredOwner(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePipeline{}, nil)

	owner := uuid.New()
	listing, err := svc.Create(context.Background(), validInput(), owner, nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	err = svc.Delete(context.Background(), listing.ID, uuid.New())
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if len(repo.deletedIDs) != 0 {
		t.Fatalf("listing must not be deleted by a non-owner")
	}

	if err := svc.Delete(context.Background(), listing.ID, owner); err != nil {
		t.Fatalf("owner delete returned error: %v", err)
	}
	if len(repo.deletedIDs) != 1 {
		t.Fatalf("expected one deletion, got %d", len(repo.deletedIDs))
	}
}

func TestDeleteMissingListing(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakePipeline{}, nil)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDeletePurgesPhotos(t *testing.T) {
	repo := newFakeRepo()
	pipeline := &fakePipeline{}
	svc := newTestService(repo, pipeline, nil)

	owner := uuid.New()
	listing, err := svc.Create(context.Background(), validInput(), owner, nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(context.Background(), listing.ID, owner); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(pipeline.purgedIDs) != 1 || pipeline.purgedIDs[0] != listing.ID {
		t.Fatalf("expected photo purge for %s, got %v", listing.ID, pipeline.purgedIDs)
	}
}

func TestDeleteEnqueuesPurgeWhenCleanupFails(t *testing.T) {
	repo := newFakeRepo()
	pipeline := &fakePipeline{deleteAllErr: apperr.Storage("purge", errors.New("unreachable"))}
	purge := &fakePurge{}
	svc := newTestService(repo, pipeline, purge)

	owner := uuid.New()
	listing, err := svc.Create(context.Background(), validInput(), owner, nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// The deletion must still succeed; cleanup retries out of band.
	if err := svc.Delete(context.Background(), listing.ID, owner); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(repo.deletedIDs) != 1 {
		t.Fatalf("expected listing row deleted")
	}
	if len(purge.enqueued) != 1 || purge.enqueued[0] != listing.ID {
		t.Fatalf("expected purge task enqueued for %s, got %v", listing.ID, purge.enqueued)
	}
}
