package storage

import "testing"

func TestValidateContentType(t *testing.T) {
	store := &MinIOStore{maxFileSize: 1024}

	allowed := []string{"image/jpeg", "image/png", "IMAGE/PNG", "image/webp; charset=binary"}
	for _, contentType := range allowed {
		if err := store.ValidateContentType(contentType); err != nil {
			t.Fatalf("expected %q allowed, got %v", contentType, err)
		}
	}

	rejected := []string{"text/plain", "application/pdf", "video/mp4", ""}
	for _, contentType := range rejected {
		if err := store.ValidateContentType(contentType); err == nil {
			t.Fatalf("expected %q rejected", contentType)
		}
	}
}

func TestValidateFileSize(t *testing.T) {
	store := &MinIOStore{maxFileSize: 1024}

	if err := store.ValidateFileSize(512); err != nil {
		t.Fatalf("expected size within limit, got %v", err)
	}
	if err := store.ValidateFileSize(0); err == nil {
		t.Fatal("expected zero size rejected")
	}
	if err := store.ValidateFileSize(2048); err == nil {
		t.Fatal("expected oversize rejected")
	}
}

func TestIsImageContentType(t *testing.T) {
	if !IsImageContentType("image/png") {
		t.Fatal("expected image/png recognized as image")
	}
	if IsImageContentType("text/html") {
		t.Fatal("expected text/html not recognized as image")
	}
}
