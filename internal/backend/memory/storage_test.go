package memory

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"notes-app/internal/backend"
)

func TestStorage_SignedURL_RoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := NewStorage("http://localhost:8080", "test-secret", 15*time.Minute)

	if err := storage.Upload(ctx, "abc-cat.png", []byte("png-bytes"), "image/png"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	signedURL, err := storage.SignedURL(ctx, "abc-cat.png")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parsed, err := url.Parse(signedURL)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	if !strings.HasPrefix(signedURL, "http://localhost:8080/api/storage/objects/") {
		t.Fatalf("unexpected signed url %q", signedURL)
	}

	query := parsed.Query()
	if err := storage.Verify("abc-cat.png", query.Get("expires"), query.Get("sig")); err != nil {
		t.Fatalf("verify freshly signed url: %v", err)
	}

	data, contentType, err := storage.Get("abc-cat.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "png-bytes" || contentType != "image/png" {
		t.Errorf("stored object mismatch: %q / %q", data, contentType)
	}
}

func TestStorage_Verify_RejectsTamperedSignature(t *testing.T) {
	ctx := context.Background()
	storage := NewStorage("http://localhost:8080", "test-secret", 15*time.Minute)

	if err := storage.Upload(ctx, "key", []byte("x"), ""); err != nil {
		t.Fatalf("upload: %v", err)
	}

	signedURL, err := storage.SignedURL(ctx, "key")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	query := mustQuery(t, signedURL)

	if err := storage.Verify("key", query.Get("expires"), "deadbeef"); err == nil {
		t.Error("tampered signature must be rejected")
	}
	// Подпись одного ключа не подходит другому
	if err := storage.Verify("other-key", query.Get("expires"), query.Get("sig")); err == nil {
		t.Error("signature must be bound to the object key")
	}
}

func TestStorage_Verify_RejectsExpiredURL(t *testing.T) {
	ctx := context.Background()
	storage := NewStorage("http://localhost:8080", "test-secret", time.Minute)

	if err := storage.Upload(ctx, "key", []byte("x"), ""); err != nil {
		t.Fatalf("upload: %v", err)
	}

	signedURL, err := storage.SignedURL(ctx, "key")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	query := mustQuery(t, signedURL)

	// Сдвигаем часы за срок действия ссылки
	storage.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if err := storage.Verify("key", query.Get("expires"), query.Get("sig")); err == nil {
		t.Error("expired url must be rejected")
	}
}

func TestStorage_MissingObject(t *testing.T) {
	ctx := context.Background()
	storage := NewStorage("http://localhost:8080", "test-secret", time.Minute)

	if _, err := storage.SignedURL(ctx, "ghost"); !errors.Is(err, backend.ErrObjectNotFound) {
		t.Errorf("sign of missing object: expected ErrObjectNotFound, got %v", err)
	}
	if err := storage.Remove(ctx, "ghost"); !errors.Is(err, backend.ErrObjectNotFound) {
		t.Errorf("remove of missing object: expected ErrObjectNotFound, got %v", err)
	}
	if _, _, err := storage.Get("ghost"); !errors.Is(err, backend.ErrObjectNotFound) {
		t.Errorf("get of missing object: expected ErrObjectNotFound, got %v", err)
	}
}

func TestStorage_Remove(t *testing.T) {
	ctx := context.Background()
	storage := NewStorage("http://localhost:8080", "test-secret", time.Minute)

	if err := storage.Upload(ctx, "key", []byte("x"), ""); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := storage.Remove(ctx, "key"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, _, err := storage.Get("key"); !errors.Is(err, backend.ErrObjectNotFound) {
		t.Errorf("object must be gone after remove, got %v", err)
	}
}

func mustQuery(t *testing.T, rawURL string) url.Values {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse url %q: %v", rawURL, err)
	}
	return parsed.Query()
}
