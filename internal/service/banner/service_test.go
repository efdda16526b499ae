package banner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
)

type memoryRepository struct {
	mu    sync.Mutex
	items map[string]model.BannerItem
}

func (m *memoryRepository) Create(ctx context.Context, item model.BannerItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.BannerID] = item
	return nil
}

func (m *memoryRepository) Get(ctx context.Context, id string) (model.BannerItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return model.BannerItem{}, ErrNotFound
	}
	return item, nil
}

func (m *memoryRepository) List(ctx context.Context) ([]model.BannerItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.BannerItem, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func (m *memoryRepository) SetActive(ctx context.Context, id string, active bool) (model.BannerItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return model.BannerItem{}, ErrNotFound
	}
	item.IsActive = active
	m.items[id] = item
	return item, nil
}

func (m *memoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

const testBase = "https://cdn.test/flex/"

type memoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (b *memoryBlobStore) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[name] = data
	b.types[name] = contentType
	return testBase + name, nil
}

func (b *memoryBlobStore) Delete(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, name)
	return nil
}

func (b *memoryBlobStore) ObjectNameFor(url string) string {
	if !strings.HasPrefix(url, testBase) {
		return ""
	}
	return strings.TrimPrefix(url, testBase)
}

var admin = policy.Identity{UserID: "a1", Role: model.RoleAdmin}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func newTestService(blobs *memoryBlobStore) (*Service, *memoryRepository) {
	clock := time.UnixMilli(1714564800000).UTC()
	now := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	repo := &memoryRepository{items: make(map[string]model.BannerItem)}
	if blobs == nil {
		return NewWithRepository(repo, nil, now, nil), repo
	}
	return NewWithRepository(repo, blobs, now, nil), repo
}

func TestUploadNamesObjectSafely(t *testing.T) {
	blobs := newMemoryBlobStore()
	svc, _ := newTestService(blobs)

	url, err := svc.Upload(context.Background(), admin, "summer sale!.png", "", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	want := testBase + "banners/1714564801000_summer_sale_.png"
	if url != want {
		t.Fatalf("Upload url = %q, want %q", url, want)
	}
	if blobs.types["banners/1714564801000_summer_sale_.png"] != "image/png" {
		t.Fatalf("unexpected content type %q", blobs.types["banners/1714564801000_summer_sale_.png"])
	}
}

func TestUploadRejections(t *testing.T) {
	blobs := newMemoryBlobStore()
	svc, _ := newTestService(blobs)
	ctx := context.Background()

	cases := []struct {
		name        string
		caller      policy.Identity
		contentType string
		body        []byte
		code        ErrorCode
	}{
		{"non-admin", policy.Identity{UserID: "u1", Role: model.RoleUser}, "image/png", pngHeader, ErrorCodeForbidden},
		{"not an image", admin, "application/pdf", []byte("%PDF-1.4"), ErrorCodeValidation},
		{"svg claimed as image", admin, "image/svg+xml", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`), ErrorCodeValidation},
		{"html claimed as png", admin, "image/png", []byte("<html><body>hi</body></html>"), ErrorCodeValidation},
		{"empty", admin, "image/png", nil, ErrorCodeValidation},
		{"too large", admin, "image/png", bytes.Repeat([]byte{1}, MaxImageBytes+1), ErrorCodeTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tc.caller, "a.png", tc.contentType, bytes.NewReader(tc.body))
			var svcErr *Error
			if !errors.As(err, &svcErr) || svcErr.Code != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
	if len(blobs.objects) != 0 {
		t.Fatalf("rejected uploads must not be stored, got %d objects", len(blobs.objects))
	}
}

func TestUploadStoresDetectedType(t *testing.T) {
	blobs := newMemoryBlobStore()
	svc, _ := newTestService(blobs)

	url, err := svc.Upload(context.Background(), admin, "a.gif", "image/gif", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if got := blobs.types[strings.TrimPrefix(url, testBase)]; got != "image/png" {
		t.Fatalf("expected stored type image/png, got %q", got)
	}
}

func TestUploadWithoutStore(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Upload(context.Background(), admin, "a.png", "image/png", bytes.NewReader(pngHeader))
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeNotConfigured {
		t.Fatalf("expected not_configured, got %v", err)
	}
}

func TestListToggleAndDelete(t *testing.T) {
	blobs := newMemoryBlobStore()
	svc, repo := newTestService(blobs)
	ctx := context.Background()

	url, _ := svc.Upload(ctx, admin, "a.png", "image/png", bytes.NewReader(pngHeader))
	first, err := svc.Create(ctx, admin, url, "First")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, _ := svc.Create(ctx, admin, "https://elsewhere.test/b.png", "Second")

	toggled, err := svc.Toggle(ctx, admin, first.BannerID)
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if toggled.IsActive {
		t.Fatal("expected banner to be inactive after toggle")
	}

	active, _ := svc.List(ctx, true)
	if len(active) != 1 || active[0].BannerID != second.BannerID {
		t.Fatalf("unexpected active banners %+v", active)
	}
	all, _ := svc.List(ctx, false)
	if len(all) != 2 || all[0].BannerID != second.BannerID {
		t.Fatalf("expected newest first, got %+v", all)
	}

	if err := svc.Delete(ctx, admin, first.BannerID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(blobs.objects) != 0 {
		t.Fatal("banner image was not deleted")
	}
	if _, ok := repo.items[first.BannerID]; ok {
		t.Fatal("banner record was not deleted")
	}

	err = svc.Delete(ctx, admin, first.BannerID)
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
