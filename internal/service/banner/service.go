// Package banner manages the homepage banners and their images.
package banner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"flex-design-backend/internal/database"
	"flex-design-backend/internal/logger"
	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
	"flex-design-backend/internal/storage"
	"flex-design-backend/utils"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorCodeValidation    ErrorCode = "validation_error"
	ErrorCodeForbidden     ErrorCode = "forbidden"
	ErrorCodeNotFound      ErrorCode = "not_found"
	ErrorCodeTooLarge      ErrorCode = "too_large"
	ErrorCodeNotConfigured ErrorCode = "not_configured"
	ErrorCodeInternal      ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// MaxImageBytes caps a single banner upload.
const MaxImageBytes = 5 << 20

const objectPrefix = "banners/"

type Service struct {
	repo  Repository
	blobs storage.BlobStore
	now   func() time.Time
	log   *logger.Logger
}

// New builds the service. blobs may be nil, in which case uploads fail with
// not_configured and banners can still point at external image URLs.
func New(db *database.Database, blobs storage.BlobStore, log *logger.Logger) *Service {
	return NewWithRepository(NewDynamoRepository(db), blobs, nil, log)
}

func NewWithRepository(repo Repository, blobs storage.BlobStore, now func() time.Time, log *logger.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, blobs: blobs, now: now, log: log.With("service", "BannerService")}
}

// Upload stores an image and returns its public URL. The stored content type
// comes from the file contents, never from the client.
func (s *Service) Upload(ctx context.Context, admin policy.Identity, filename, clientType string, r io.Reader) (string, error) {
	if !admin.IsAdmin() {
		return "", newError(ErrorCodeForbidden, "admin role required", nil)
	}
	if s.blobs == nil {
		return "", newError(ErrorCodeNotConfigured, "image storage is not configured", storage.ErrNotConfigured)
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", newError(ErrorCodeValidation, "file name is required", nil)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", newError(ErrorCodeInternal, "failed to read upload", err)
	}
	if len(data) == 0 {
		return "", newError(ErrorCodeValidation, "file is empty", nil)
	}
	if len(data) > MaxImageBytes {
		return "", newError(ErrorCodeTooLarge, "image exceeds 5 MB", nil)
	}

	// Sniffed from the bytes. SVG sniffs as text and is refused since it can
	// carry script.
	contentType := http.DetectContentType(data)
	if clientType = strings.TrimSpace(clientType); clientType != "" && clientType != contentType {
		s.log.Debug("Upload type differs from contents", "claimed", clientType, "detected", contentType)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", newError(ErrorCodeValidation, "only image files are accepted", nil)
	}

	name := fmt.Sprintf("%s%d_%s", objectPrefix, s.now().UnixMilli(), utils.SafeObjectName(filename))
	url, err := s.blobs.Upload(ctx, name, contentType, bytes.NewReader(data))
	if err != nil {
		return "", newError(ErrorCodeInternal, "failed to upload image", err)
	}
	s.log.Info("Banner image uploaded", "object", name, "size", len(data))
	return url, nil
}

func (s *Service) Create(ctx context.Context, admin policy.Identity, imageURL, title string) (model.BannerItem, error) {
	if !admin.IsAdmin() {
		return model.BannerItem{}, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return model.BannerItem{}, newError(ErrorCodeValidation, "imageUrl is required", nil)
	}

	item := model.BannerItem{
		BannerID:  uuid.NewString(),
		ImageURL:  imageURL,
		Title:     strings.TrimSpace(title),
		IsActive:  true,
		CreatedAt: model.FormatTime(s.now()),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return model.BannerItem{}, newError(ErrorCodeInternal, "failed to create banner", err)
	}
	return item, nil
}

// List returns banners newest first, only the active ones when activeOnly.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]model.BannerItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list banners", err)
	}
	if activeOnly {
		active := items[:0]
		for _, item := range items {
			if item.IsActive {
				active = append(active, item)
			}
		}
		items = active
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
	return items, nil
}

func (s *Service) Toggle(ctx context.Context, admin policy.Identity, bannerID string) (model.BannerItem, error) {
	if !admin.IsAdmin() {
		return model.BannerItem{}, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	current, err := s.repo.Get(ctx, strings.TrimSpace(bannerID))
	if err != nil {
		return model.BannerItem{}, s.lookupError(err)
	}
	item, err := s.repo.SetActive(ctx, current.BannerID, !current.IsActive)
	if err != nil {
		return model.BannerItem{}, s.lookupError(err)
	}
	return item, nil
}

// Delete removes the banner and, when the image lives in our bucket, the
// image too. A failed image delete leaves an orphan object and is only logged.
func (s *Service) Delete(ctx context.Context, admin policy.Identity, bannerID string) error {
	if !admin.IsAdmin() {
		return newError(ErrorCodeForbidden, "admin role required", nil)
	}
	item, err := s.repo.Get(ctx, strings.TrimSpace(bannerID))
	if err != nil {
		return s.lookupError(err)
	}
	if err := s.repo.Delete(ctx, item.BannerID); err != nil {
		return s.lookupError(err)
	}

	if s.blobs != nil {
		if name := s.blobs.ObjectNameFor(item.ImageURL); name != "" {
			if err := s.blobs.Delete(ctx, name); err != nil {
				s.log.Warn("Failed to delete banner image", "banner_id", item.BannerID, "object", name, "error", err)
			}
		}
	}
	s.log.Info("Banner deleted", "banner_id", item.BannerID, "admin_id", admin.UserID)
	return nil
}

func (s *Service) lookupError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return newError(ErrorCodeNotFound, "banner not found", err)
	}
	return newError(ErrorCodeInternal, "banner storage failed", err)
}
