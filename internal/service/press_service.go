package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/roblesmun/roblesmun-api/internal/models"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
)

type pressRepository interface {
	List(ctx context.Context, kind models.PressKind) ([]models.PressItem, error)
	FindByID(ctx context.Context, id string) (*models.PressItem, error)
	Create(ctx context.Context, item *models.PressItem) error
	Update(ctx context.Context, item *models.PressItem) error
	Delete(ctx context.Context, id string) error
}

// UpsertPressRequest is the admin payload for press entries. URL is for
// external media; uploaded assets are attached separately.
type UpsertPressRequest struct {
	Title       string     `json:"title" validate:"required"`
	Kind        string     `json:"kind" validate:"required,oneof=photo video article"`
	URL         string     `json:"url" validate:"omitempty,url"`
	PublishedAt *time.Time `json:"published_at"`
}

// PressService manages the press media section of the public site.
type PressService struct {
	press     pressRepository
	uploads   assignmentUploader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPressService constructs the service.
func NewPressService(press pressRepository, uploads assignmentUploader, validate *validator.Validate, logger *zap.Logger) *PressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PressService{press: press, uploads: uploads, validator: validate, logger: logger}
}

// List returns press items, optionally filtered by kind.
func (s *PressService) List(ctx context.Context, kind models.PressKind) ([]models.PressItem, error) {
	items, err := s.press.List(ctx, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list press items")
	}
	return items, nil
}

// Get loads one press item.
func (s *PressService) Get(ctx context.Context, id string) (*models.PressItem, error) {
	item, err := s.press.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "press item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load press item")
	}
	return item, nil
}

// Create persists a new press item.
func (s *PressService) Create(ctx context.Context, req UpsertPressRequest) (*models.PressItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid press payload")
	}
	item := &models.PressItem{
		Title:       req.Title,
		Kind:        models.PressKind(req.Kind),
		URL:         req.URL,
		PublishedAt: req.PublishedAt,
	}
	if err := s.press.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create press item")
	}
	return item, nil
}

// Update overwrites a press item's details.
func (s *PressService) Update(ctx context.Context, id string, req UpsertPressRequest) (*models.PressItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid press payload")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Title = req.Title
	item.Kind = models.PressKind(req.Kind)
	item.URL = req.URL
	item.PublishedAt = req.PublishedAt

	if err := s.press.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update press item")
	}
	return item, nil
}

// Delete removes a press item.
func (s *PressService) Delete(ctx context.Context, id string) error {
	if err := s.press.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete press item")
	}
	return nil
}

// UploadAsset stores a media file and records its public URL on the item.
func (s *PressService) UploadAsset(ctx context.Context, id, filename, contentType string, data []byte) (*models.PressItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	stored := fmt.Sprintf("press/%s-%d%s", item.ID, time.Now().UTC().Unix(), strings.ToLower(path.Ext(filename)))
	url, err := s.uploads.Upload(stored, contentType, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedMedia.Code, appErrors.ErrUnsupportedMedia.Status, "failed to store press asset")
	}

	item.AssetPath = stored
	item.AssetURL = url
	if err := s.press.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record press asset")
	}
	return item, nil
}
