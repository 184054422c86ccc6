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

type sponsorRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Sponsor, error)
	FindByID(ctx context.Context, id string) (*models.Sponsor, error)
	Create(ctx context.Context, sponsor *models.Sponsor) error
	Update(ctx context.Context, sponsor *models.Sponsor) error
	Delete(ctx context.Context, id string) error
}

// UpsertSponsorRequest is the admin payload for creating or updating a
// sponsor. The logo is uploaded separately.
type UpsertSponsorRequest struct {
	Name    string `json:"name" validate:"required"`
	Tier    string `json:"tier" validate:"required,oneof=platinum gold silver"`
	Website string `json:"website" validate:"omitempty,url"`
	Active  bool   `json:"active"`
}

// SponsorService manages the partner roster shown on the marketing pages.
type SponsorService struct {
	sponsors  sponsorRepository
	uploads   assignmentUploader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSponsorService constructs the service.
func NewSponsorService(sponsors sponsorRepository, uploads assignmentUploader, validate *validator.Validate, logger *zap.Logger) *SponsorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SponsorService{sponsors: sponsors, uploads: uploads, validator: validate, logger: logger}
}

// List returns sponsors; the public endpoint asks for active only.
func (s *SponsorService) List(ctx context.Context, activeOnly bool) ([]models.Sponsor, error) {
	sponsors, err := s.sponsors.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sponsors")
	}
	return sponsors, nil
}

// Get loads one sponsor.
func (s *SponsorService) Get(ctx context.Context, id string) (*models.Sponsor, error) {
	sponsor, err := s.sponsors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sponsor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sponsor")
	}
	return sponsor, nil
}

// Create persists a new sponsor.
func (s *SponsorService) Create(ctx context.Context, req UpsertSponsorRequest) (*models.Sponsor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sponsor payload")
	}
	sponsor := &models.Sponsor{
		Name:    req.Name,
		Tier:    models.SponsorTier(req.Tier),
		Website: req.Website,
		Active:  req.Active,
	}
	if err := s.sponsors.Create(ctx, sponsor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sponsor")
	}
	return sponsor, nil
}

// Update overwrites a sponsor's details.
func (s *SponsorService) Update(ctx context.Context, id string, req UpsertSponsorRequest) (*models.Sponsor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sponsor payload")
	}
	sponsor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sponsor.Name = req.Name
	sponsor.Tier = models.SponsorTier(req.Tier)
	sponsor.Website = req.Website
	sponsor.Active = req.Active

	if err := s.sponsors.Update(ctx, sponsor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update sponsor")
	}
	return sponsor, nil
}

// Delete removes a sponsor.
func (s *SponsorService) Delete(ctx context.Context, id string) error {
	if err := s.sponsors.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete sponsor")
	}
	return nil
}

// UploadLogo stores a sponsor logo and records its public URL.
func (s *SponsorService) UploadLogo(ctx context.Context, id, filename, contentType string, data []byte) (*models.Sponsor, error) {
	sponsor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	stored := fmt.Sprintf("sponsors/%s-%d%s", sponsor.ID, time.Now().UTC().Unix(), strings.ToLower(path.Ext(filename)))
	url, err := s.uploads.Upload(stored, contentType, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedMedia.Code, appErrors.ErrUnsupportedMedia.Status, "failed to store sponsor logo")
	}

	sponsor.LogoPath = stored
	sponsor.LogoURL = url
	if err := s.sponsors.Update(ctx, sponsor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record sponsor logo")
	}
	return sponsor, nil
}
