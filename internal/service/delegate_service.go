package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/roblesmun/roblesmun-api/internal/models"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
)

type delegateRepository interface {
	ListByRegistration(ctx context.Context, registrationID string) ([]models.DelegateDetail, error)
	FindByID(ctx context.Context, id string) (*models.Delegate, error)
	Create(ctx context.Context, delegate *models.Delegate) error
	Update(ctx context.Context, delegate *models.Delegate) error
	Delete(ctx context.Context, id string) error
}

type registrationReader interface {
	FindByID(ctx context.Context, id string) (*models.Registration, error)
}

// UpsertDelegateRequest is the admin payload for roster entries.
type UpsertDelegateRequest struct {
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	DietaryNotes string `json:"dietary_notes"`
	SeatLabel    string `json:"seat_label"`
}

// DelegateService manages the per-registration delegate roster. A delegate
// may only be mapped onto a seat that the registration actually holds.
type DelegateService struct {
	delegates     delegateRepository
	registrations registrationReader
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewDelegateService constructs the service.
func NewDelegateService(delegates delegateRepository, registrations registrationReader, validate *validator.Validate, logger *zap.Logger) *DelegateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DelegateService{delegates: delegates, registrations: registrations, validator: validate, logger: logger}
}

// List returns the roster for one registration.
func (s *DelegateService) List(ctx context.Context, registrationID string) ([]models.DelegateDetail, error) {
	if _, err := s.loadRegistration(ctx, registrationID); err != nil {
		return nil, err
	}
	delegates, err := s.delegates.ListByRegistration(ctx, registrationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list delegates")
	}
	return delegates, nil
}

// Create adds a delegate to a registration's roster.
func (s *DelegateService) Create(ctx context.Context, registrationID string, req UpsertDelegateRequest) (*models.Delegate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid delegate payload")
	}
	reg, err := s.loadRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := checkSeatLabel(reg, req.SeatLabel); err != nil {
		return nil, err
	}

	delegate := &models.Delegate{
		RegistrationID: registrationID,
		FullName:       req.FullName,
		Email:          req.Email,
		DietaryNotes:   req.DietaryNotes,
		SeatLabel:      req.SeatLabel,
	}
	if err := s.delegates.Create(ctx, delegate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create delegate")
	}
	return delegate, nil
}

// Update overwrites a delegate's details.
func (s *DelegateService) Update(ctx context.Context, registrationID, id string, req UpsertDelegateRequest) (*models.Delegate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid delegate payload")
	}
	reg, err := s.loadRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}

	delegate, err := s.delegates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "delegate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load delegate")
	}
	if delegate.RegistrationID != registrationID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "delegate not found")
	}
	if err := checkSeatLabel(reg, req.SeatLabel); err != nil {
		return nil, err
	}

	delegate.FullName = req.FullName
	delegate.Email = req.Email
	delegate.DietaryNotes = req.DietaryNotes
	delegate.SeatLabel = req.SeatLabel

	if err := s.delegates.Update(ctx, delegate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update delegate")
	}
	return delegate, nil
}

// Delete removes a delegate from the roster.
func (s *DelegateService) Delete(ctx context.Context, registrationID, id string) error {
	delegate, err := s.delegates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "delegate not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load delegate")
	}
	if delegate.RegistrationID != registrationID {
		return appErrors.Clone(appErrors.ErrNotFound, "delegate not found")
	}
	if err := s.delegates.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete delegate")
	}
	return nil
}

func (s *DelegateService) loadRegistration(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.registrations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return reg, nil
}

// checkSeatLabel ensures the delegate is mapped onto a seat the registration
// holds. An empty label is fine: rosters can be filled before assignment.
func checkSeatLabel(reg *models.Registration, label string) error {
	if label == "" {
		return nil
	}
	for _, assigned := range reg.AssignedSeats {
		if assigned == label {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "seat label is not among the registration's assigned seats")
}
