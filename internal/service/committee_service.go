package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/roblesmun/roblesmun-api/internal/models"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
)

type committeeRepository interface {
	List(ctx context.Context, filter models.CommitteeFilter) ([]models.Committee, error)
	FindByID(ctx context.Context, id string) (*models.Committee, error)
	Create(ctx context.Context, committee *models.Committee) error
	Update(ctx context.Context, committee *models.Committee) error
	Delete(ctx context.Context, id string) error
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const committeeCachePrefix = "committees"

// UpsertCommitteeRequest is the admin payload for creating or updating a
// committee.
type UpsertCommitteeRequest struct {
	Name        string   `json:"name" validate:"required"`
	Topic       string   `json:"topic" validate:"required"`
	Description string   `json:"description"`
	Level       string   `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	SeatNames   []string `json:"seat_names" validate:"required,min=1,dive,required"`
	Open        bool     `json:"open"`
}

// CommitteeService serves the public catalog (Redis-cached) and the admin
// CRUD behind it. Every mutation invalidates the cached listings.
type CommitteeService struct {
	committees committeeRepository
	cache      cacheStore
	ttl        time.Duration
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCommitteeService constructs the service.
func NewCommitteeService(committees committeeRepository, cache cacheStore, ttl time.Duration, validate *validator.Validate, logger *zap.Logger) *CommitteeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CommitteeService{committees: committees, cache: cache, ttl: ttl, validator: validate, logger: logger}
}

// List returns committees, serving filtered queries from cache when possible.
func (s *CommitteeService) List(ctx context.Context, filter models.CommitteeFilter) ([]models.Committee, error) {
	key := committeeCacheKey(filter)
	if s.cache != nil {
		var cached []models.Committee
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("committee cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	committees, err := s.committees.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list committees")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, committees, s.ttl); err != nil {
			s.logger.Warn("committee cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return committees, nil
}

// Get loads one committee.
func (s *CommitteeService) Get(ctx context.Context, id string) (*models.Committee, error) {
	committee, err := s.committees.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "committee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load committee")
	}
	return committee, nil
}

// Create persists a new committee and invalidates cached listings.
func (s *CommitteeService) Create(ctx context.Context, req UpsertCommitteeRequest) (*models.Committee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid committee payload")
	}

	committee := &models.Committee{
		Name:        req.Name,
		Topic:       req.Topic,
		Description: req.Description,
		Level:       models.CommitteeLevel(req.Level),
		SeatNames:   req.SeatNames,
		Open:        req.Open,
	}
	if err := s.committees.Create(ctx, committee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create committee")
	}
	s.invalidate(ctx)
	return committee, nil
}

// Update overwrites a committee and invalidates cached listings.
func (s *CommitteeService) Update(ctx context.Context, id string, req UpsertCommitteeRequest) (*models.Committee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid committee payload")
	}

	committee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	committee.Name = req.Name
	committee.Topic = req.Topic
	committee.Description = req.Description
	committee.Level = models.CommitteeLevel(req.Level)
	committee.SeatNames = req.SeatNames
	committee.Open = req.Open

	if err := s.committees.Update(ctx, committee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update committee")
	}
	s.invalidate(ctx)
	return committee, nil
}

// Delete removes a committee and invalidates cached listings.
func (s *CommitteeService) Delete(ctx context.Context, id string) error {
	if err := s.committees.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete committee")
	}
	s.invalidate(ctx)
	return nil
}

// OpenSeatLabels returns the composite seat labels of every open committee,
// as the registration intake's eligibility pool.
func (s *CommitteeService) OpenSeatLabels(ctx context.Context) (map[string]struct{}, error) {
	open := true
	committees, err := s.List(ctx, models.CommitteeFilter{Open: &open})
	if err != nil {
		return nil, err
	}
	labels := make(map[string]struct{})
	for _, committee := range committees {
		for _, label := range committee.SeatLabels() {
			labels[label] = struct{}{}
		}
	}
	return labels, nil
}

func (s *CommitteeService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, committeeCachePrefix+":*"); err != nil {
		s.logger.Warn("committee cache invalidation failed", zap.Error(err))
	}
}

func committeeCacheKey(filter models.CommitteeFilter) string {
	open := "any"
	if filter.Open != nil {
		open = fmt.Sprintf("%t", *filter.Open)
	}
	return fmt.Sprintf("%s:open=%s:level=%s:search=%s", committeeCachePrefix, open, filter.Level, filter.Search)
}
