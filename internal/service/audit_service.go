package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/roblesmun/roblesmun-api/internal/models"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
)

type auditReader interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error)
}

// AuditService exposes the trail to the admin review endpoint.
type AuditService struct {
	audits auditReader
	logger *zap.Logger
}

// NewAuditService constructs the service.
func NewAuditService(audits auditReader, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{audits: audits, logger: logger}
}

// List returns audit entries with pagination.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, *models.Pagination, error) {
	entries, total, err := s.audits.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	return entries, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
