package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/roblesmun/roblesmun-api/internal/models"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
)

type registrationRepository interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error)
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	Create(ctx context.Context, reg *models.Registration) error
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error
	UpdateReceipt(ctx context.Context, id, path, url string) error
	CountByStatus(ctx context.Context) (map[models.RegistrationStatus]int, error)
}

type seatCatalog interface {
	OpenSeatLabels(ctx context.Context) (map[string]struct{}, error)
}

type receiptRenderer interface {
	RenderReceipt(reg *models.Registration) ([]byte, error)
}

type receiptNotifier interface {
	IsConfigured() bool
	SendReceipt(reg *models.Registration) error
}

type receiptSigner interface {
	Generate(registrationID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (registrationID, relPath string, expiresAt time.Time, err error)
}

// PricingConfig carries the registration pricing parameters.
type PricingConfig struct {
	SeatPrice        float64
	FacultyDiscount  float64
	MaxSeatsPerOrder int
}

// RegistrationService handles the public intake wizard and the admin
// verification operations around it. The receipt PDF, its upload and the
// confirmation email are best-effort; only the database insert is fatal.
type RegistrationService struct {
	registrations registrationRepository
	catalog       seatCatalog
	uploads       assignmentUploader
	renderer      receiptRenderer
	notifier      receiptNotifier
	signer        receiptSigner
	audits        auditWriter
	pricing       PricingConfig
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewRegistrationService constructs the service.
func NewRegistrationService(
	registrations registrationRepository,
	catalog seatCatalog,
	uploads assignmentUploader,
	renderer receiptRenderer,
	notifier receiptNotifier,
	signer receiptSigner,
	audits auditWriter,
	pricing PricingConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RegistrationService{
		registrations: registrations,
		catalog:       catalog,
		uploads:       uploads,
		renderer:      renderer,
		notifier:      notifier,
		signer:        signer,
		audits:        audits,
		pricing:       pricing,
		validator:     validate,
		logger:        logger,
	}
}

// Create validates and persists a new registration, then issues the payment
// receipt and confirmation email best-effort.
func (s *RegistrationService) Create(ctx context.Context, req models.CreateRegistrationRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	if err := s.checkSeatRequest(ctx, req); err != nil {
		return nil, err
	}

	reg := &models.Registration{
		Email:                strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:            strings.TrimSpace(req.FirstName),
		LastName:             strings.TrimSpace(req.LastName),
		Institution:          strings.TrimSpace(req.Institution),
		IsFaculty:            req.IsFaculty,
		Seats:                req.Seats,
		SeatsRequested:       req.SeatsRequested,
		BackupSeatsRequested: req.BackupSeatsRequested,
		RequiresBackup:       req.RequiresBackup,
		PaymentMethod:        req.PaymentMethod,
		PaymentReference:     strings.TrimSpace(req.PaymentReference),
		AmountDue:            s.amountDue(req.Seats, req.IsFaculty),
		Status:               models.RegistrationStatusPending,
	}

	if err := s.registrations.Create(ctx, reg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist registration")
	}

	s.issueReceipt(ctx, reg)

	if s.notifier != nil && s.notifier.IsConfigured() {
		if err := s.notifier.SendReceipt(reg); err != nil {
			s.logger.Warn("registration confirmation email failed", zap.String("registration_id", reg.ID), zap.Error(err))
		}
	}

	s.audit(ctx, reg.ID, models.AuditActionRegistrationCreated, map[string]interface{}{
		"institution": reg.Institution,
		"seats":       reg.Seats,
		"amount_due":  reg.AmountDue,
	})

	return reg, nil
}

// List returns registrations for the admin back-office.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, *models.Pagination, error) {
	registrations, total, err := s.registrations.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return registrations, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one registration.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.registrations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return reg, nil
}

// Reject marks a registration as rejected. This is the admin action the
// assignment workflow never takes on its own.
func (s *RegistrationService) Reject(ctx context.Context, id string, actorID string) (*models.Registration, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.Status == models.RegistrationStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrConflict, "registration is already rejected")
	}

	if err := s.registrations.UpdateStatus(ctx, id, models.RegistrationStatusRejected); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject registration")
	}
	reg.Status = models.RegistrationStatusRejected

	s.audit(ctx, id, models.AuditActionRegistrationReject, map[string]interface{}{
		"actor":       actorID,
		"institution": reg.Institution,
	})
	return reg, nil
}

// ResendReceipt re-sends the registration confirmation email.
func (s *RegistrationService) ResendReceipt(ctx context.Context, id string) error {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.notifier == nil || !s.notifier.IsConfigured() {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "email delivery is not configured")
	}
	if err := s.notifier.SendReceipt(reg); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resend receipt email")
	}
	s.audit(ctx, id, models.AuditActionReceiptResent, map[string]interface{}{
		"receipt_url": reg.ReceiptPDFURL,
	})
	return nil
}

// ReceiptDownloadToken issues a signed token for the public receipt link.
func (s *RegistrationService) ReceiptDownloadToken(ctx context.Context, id string) (string, time.Time, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if reg.ReceiptPDFPath == "" {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "no receipt has been stored for this registration")
	}
	token, expiresAt, err := s.signer.Generate(reg.ID, reg.ReceiptPDFPath)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	return token, expiresAt, nil
}

// ResolveReceiptToken validates a signed download token and returns the
// stored receipt path it references.
func (s *RegistrationService) ResolveReceiptToken(ctx context.Context, token string) (string, error) {
	registrationID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	reg, err := s.Get(ctx, registrationID)
	if err != nil {
		return "", err
	}
	if reg.ReceiptPDFPath == "" || reg.ReceiptPDFPath != relPath {
		return "", appErrors.Clone(appErrors.ErrNotFound, "receipt not found")
	}
	return reg.ReceiptPDFPath, nil
}

// Stats returns registration counts by status for the admin dashboard.
func (s *RegistrationService) Stats(ctx context.Context) (map[models.RegistrationStatus]int, error) {
	counts, err := s.registrations.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count registrations")
	}
	return counts, nil
}

// checkSeatRequest enforces the pool sanity rules the struct tags cannot:
// seat labels must exist in open committees, backups require the flag, and
// the order stays within the configured cap.
func (s *RegistrationService) checkSeatRequest(ctx context.Context, req models.CreateRegistrationRequest) error {
	if s.pricing.MaxSeatsPerOrder > 0 && req.Seats > s.pricing.MaxSeatsPerOrder {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("cannot request %d seats, the maximum per order is %d", req.Seats, s.pricing.MaxSeatsPerOrder))
	}
	if len(req.BackupSeatsRequested) > 0 && !req.RequiresBackup {
		return appErrors.Clone(appErrors.ErrValidation, "backup seats were provided but requires_backup is false")
	}

	open, err := s.catalog.OpenSeatLabels(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load committee seats")
	}

	var unknown []string
	seen := make(map[string]struct{})
	for _, label := range append(append([]string{}, req.SeatsRequested...), req.BackupSeatsRequested...) {
		if _, dup := seen[label]; dup {
			return appErrors.Clone(appErrors.ErrValidation, "duplicate seat labels in the request")
		}
		seen[label] = struct{}{}
		if _, ok := open[label]; !ok {
			unknown = append(unknown, label)
		}
	}
	if len(unknown) > 0 {
		return appErrors.Clone(appErrors.ErrValidation,
			"unknown or closed seats: "+strings.Join(unknown, ", "))
	}
	return nil
}

// amountDue computes the order total with the faculty discount applied.
func (s *RegistrationService) amountDue(seats int, faculty bool) float64 {
	amount := s.pricing.SeatPrice * float64(seats)
	if faculty && s.pricing.FacultyDiscount > 0 && s.pricing.FacultyDiscount < 1 {
		amount *= 1 - s.pricing.FacultyDiscount
	}
	return math.Round(amount*100) / 100
}

// issueReceipt renders, stores and records the payment receipt. Any failure
// is logged and leaves the registration without a receipt URL.
func (s *RegistrationService) issueReceipt(ctx context.Context, reg *models.Registration) {
	data, err := s.renderer.RenderReceipt(reg)
	if err != nil {
		s.logger.Warn("receipt pdf render failed", zap.String("registration_id", reg.ID), zap.Error(err))
		return
	}
	filename := receiptFilename(reg.Institution, reg.CreatedAt)
	url, err := s.uploads.Upload(filename, "application/pdf", data)
	if err != nil {
		s.logger.Warn("receipt pdf upload failed", zap.String("registration_id", reg.ID), zap.Error(err))
		return
	}
	if err := s.registrations.UpdateReceipt(ctx, reg.ID, filename, url); err != nil {
		s.logger.Warn("receipt record update failed", zap.String("registration_id", reg.ID), zap.Error(err))
		return
	}
	reg.ReceiptPDFPath = filename
	reg.ReceiptPDFURL = url
}

// audit writes a best-effort trail entry. Failures are logged and swallowed.
func (s *RegistrationService) audit(ctx context.Context, registrationID, action string, snapshot map[string]interface{}) {
	if s.audits == nil {
		return
	}
	payload, _ := json.Marshal(snapshot)
	rid := registrationID
	if err := s.audits.Create(ctx, &models.AuditLog{
		Action:     action,
		Resource:   "registration",
		ResourceID: &rid,
		Snapshot:   payload,
	}); err != nil {
		s.logger.Warn("audit write failed", zap.String("registration_id", registrationID), zap.Error(err))
	}
}

// receiptFilename derives the storage path for a receipt document.
func receiptFilename(institution string, ts time.Time) string {
	slug := strings.Trim(filenameCleaner.ReplaceAllString(strings.ToLower(institution), "-"), "-")
	if slug == "" {
		slug = "registration"
	}
	return fmt.Sprintf("receipts/%s-%s.pdf", slug, ts.UTC().Format("20060102T150405"))
}
