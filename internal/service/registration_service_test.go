package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roblesmun/roblesmun-api/internal/models"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
)

type mockRegistrationRepo struct {
	created  []models.Registration
	receipts map[string]string
	byID     map[string]*models.Registration
	statuses map[string]models.RegistrationStatus
	err      error
}

func newMockRegistrationRepo() *mockRegistrationRepo {
	return &mockRegistrationRepo{
		receipts: make(map[string]string),
		byID:     make(map[string]*models.Registration),
		statuses: make(map[string]models.RegistrationStatus),
	}
}

func (m *mockRegistrationRepo) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	return m.created, len(m.created), m.err
}

func (m *mockRegistrationRepo) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	if reg, ok := m.byID[id]; ok {
		return reg, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRegistrationRepo) Create(ctx context.Context, reg *models.Registration) error {
	if m.err != nil {
		return m.err
	}
	if reg.ID == "" {
		reg.ID = "reg-new"
	}
	reg.CreatedAt = time.Now().UTC()
	m.created = append(m.created, *reg)
	m.byID[reg.ID] = reg
	return nil
}

func (m *mockRegistrationRepo) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error {
	if m.err != nil {
		return m.err
	}
	m.statuses[id] = status
	return nil
}

func (m *mockRegistrationRepo) UpdateReceipt(ctx context.Context, id, path, url string) error {
	m.receipts[id] = path
	return nil
}

func (m *mockRegistrationRepo) CountByStatus(ctx context.Context) (map[models.RegistrationStatus]int, error) {
	return map[models.RegistrationStatus]int{models.RegistrationStatusPending: len(m.created)}, m.err
}

type mockSeatCatalog struct {
	labels map[string]struct{}
	err    error
}

func (m *mockSeatCatalog) OpenSeatLabels(ctx context.Context) (map[string]struct{}, error) {
	return m.labels, m.err
}

type mockReceiptRenderer struct {
	calls int
	err   error
}

func (m *mockReceiptRenderer) RenderReceipt(reg *models.Registration) ([]byte, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.4 receipt"), nil
}

type mockReceiptNotifier struct {
	configured bool
	sent       int
	err        error
}

func (m *mockReceiptNotifier) IsConfigured() bool { return m.configured }

func (m *mockReceiptNotifier) SendReceipt(reg *models.Registration) error {
	if m.err != nil {
		return m.err
	}
	m.sent++
	return nil
}

type mockSigner struct {
	registrationID string
	relPath        string
	parseErr       error
}

func (m *mockSigner) Generate(registrationID, relPath string) (string, time.Time, error) {
	return "signed-token", time.Now().Add(time.Hour), nil
}

func (m *mockSigner) Parse(token string, allowExpired bool) (string, string, time.Time, error) {
	if m.parseErr != nil {
		return "", "", time.Time{}, m.parseErr
	}
	return m.registrationID, m.relPath, time.Now().Add(time.Hour), nil
}

type registrationFixture struct {
	repo     *mockRegistrationRepo
	catalog  *mockSeatCatalog
	uploads  *mockUploader
	renderer *mockReceiptRenderer
	notifier *mockReceiptNotifier
	signer   *mockSigner
	audits   *mockAuditWriter
	svc      *RegistrationService
}

func newRegistrationFixture() *registrationFixture {
	f := &registrationFixture{
		repo: newMockRegistrationRepo(),
		catalog: &mockSeatCatalog{labels: map[string]struct{}{
			"UNHRC - France": {},
			"UNHRC - Chile":  {},
			"UNSC - Kenya":   {},
		}},
		uploads:  &mockUploader{},
		renderer: &mockReceiptRenderer{},
		notifier: &mockReceiptNotifier{configured: true},
		signer:   &mockSigner{},
		audits:   &mockAuditWriter{},
	}
	f.svc = NewRegistrationService(
		f.repo, f.catalog, f.uploads, f.renderer, f.notifier, f.signer, f.audits,
		PricingConfig{SeatPrice: 100, FacultyDiscount: 0.5, MaxSeatsPerOrder: 10},
		nil, zap.NewNop(),
	)
	return f
}

func validCreateRequest() models.CreateRegistrationRequest {
	return models.CreateRegistrationRequest{
		Email:          "head@robles.edu",
		FirstName:      "Maria",
		LastName:       "Gomez",
		Institution:    "Colegio Los Robles",
		Seats:          2,
		SeatsRequested: []string{"UNHRC - France", "UNHRC - Chile"},
		PaymentMethod:  "transfer",
	}
}

func TestRegistrationCreatePersistsPendingWithReceipt(t *testing.T) {
	f := newRegistrationFixture()

	reg, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusPending, reg.Status)
	assert.Equal(t, 200.0, reg.AmountDue)
	assert.Equal(t, 1, f.renderer.calls)
	assert.Equal(t, 1, f.uploads.calls)
	assert.Equal(t, 1, f.notifier.sent)
	assert.Contains(t, reg.ReceiptPDFPath, "receipts/colegio-los-robles-")

	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, models.AuditActionRegistrationCreated, f.audits.entries[0].Action)
}

func TestRegistrationCreateAppliesFacultyDiscount(t *testing.T) {
	f := newRegistrationFixture()
	req := validCreateRequest()
	req.IsFaculty = true

	reg, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 100.0, reg.AmountDue)
}

func TestRegistrationCreateRejectsUnknownSeats(t *testing.T) {
	f := newRegistrationFixture()
	req := validCreateRequest()
	req.SeatsRequested = []string{"UNHRC - France", "DISEC - Mars"}

	_, err := f.svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISEC - Mars")
	assert.Empty(t, f.repo.created)
}

func TestRegistrationCreateRejectsBackupsWithoutFlag(t *testing.T) {
	f := newRegistrationFixture()
	req := validCreateRequest()
	req.BackupSeatsRequested = []string{"UNSC - Kenya"}

	_, err := f.svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires_backup")
}

func TestRegistrationCreateRejectsOverCap(t *testing.T) {
	f := newRegistrationFixture()
	req := validCreateRequest()
	req.Seats = 11

	_, err := f.svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum per order")
}

func TestRegistrationCreateReceiptFailureIsNonFatal(t *testing.T) {
	f := newRegistrationFixture()
	f.uploads.err = errors.New("disk full")

	reg, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Empty(t, reg.ReceiptPDFURL)
	require.Len(t, f.repo.created, 1)
}

func TestRegistrationCreateEmailFailureIsNonFatal(t *testing.T) {
	f := newRegistrationFixture()
	f.notifier.err = errors.New("smtp refused")

	_, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	require.Len(t, f.repo.created, 1)
}

func TestRegistrationRejectSetsStatusAndAudits(t *testing.T) {
	f := newRegistrationFixture()
	reg, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	f.audits.entries = nil

	rejected, err := f.svc.Reject(context.Background(), reg.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusRejected, rejected.Status)
	assert.Equal(t, models.RegistrationStatusRejected, f.repo.statuses[reg.ID])
	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, models.AuditActionRegistrationReject, f.audits.entries[0].Action)
}

func TestRegistrationRejectTwiceConflicts(t *testing.T) {
	f := newRegistrationFixture()
	reg, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	_, err = f.svc.Reject(context.Background(), reg.ID, "admin-1")
	require.NoError(t, err)
	_, err = f.svc.Reject(context.Background(), reg.ID, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegistrationResendReceiptRequiresNotifier(t *testing.T) {
	f := newRegistrationFixture()
	reg, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	f.notifier.configured = false

	err = f.svc.ResendReceipt(context.Background(), reg.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestRegistrationResendReceiptAudits(t *testing.T) {
	f := newRegistrationFixture()
	reg, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	f.audits.entries = nil
	f.notifier.sent = 0

	require.NoError(t, f.svc.ResendReceipt(context.Background(), reg.ID))
	assert.Equal(t, 1, f.notifier.sent)
	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, models.AuditActionReceiptResent, f.audits.entries[0].Action)
}

func TestRegistrationResolveReceiptTokenMatchesStoredPath(t *testing.T) {
	f := newRegistrationFixture()
	reg, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	f.signer.registrationID = reg.ID
	f.signer.relPath = reg.ReceiptPDFPath

	path, err := f.svc.ResolveReceiptToken(context.Background(), "signed-token")
	require.NoError(t, err)
	assert.Equal(t, reg.ReceiptPDFPath, path)
}

func TestRegistrationResolveReceiptTokenRejectsMismatch(t *testing.T) {
	f := newRegistrationFixture()
	reg, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	f.signer.registrationID = reg.ID
	f.signer.relPath = "receipts/other.pdf"

	_, err = f.svc.ResolveReceiptToken(context.Background(), "signed-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRegistrationGetNotFound(t *testing.T) {
	f := newRegistrationFixture()

	_, err := f.svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
