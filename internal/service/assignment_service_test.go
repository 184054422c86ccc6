package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roblesmun/roblesmun-api/internal/models"
)

type mockAssignmentStore struct {
	updates []models.AssignmentRecord
	err     error
}

func (m *mockAssignmentStore) UpdateAssignment(ctx context.Context, id string, record models.AssignmentRecord) error {
	if m.err != nil {
		return m.err
	}
	m.updates = append(m.updates, record)
	return nil
}

type mockUploader struct {
	calls int
	err   error
}

func (m *mockUploader) Upload(filename, contentType string, data []byte) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return "https://files.example.org/" + filename, nil
}

type mockRenderer struct {
	calls int
}

func (m *mockRenderer) RenderAssignment(reg *models.Registration, seats []string) ([]byte, error) {
	m.calls++
	return []byte("%PDF-1.4 fake"), nil
}

type mockNotifier struct {
	configured bool
	sent       int
	err        error
	lastSeats  []string
	lastReg    *models.Registration
}

func (m *mockNotifier) IsConfigured() bool { return m.configured }

func (m *mockNotifier) SendAssignment(reg *models.Registration, seats []string, notes string) error {
	if m.err != nil {
		return m.err
	}
	m.sent++
	m.lastSeats = seats
	m.lastReg = reg
	return nil
}

type mockAuditWriter struct {
	entries []models.AuditLog
	err     error
}

func (m *mockAuditWriter) Create(ctx context.Context, entry *models.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

type assignmentFixture struct {
	store    *mockAssignmentStore
	uploads  *mockUploader
	renderer *mockRenderer
	notifier *mockNotifier
	audits   *mockAuditWriter
	svc      *AssignmentService
}

func newAssignmentFixture() *assignmentFixture {
	f := &assignmentFixture{
		store:    &mockAssignmentStore{},
		uploads:  &mockUploader{},
		renderer: &mockRenderer{},
		notifier: &mockNotifier{configured: true},
		audits:   &mockAuditWriter{},
	}
	f.svc = NewAssignmentService(f.store, f.uploads, f.renderer, f.notifier, f.audits, zap.NewNop())
	return f
}

func processRegistration() *models.Registration {
	return &models.Registration{
		ID:             "reg-1",
		Email:          "head@school.edu",
		Institution:    "Colegio Los Robles",
		Seats:          3,
		SeatsRequested: []string{"C1-A", "C1-B", "C1-C"},
		RequiresBackup: false,
		Status:         models.RegistrationStatusPending,
	}
}

func TestProcessPartialAssignment(t *testing.T) {
	f := newAssignmentFixture()
	reg := processRegistration()

	result := f.svc.Process(context.Background(), reg, []string{"C1-A", "C1-B"}, "note")
	require.True(t, result.Success)
	assert.True(t, result.EmailSent)
	assert.Empty(t, result.Validation.Errors)
	require.Len(t, result.Validation.Warnings, 1)
	assert.Contains(t, result.Validation.Warnings[0], "2 of 3")

	require.Len(t, f.store.updates, 1)
	record := f.store.updates[0]
	assert.Len(t, record.AssignedSeats, 2)
	assert.Equal(t, 67, record.AssignmentPercentage)
	assert.False(t, record.IsCompleteAssignment)
	assert.Equal(t, models.RegistrationStatusVerified, record.Status)
	assert.True(t, record.AssignmentValidated)
	assert.Equal(t, "note", record.AssignmentNotes)
	assert.NotEmpty(t, record.AssignmentPDFURL)

	assert.Contains(t, result.Message, "Assigned 2 of 3 seats")
	assert.Contains(t, result.Message, "Status changed to verified")
}

func TestProcessDuplicatesRejectedWithoutSideEffects(t *testing.T) {
	f := newAssignmentFixture()
	reg := processRegistration()

	result := f.svc.Process(context.Background(), reg, []string{"C1-A", "C1-A"}, "")
	assert.False(t, result.Success)
	assert.Contains(t, result.Validation.Errors, "duplicate seats detected")
	assert.False(t, result.EmailSent)

	// The validation gate blocks every downstream collaborator.
	assert.Empty(t, f.store.updates)
	assert.Zero(t, f.uploads.calls)
	assert.Zero(t, f.renderer.calls)
	assert.Zero(t, f.notifier.sent)
}

func TestProcessBackupOnlyCompleteAssignment(t *testing.T) {
	f := newAssignmentFixture()
	reg := &models.Registration{
		ID:                   "reg-2",
		Email:                "head@school.edu",
		Institution:          "Liceo Andino",
		Seats:                2,
		SeatsRequested:       []string{"C1-A"},
		BackupSeatsRequested: []string{"C1-X", "C1-Y"},
		RequiresBackup:       true,
	}

	result := f.svc.Process(context.Background(), reg, []string{"C1-X", "C1-Y"}, "")
	require.True(t, result.Success)
	assert.Contains(t, result.Validation.Warnings, "all assigned seats come from the backup list")

	require.Len(t, f.store.updates, 1)
	assert.True(t, f.store.updates[0].IsCompleteAssignment)
	assert.Equal(t, 100, f.store.updates[0].AssignmentPercentage)
}

func TestProcessUploadFailureIsNonFatal(t *testing.T) {
	f := newAssignmentFixture()
	f.uploads.err = errors.New("bucket unavailable")
	reg := processRegistration()

	result := f.svc.Process(context.Background(), reg, []string{"C1-A", "C1-B", "C1-C"}, "")
	require.True(t, result.Success)

	require.Len(t, f.store.updates, 1)
	assert.Empty(t, f.store.updates[0].AssignmentPDFURL)
	assert.Contains(t, result.Message, "PDF could not be stored")
}

func TestProcessPersistenceFailureIsFatal(t *testing.T) {
	f := newAssignmentFixture()
	f.store.err = errors.New("connection reset")
	reg := processRegistration()

	result := f.svc.Process(context.Background(), reg, []string{"C1-A"}, "")
	assert.False(t, result.Success)
	assert.Equal(t, "the assignment could not be saved due to an internal error", result.Message)
	assert.NotContains(t, result.Message, "connection reset")
	assert.Zero(t, f.notifier.sent)

	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, models.AuditActionAssignmentError, f.audits.entries[0].Action)
}

func TestProcessEmailFailureIsNonFatal(t *testing.T) {
	f := newAssignmentFixture()
	f.notifier.err = errors.New("smtp refused")
	reg := processRegistration()

	result := f.svc.Process(context.Background(), reg, []string{"C1-A", "C1-B", "C1-C"}, "")
	require.True(t, result.Success)
	assert.False(t, result.EmailSent)
	assert.Contains(t, result.Message, "confirmation email could not be sent")
	require.Len(t, f.store.updates, 1)
}

func TestProcessNotifierNotConfigured(t *testing.T) {
	f := newAssignmentFixture()
	f.notifier.configured = false
	reg := processRegistration()

	result := f.svc.Process(context.Background(), reg, []string{"C1-A"}, "")
	require.True(t, result.Success)
	assert.False(t, result.EmailSent)
	assert.Contains(t, result.Message, "not configured")
	assert.Zero(t, f.notifier.sent)
}

func TestProcessNotificationUsesUpdatedView(t *testing.T) {
	f := newAssignmentFixture()
	reg := processRegistration()

	result := f.svc.Process(context.Background(), reg, []string{"C1-A", "C1-B"}, "late arrival")
	require.True(t, result.Success)
	require.NotNil(t, f.notifier.lastReg)
	assert.Equal(t, models.RegistrationStatusVerified, f.notifier.lastReg.Status)
	assert.Equal(t, "late arrival", f.notifier.lastReg.AssignmentNotes)
	assert.Equal(t, 67, f.notifier.lastReg.AssignmentPercentage)

	// The caller's copy is untouched; persistence is the source of truth.
	assert.Equal(t, models.RegistrationStatusPending, reg.Status)
}

func TestProcessWritesCreationAuditEntry(t *testing.T) {
	f := newAssignmentFixture()
	reg := processRegistration()

	result := f.svc.Process(context.Background(), reg, []string{"C1-A", "C1-B"}, "")
	require.True(t, result.Success)
	require.Len(t, f.audits.entries, 1)
	entry := f.audits.entries[0]
	assert.Equal(t, models.AuditActionAssignmentCreated, entry.Action)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "reg-1", *entry.ResourceID)
	assert.Contains(t, string(entry.Snapshot), "\"assigned\":2")
}

func TestProcessAuditFailureIsSwallowed(t *testing.T) {
	f := newAssignmentFixture()
	f.audits.err = errors.New("table missing")
	reg := processRegistration()

	result := f.svc.Process(context.Background(), reg, []string{"C1-A"}, "")
	assert.True(t, result.Success)
}

func TestResendRequiresAssignedSeats(t *testing.T) {
	f := newAssignmentFixture()
	reg := processRegistration()

	result := f.svc.Resend(context.Background(), reg)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "no assigned seats")
	assert.Zero(t, f.notifier.sent)
}

func TestResendRequiresConfiguredNotifier(t *testing.T) {
	f := newAssignmentFixture()
	f.notifier.configured = false
	reg := processRegistration()
	reg.AssignedSeats = []string{"C1-A"}

	result := f.svc.Resend(context.Background(), reg)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "not configured")
}

func TestResendUsesPersistedSeats(t *testing.T) {
	f := newAssignmentFixture()
	reg := processRegistration()
	reg.AssignedSeats = []string{"C1-A", "C1-B"}
	reg.AssignmentNotes = "persisted note"

	result := f.svc.Resend(context.Background(), reg)
	require.True(t, result.Success)
	assert.True(t, result.EmailSent)
	assert.Equal(t, []string{"C1-A", "C1-B"}, f.notifier.lastSeats)
	assert.Zero(t, f.renderer.calls)
	assert.Zero(t, f.uploads.calls)

	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, models.AuditActionPDFResent, f.audits.entries[0].Action)
}

func TestAssignmentFilenameSanitizesInstitution(t *testing.T) {
	reg := processRegistration()
	f := newAssignmentFixture()

	result := f.svc.Process(context.Background(), reg, []string{"C1-A"}, "")
	require.True(t, result.Success)
	url := f.store.updates[0].AssignmentPDFURL
	assert.Contains(t, url, "assignments/colegio-los-robles-")
	assert.Contains(t, url, ".pdf")
}
