package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roblesmun/roblesmun-api/internal/models"
)

type assignmentStore interface {
	UpdateAssignment(ctx context.Context, id string, record models.AssignmentRecord) error
}

type assignmentUploader interface {
	Upload(filename, contentType string, data []byte) (string, error)
}

type assignmentRenderer interface {
	RenderAssignment(reg *models.Registration, assignedSeats []string) ([]byte, error)
}

type assignmentNotifier interface {
	IsConfigured() bool
	SendAssignment(reg *models.Registration, assignedSeats []string, notes string) error
}

type auditWriter interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// ProcessResult is the consolidated outcome returned to the admin UI. The
// documented flows never surface a raw error; everything is encoded here.
type ProcessResult struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Validation ValidationResult `json:"validation"`
	EmailSent  bool             `json:"email_sent"`
}

type stepOutcome int

const (
	stepSkipped stepOutcome = iota
	stepSucceeded
	stepFailed
)

// processSteps records how each best-effort side effect went, so the final
// message derives from one accumulator instead of scattered flags.
type processSteps struct {
	upload stepOutcome
	email  stepOutcome
}

// AssignmentService orchestrates the seat-assignment workflow: validate the
// proposal, render and store the PDF, persist the assignment record, notify
// the registrant, and leave an audit trail. Only the persistence step is
// fatal; upload, email and audit failures degrade the result honestly but
// do not abort it.
type AssignmentService struct {
	registrations assignmentStore
	uploads       assignmentUploader
	renderer      assignmentRenderer
	notifier      assignmentNotifier
	audits        auditWriter
	logger        *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(
	registrations assignmentStore,
	uploads assignmentUploader,
	renderer assignmentRenderer,
	notifier assignmentNotifier,
	audits auditWriter,
	logger *zap.Logger,
) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		registrations: registrations,
		uploads:       uploads,
		renderer:      renderer,
		notifier:      notifier,
		audits:        audits,
		logger:        logger,
	}
}

// Process runs the full assignment lifecycle for one registration. A later
// call overwrites the previous assignment wholesale; there is no merging and
// no coordination between concurrent calls for the same registration.
func (s *AssignmentService) Process(ctx context.Context, reg *models.Registration, proposedSeats []string, notes string) ProcessResult {
	validation := ValidateAssignment(reg, proposedSeats)
	if !validation.IsValid() {
		return ProcessResult{
			Success:    false,
			Message:    "assignment rejected: " + strings.Join(validation.Errors, "; "),
			Validation: validation,
		}
	}

	now := time.Now().UTC()
	percentage, complete := AssignmentProgress(len(proposedSeats), reg.Seats)

	var steps processSteps
	pdfURL := ""
	view := *reg
	view.AssignmentNotes = notes
	if data, err := s.renderer.RenderAssignment(&view, proposedSeats); err != nil {
		s.logger.Warn("assignment pdf render failed", zap.String("registration_id", reg.ID), zap.Error(err))
		steps.upload = stepFailed
	} else if url, err := s.uploads.Upload(assignmentFilename(reg.Institution, now), "application/pdf", data); err != nil {
		s.logger.Warn("assignment pdf upload failed", zap.String("registration_id", reg.ID), zap.Error(err))
		steps.upload = stepFailed
	} else {
		pdfURL = url
		steps.upload = stepSucceeded
	}

	record := models.AssignmentRecord{
		AssignedSeats:            proposedSeats,
		AssignmentDate:           now,
		AssignmentNotes:          notes,
		AssignmentValidated:      true,
		AssignmentValidationDate: now,
		AssignmentPDFURL:         pdfURL,
		AssignmentPercentage:     percentage,
		IsCompleteAssignment:     complete,
		Status:                   models.RegistrationStatusVerified,
		UpdatedAt:                now,
	}
	if err := s.registrations.UpdateAssignment(ctx, reg.ID, record); err != nil {
		s.logger.Error("assignment persistence failed", zap.String("registration_id", reg.ID), zap.Error(err))
		s.audit(ctx, reg.ID, models.AuditActionAssignmentError, map[string]interface{}{
			"error":    err.Error(),
			"assigned": len(proposedSeats),
		})
		return ProcessResult{
			Success:    false,
			Message:    "the assignment could not be saved due to an internal error",
			Validation: validation,
		}
	}

	applyAssignment(&view, record)

	emailSent := false
	if s.notifier != nil && s.notifier.IsConfigured() {
		if err := s.notifier.SendAssignment(&view, proposedSeats, notes); err != nil {
			s.logger.Warn("assignment email failed", zap.String("registration_id", reg.ID), zap.Error(err))
			steps.email = stepFailed
		} else {
			emailSent = true
			steps.email = stepSucceeded
		}
	}

	s.audit(ctx, reg.ID, models.AuditActionAssignmentCreated, map[string]interface{}{
		"assigned":   len(proposedSeats),
		"requested":  reg.Seats,
		"email_sent": emailSent,
		"warnings":   validation.Warnings,
		"pdf_url":    pdfURL,
	})

	return ProcessResult{
		Success:    true,
		Message:    composeProcessMessage(len(proposedSeats), reg.Seats, validation.Warnings, steps),
		Validation: validation,
		EmailSent:  emailSent,
	}
}

// Resend re-sends the assignment notification using the persisted seats. It
// does not re-validate or re-render; whatever was stored is what goes out.
func (s *AssignmentService) Resend(ctx context.Context, reg *models.Registration) ProcessResult {
	if len(reg.AssignedSeats) == 0 {
		return ProcessResult{Success: false, Message: "the registration has no assigned seats yet"}
	}
	if s.notifier == nil || !s.notifier.IsConfigured() {
		return ProcessResult{Success: false, Message: "email delivery is not configured"}
	}
	if err := s.notifier.SendAssignment(reg, reg.AssignedSeats, reg.AssignmentNotes); err != nil {
		s.logger.Warn("assignment resend failed", zap.String("registration_id", reg.ID), zap.Error(err))
		return ProcessResult{Success: false, Message: "the assignment email could not be sent"}
	}
	s.audit(ctx, reg.ID, models.AuditActionPDFResent, map[string]interface{}{
		"assigned": len(reg.AssignedSeats),
		"pdf_url":  reg.AssignmentPDFURL,
	})
	return ProcessResult{Success: true, Message: "assignment email resent", EmailSent: true}
}

// audit writes a best-effort trail entry. Failures are logged and swallowed.
func (s *AssignmentService) audit(ctx context.Context, registrationID, action string, snapshot map[string]interface{}) {
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

func applyAssignment(reg *models.Registration, record models.AssignmentRecord) {
	reg.AssignedSeats = record.AssignedSeats
	assignmentDate := record.AssignmentDate
	reg.AssignmentDate = &assignmentDate
	reg.AssignmentNotes = record.AssignmentNotes
	reg.AssignmentValidated = record.AssignmentValidated
	validationDate := record.AssignmentValidationDate
	reg.AssignmentValidationDate = &validationDate
	reg.AssignmentPDFURL = record.AssignmentPDFURL
	reg.AssignmentPercentage = record.AssignmentPercentage
	reg.IsCompleteAssignment = record.IsCompleteAssignment
	reg.Status = record.Status
	reg.UpdatedAt = record.UpdatedAt
}

func composeProcessMessage(assigned, requested int, warnings []string, steps processSteps) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assigned %d of %d seats.", assigned, requested)
	for _, warning := range warnings {
		b.WriteString(" Warning: " + warning + ".")
	}
	switch steps.email {
	case stepSucceeded:
		b.WriteString(" Confirmation email sent.")
	case stepFailed:
		b.WriteString(" The confirmation email could not be sent.")
	case stepSkipped:
		b.WriteString(" Email delivery is not configured; no notification was sent.")
	}
	if steps.upload == stepFailed {
		b.WriteString(" The assignment PDF could not be stored.")
	}
	b.WriteString(" Status changed to verified.")
	return b.String()
}

var filenameCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// assignmentFilename derives a collision-resistant storage path from the
// institution name and a UTC timestamp.
func assignmentFilename(institution string, ts time.Time) string {
	slug := strings.Trim(filenameCleaner.ReplaceAllString(strings.ToLower(institution), "-"), "-")
	if slug == "" {
		slug = "registration"
	}
	return fmt.Sprintf("assignments/%s-%s.pdf", slug, ts.Format("20060102T150405"))
}
