package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/roblesmun/roblesmun-api/internal/models"
)

type mailClient interface {
	IsConfigured() bool
	Send(to, subject, body string) error
}

// NotificationService formats and sends the conference's transactional
// email. It is deliberately thin: message bodies are plain text and every
// caller treats delivery as best-effort.
type NotificationService struct {
	mail      mailClient
	eventName string
	logger    *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(mail mailClient, eventName string, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if eventName == "" {
		eventName = "ROBLESMUN"
	}
	return &NotificationService{mail: mail, eventName: eventName, logger: logger}
}

// IsConfigured reports whether outbound email can be attempted.
func (s *NotificationService) IsConfigured() bool {
	return s.mail != nil && s.mail.IsConfigured()
}

// SendAssignment notifies the registrant of their confirmed seats.
func (s *NotificationService) SendAssignment(reg *models.Registration, assignedSeats []string, notes string) error {
	subject := fmt.Sprintf("%s — seat assignment for %s", s.eventName, reg.Institution)

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s %s,\n\n", reg.FirstName, reg.LastName)
	fmt.Fprintf(&b, "Your registration for %s has been verified. %d of %d requested seats were assigned:\n\n",
		s.eventName, len(assignedSeats), reg.Seats)
	for _, seat := range assignedSeats {
		fmt.Fprintf(&b, "  - %s\n", seat)
	}
	if reg.AssignmentPDFURL != "" {
		fmt.Fprintf(&b, "\nA summary document is available at:\n%s\n", reg.AssignmentPDFURL)
	}
	if strings.TrimSpace(notes) != "" {
		fmt.Fprintf(&b, "\nNotes from the organizing team:\n%s\n", notes)
	}
	b.WriteString("\nWe look forward to seeing you at the conference.\n")

	return s.mail.Send(reg.Email, subject, b.String())
}

// SendReceipt mails the registration confirmation with the receipt link.
func (s *NotificationService) SendReceipt(reg *models.Registration) error {
	subject := fmt.Sprintf("%s — registration received", s.eventName)

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s %s,\n\n", reg.FirstName, reg.LastName)
	fmt.Fprintf(&b, "We received your registration for %s (%d seats, amount due $%.2f via %s).\n",
		s.eventName, reg.Seats, reg.AmountDue, reg.PaymentMethod)
	if reg.ReceiptPDFURL != "" {
		fmt.Fprintf(&b, "\nYour receipt:\n%s\n", reg.ReceiptPDFURL)
	}
	b.WriteString("\nSeat assignment will be confirmed once payment is verified.\n")

	return s.mail.Send(reg.Email, subject, b.String())
}
