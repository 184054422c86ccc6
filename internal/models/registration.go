package models

import (
	"time"

	"github.com/lib/pq"
)

// RegistrationStatus tracks the admin verification state of a registration.
type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "pending"
	RegistrationStatusVerified RegistrationStatus = "verified"
	RegistrationStatusRejected RegistrationStatus = "rejected"
)

// Registration is one institution's (or individual's) application to attend.
// Seat labels are composite "{committee} - {seat}" strings. The assignment
// fields are written only by the assignment workflow.
type Registration struct {
	ID          string `db:"id" json:"id"`
	Email       string `db:"email" json:"email"`
	FirstName   string `db:"first_name" json:"first_name"`
	LastName    string `db:"last_name" json:"last_name"`
	Institution string `db:"institution" json:"institution"`
	IsFaculty   bool   `db:"is_faculty" json:"is_faculty"`

	Seats                int            `db:"seats" json:"seats"`
	SeatsRequested       pq.StringArray `db:"seats_requested" json:"seats_requested"`
	BackupSeatsRequested pq.StringArray `db:"backup_seats_requested" json:"backup_seats_requested"`
	RequiresBackup       bool           `db:"requires_backup" json:"requires_backup"`

	PaymentMethod    string  `db:"payment_method" json:"payment_method"`
	PaymentReference string  `db:"payment_reference" json:"payment_reference,omitempty"`
	AmountDue        float64 `db:"amount_due" json:"amount_due"`
	ReceiptPDFPath   string  `db:"receipt_pdf_path" json:"-"`
	ReceiptPDFURL    string  `db:"receipt_pdf_url" json:"receipt_pdf_url,omitempty"`

	Status RegistrationStatus `db:"status" json:"status"`

	AssignedSeats            pq.StringArray `db:"assigned_seats" json:"assigned_seats"`
	AssignmentDate           *time.Time     `db:"assignment_date" json:"assignment_date,omitempty"`
	AssignmentNotes          string         `db:"assignment_notes" json:"assignment_notes,omitempty"`
	AssignmentValidated      bool           `db:"assignment_validated" json:"assignment_validated"`
	AssignmentValidationDate *time.Time     `db:"assignment_validation_date" json:"assignment_validation_date,omitempty"`
	AssignmentPDFURL         string         `db:"assignment_pdf_url" json:"assignment_pdf_url,omitempty"`
	AssignmentPercentage     int            `db:"assignment_percentage" json:"assignment_percentage"`
	IsCompleteAssignment     bool           `db:"is_complete_assignment" json:"is_complete_assignment"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AssignmentRecord carries the fields a successful assignment writes back.
// A later assignment overwrites the record wholesale; there is no merging.
type AssignmentRecord struct {
	AssignedSeats            []string
	AssignmentDate           time.Time
	AssignmentNotes          string
	AssignmentValidated      bool
	AssignmentValidationDate time.Time
	AssignmentPDFURL         string
	AssignmentPercentage     int
	IsCompleteAssignment     bool
	Status                   RegistrationStatus
	UpdatedAt                time.Time
}

// CreateRegistrationRequest is the wizard's submission payload. Seat labels
// are the composite "{committee} - {seat}" strings from the catalog.
type CreateRegistrationRequest struct {
	Email                string   `json:"email" validate:"required,email"`
	FirstName            string   `json:"first_name" validate:"required"`
	LastName             string   `json:"last_name" validate:"required"`
	Institution          string   `json:"institution" validate:"required"`
	IsFaculty            bool     `json:"is_faculty"`
	Seats                int      `json:"seats" validate:"required,min=1"`
	SeatsRequested       []string `json:"seats_requested" validate:"required,min=1,dive,required"`
	BackupSeatsRequested []string `json:"backup_seats_requested" validate:"omitempty,dive,required"`
	RequiresBackup       bool     `json:"requires_backup"`
	PaymentMethod        string   `json:"payment_method" validate:"required,oneof=transfer cash card"`
	PaymentReference     string   `json:"payment_reference"`
}

// RegistrationFilter captures listing criteria.
type RegistrationFilter struct {
	Status      RegistrationStatus
	Institution string
	Search      string
	Faculty     *bool
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
