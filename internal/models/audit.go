package models

import "time"

// Audit action tags recorded by the services. The assignment workflow writes
// its entries best-effort; a failed audit write never fails the operation.
const (
	AuditActionLogin               = "login"
	AuditActionAssignmentCreated   = "assignment_created"
	AuditActionAssignmentError     = "assignment_error"
	AuditActionPDFResent           = "pdf_resent"
	AuditActionRegistrationCreated = "registration_created"
	AuditActionRegistrationReject  = "registration_rejected"
	AuditActionReceiptResent       = "receipt_resent"
)

// AuditLog represents an append-only audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Snapshot   []byte    `db:"snapshot" json:"snapshot,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent  string    `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AuditFilter captures listing criteria for the admin review endpoint.
type AuditFilter struct {
	Action     string
	Resource   string
	ResourceID string
	Page       int
	PageSize   int
}
