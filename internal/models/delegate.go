package models

import "time"

// Delegate is one attendee on a registration's roster. SeatLabel stays empty
// until the admin maps the delegate onto one of the assigned seats.
type Delegate struct {
	ID             string    `db:"id" json:"id"`
	RegistrationID string    `db:"registration_id" json:"registration_id"`
	FullName       string    `db:"full_name" json:"full_name"`
	Email          string    `db:"email" json:"email,omitempty"`
	DietaryNotes   string    `db:"dietary_notes" json:"dietary_notes,omitempty"`
	SeatLabel      string    `db:"seat_label" json:"seat_label,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// DelegateDetail enriches a delegate with its registration's institution.
type DelegateDetail struct {
	Delegate
	Institution string `db:"institution" json:"institution"`
}
