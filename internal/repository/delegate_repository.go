package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/roblesmun/roblesmun-api/internal/models"
)

// DelegateRepository handles persistence of registration delegate rosters.
type DelegateRepository struct {
	db *sqlx.DB
}

// NewDelegateRepository constructs the repository.
func NewDelegateRepository(db *sqlx.DB) *DelegateRepository {
	return &DelegateRepository{db: db}
}

// ListByRegistration returns the roster for one registration.
func (r *DelegateRepository) ListByRegistration(ctx context.Context, registrationID string) ([]models.DelegateDetail, error) {
	const query = `SELECT d.id, d.registration_id, d.full_name, d.email, d.dietary_notes, d.seat_label,
        d.created_at, d.updated_at, r.institution
        FROM delegates d
        JOIN registrations r ON r.id = d.registration_id
        WHERE d.registration_id = $1
        ORDER BY d.full_name ASC`
	var delegates []models.DelegateDetail
	if err := r.db.SelectContext(ctx, &delegates, query, registrationID); err != nil {
		return nil, fmt.Errorf("list delegates: %w", err)
	}
	return delegates, nil
}

// FindByID returns a delegate by its ID.
func (r *DelegateRepository) FindByID(ctx context.Context, id string) (*models.Delegate, error) {
	const query = `SELECT id, registration_id, full_name, email, dietary_notes, seat_label, created_at, updated_at
        FROM delegates WHERE id = $1`
	var delegate models.Delegate
	if err := r.db.GetContext(ctx, &delegate, query, id); err != nil {
		return nil, err
	}
	return &delegate, nil
}

// Create persists a new delegate.
func (r *DelegateRepository) Create(ctx context.Context, delegate *models.Delegate) error {
	if delegate.ID == "" {
		delegate.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	delegate.CreatedAt = now
	delegate.UpdatedAt = now

	const query = `INSERT INTO delegates (id, registration_id, full_name, email, dietary_notes, seat_label, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		delegate.ID, delegate.RegistrationID, delegate.FullName, delegate.Email,
		delegate.DietaryNotes, delegate.SeatLabel, delegate.CreatedAt, delegate.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create delegate: %w", err)
	}
	return nil
}

// Update overwrites a delegate's mutable fields.
func (r *DelegateRepository) Update(ctx context.Context, delegate *models.Delegate) error {
	delegate.UpdatedAt = time.Now().UTC()

	const query = `UPDATE delegates SET full_name = $2, email = $3, dietary_notes = $4,
        seat_label = $5, updated_at = $6 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		delegate.ID, delegate.FullName, delegate.Email, delegate.DietaryNotes,
		delegate.SeatLabel, delegate.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update delegate: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update delegate: delegate %s not found", delegate.ID)
	}
	return nil
}

// Delete removes a delegate.
func (r *DelegateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM delegates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete delegate: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("delete delegate: delegate %s not found", id)
	}
	return nil
}
