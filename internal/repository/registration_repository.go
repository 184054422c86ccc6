package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/roblesmun/roblesmun-api/internal/models"
)

const registrationColumns = `id, email, first_name, last_name, institution, is_faculty,
        seats, seats_requested, backup_seats_requested, requires_backup,
        payment_method, payment_reference, amount_due, receipt_pdf_path, receipt_pdf_url,
        status, assigned_seats, assignment_date, assignment_notes, assignment_validated,
        assignment_validation_date, assignment_pdf_url, assignment_percentage, is_complete_assignment,
        created_at, updated_at`

// RegistrationRepository handles persistence of registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// List returns registrations filtered by the provided criteria.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	base := "FROM registrations"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Institution != "" {
		conditions = append(conditions, fmt.Sprintf("institution = $%d", len(args)+1))
		args = append(args, filter.Institution)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(institution ILIKE $%d OR email ILIKE $%d OR last_name ILIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Faculty != nil {
		conditions = append(conditions, fmt.Sprintf("is_faculty = $%d", len(args)+1))
		args = append(args, *filter.Faculty)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at":  "created_at",
		"institution": "institution",
		"status":      "status",
		"seats":       "seats",
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	orderBy := allowedSorts[sortBy]
	if orderBy == "" {
		orderBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d",
		registrationColumns, base+clause, orderBy, order, size, offset)

	var registrations []models.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return registrations, total, nil
}

// FindByID returns a registration by its ID.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM registrations WHERE id = $1", registrationColumns)
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, id); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Create persists a new registration record.
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = now
	}
	reg.UpdatedAt = now

	const query = `INSERT INTO registrations (
        id, email, first_name, last_name, institution, is_faculty,
        seats, seats_requested, backup_seats_requested, requires_backup,
        payment_method, payment_reference, amount_due, receipt_pdf_path, receipt_pdf_url,
        status, created_at, updated_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	if _, err := r.db.ExecContext(ctx, query,
		reg.ID, reg.Email, reg.FirstName, reg.LastName, reg.Institution, reg.IsFaculty,
		reg.Seats, reg.SeatsRequested, reg.BackupSeatsRequested, reg.RequiresBackup,
		reg.PaymentMethod, reg.PaymentReference, reg.AmountDue, reg.ReceiptPDFPath, reg.ReceiptPDFURL,
		reg.Status, reg.CreatedAt, reg.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// UpdateAssignment overwrites the assignment fields for a registration.
// Plain keyed update: a concurrent assignment of the same registration is
// last-write-wins.
func (r *RegistrationRepository) UpdateAssignment(ctx context.Context, id string, record models.AssignmentRecord) error {
	const query = `UPDATE registrations SET
        assigned_seats = $2,
        assignment_date = $3,
        assignment_notes = $4,
        assignment_validated = $5,
        assignment_validation_date = $6,
        assignment_pdf_url = $7,
        assignment_percentage = $8,
        is_complete_assignment = $9,
        status = $10,
        updated_at = $11
    WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		id, pq.StringArray(record.AssignedSeats), record.AssignmentDate, record.AssignmentNotes,
		record.AssignmentValidated, record.AssignmentValidationDate, record.AssignmentPDFURL,
		record.AssignmentPercentage, record.IsCompleteAssignment, record.Status, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update assignment: registration %s not found", id)
	}
	return nil
}

// UpdateStatus sets the verification status (admin reject action).
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error {
	const query = `UPDATE registrations SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update registration status: registration %s not found", id)
	}
	return nil
}

// UpdateReceipt records the stored receipt path and its public URL.
func (r *RegistrationRepository) UpdateReceipt(ctx context.Context, id, path, url string) error {
	const query = `UPDATE registrations SET receipt_pdf_path = $2, receipt_pdf_url = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, path, url, time.Now().UTC()); err != nil {
		return fmt.Errorf("update registration receipt: %w", err)
	}
	return nil
}

// CountByStatus returns registration counts grouped by status for the
// admin dashboard.
func (r *RegistrationRepository) CountByStatus(ctx context.Context) (map[models.RegistrationStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS total FROM registrations GROUP BY status`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count registrations by status: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[models.RegistrationStatus]int)
	for rows.Next() {
		var status models.RegistrationStatus
		var total int
		if err := rows.Scan(&status, &total); err != nil {
			return nil, fmt.Errorf("scan registration count: %w", err)
		}
		counts[status] = total
	}
	return counts, rows.Err()
}
