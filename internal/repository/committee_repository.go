package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/roblesmun/roblesmun-api/internal/models"
)

const committeeColumns = `id, name, topic, description, level, seat_names, open, created_at, updated_at`

// CommitteeRepository handles persistence of committees.
type CommitteeRepository struct {
	db *sqlx.DB
}

// NewCommitteeRepository constructs the repository.
func NewCommitteeRepository(db *sqlx.DB) *CommitteeRepository {
	return &CommitteeRepository{db: db}
}

// List returns committees filtered by the provided criteria.
func (r *CommitteeRepository) List(ctx context.Context, filter models.CommitteeFilter) ([]models.Committee, error) {
	base := "FROM committees"
	var conditions []string
	var args []interface{}

	if filter.Open != nil {
		conditions = append(conditions, fmt.Sprintf("open = $%d", len(args)+1))
		args = append(args, *filter.Open)
	}
	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR topic ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY name ASC", committeeColumns, base+clause)
	var committees []models.Committee
	if err := r.db.SelectContext(ctx, &committees, query, args...); err != nil {
		return nil, fmt.Errorf("list committees: %w", err)
	}
	return committees, nil
}

// FindByID returns a committee by its ID.
func (r *CommitteeRepository) FindByID(ctx context.Context, id string) (*models.Committee, error) {
	query := fmt.Sprintf("SELECT %s FROM committees WHERE id = $1", committeeColumns)
	var committee models.Committee
	if err := r.db.GetContext(ctx, &committee, query, id); err != nil {
		return nil, err
	}
	return &committee, nil
}

// Create persists a new committee.
func (r *CommitteeRepository) Create(ctx context.Context, committee *models.Committee) error {
	if committee.ID == "" {
		committee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	committee.CreatedAt = now
	committee.UpdatedAt = now

	const query = `INSERT INTO committees (id, name, topic, description, level, seat_names, open, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		committee.ID, committee.Name, committee.Topic, committee.Description,
		committee.Level, committee.SeatNames, committee.Open, committee.CreatedAt, committee.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create committee: %w", err)
	}
	return nil
}

// Update overwrites a committee's mutable fields.
func (r *CommitteeRepository) Update(ctx context.Context, committee *models.Committee) error {
	committee.UpdatedAt = time.Now().UTC()

	const query = `UPDATE committees SET name = $2, topic = $3, description = $4, level = $5,
        seat_names = $6, open = $7, updated_at = $8 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		committee.ID, committee.Name, committee.Topic, committee.Description,
		committee.Level, committee.SeatNames, committee.Open, committee.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update committee: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update committee: committee %s not found", committee.ID)
	}
	return nil
}

// Delete removes a committee.
func (r *CommitteeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM committees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete committee: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("delete committee: committee %s not found", id)
	}
	return nil
}
