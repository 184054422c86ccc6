package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/roblesmun/roblesmun-api/internal/models"
)

const sponsorColumns = `id, name, tier, website, logo_path, logo_url, active, created_at, updated_at`

// SponsorRepository handles persistence of sponsors.
type SponsorRepository struct {
	db *sqlx.DB
}

// NewSponsorRepository constructs the repository.
func NewSponsorRepository(db *sqlx.DB) *SponsorRepository {
	return &SponsorRepository{db: db}
}

// List returns sponsors, optionally only the active ones.
func (r *SponsorRepository) List(ctx context.Context, activeOnly bool) ([]models.Sponsor, error) {
	query := fmt.Sprintf("SELECT %s FROM sponsors", sponsorColumns)
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY tier ASC, name ASC"

	var sponsors []models.Sponsor
	if err := r.db.SelectContext(ctx, &sponsors, query); err != nil {
		return nil, fmt.Errorf("list sponsors: %w", err)
	}
	return sponsors, nil
}

// FindByID returns a sponsor by its ID.
func (r *SponsorRepository) FindByID(ctx context.Context, id string) (*models.Sponsor, error) {
	query := fmt.Sprintf("SELECT %s FROM sponsors WHERE id = $1", sponsorColumns)
	var sponsor models.Sponsor
	if err := r.db.GetContext(ctx, &sponsor, query, id); err != nil {
		return nil, err
	}
	return &sponsor, nil
}

// Create persists a new sponsor.
func (r *SponsorRepository) Create(ctx context.Context, sponsor *models.Sponsor) error {
	if sponsor.ID == "" {
		sponsor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sponsor.CreatedAt = now
	sponsor.UpdatedAt = now

	const query = `INSERT INTO sponsors (id, name, tier, website, logo_path, logo_url, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		sponsor.ID, sponsor.Name, sponsor.Tier, sponsor.Website,
		sponsor.LogoPath, sponsor.LogoURL, sponsor.Active, sponsor.CreatedAt, sponsor.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create sponsor: %w", err)
	}
	return nil
}

// Update overwrites a sponsor's mutable fields.
func (r *SponsorRepository) Update(ctx context.Context, sponsor *models.Sponsor) error {
	sponsor.UpdatedAt = time.Now().UTC()

	const query = `UPDATE sponsors SET name = $2, tier = $3, website = $4, logo_path = $5,
        logo_url = $6, active = $7, updated_at = $8 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		sponsor.ID, sponsor.Name, sponsor.Tier, sponsor.Website,
		sponsor.LogoPath, sponsor.LogoURL, sponsor.Active, sponsor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sponsor: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update sponsor: sponsor %s not found", sponsor.ID)
	}
	return nil
}

// Delete removes a sponsor.
func (r *SponsorRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sponsors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sponsor: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("delete sponsor: sponsor %s not found", id)
	}
	return nil
}
