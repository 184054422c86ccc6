package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/roblesmun/roblesmun-api/internal/models"
)

const pressColumns = `id, title, kind, url, asset_path, asset_url, published_at, created_at, updated_at`

// PressRepository handles persistence of press media entries.
type PressRepository struct {
	db *sqlx.DB
}

// NewPressRepository constructs the repository.
func NewPressRepository(db *sqlx.DB) *PressRepository {
	return &PressRepository{db: db}
}

// List returns press items, optionally filtered by kind.
func (r *PressRepository) List(ctx context.Context, kind models.PressKind) ([]models.PressItem, error) {
	query := fmt.Sprintf("SELECT %s FROM press_items", pressColumns)
	var args []interface{}
	if kind != "" {
		query += " WHERE kind = $1"
		args = append(args, kind)
	}
	query += " ORDER BY published_at DESC NULLS LAST, created_at DESC"

	var items []models.PressItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list press items: %w", err)
	}
	return items, nil
}

// FindByID returns a press item by its ID.
func (r *PressRepository) FindByID(ctx context.Context, id string) (*models.PressItem, error) {
	query := fmt.Sprintf("SELECT %s FROM press_items WHERE id = $1", pressColumns)
	var item models.PressItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create persists a new press item.
func (r *PressRepository) Create(ctx context.Context, item *models.PressItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	const query = `INSERT INTO press_items (id, title, kind, url, asset_path, asset_url, published_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		item.ID, item.Title, item.Kind, item.URL, item.AssetPath, item.AssetURL,
		item.PublishedAt, item.CreatedAt, item.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create press item: %w", err)
	}
	return nil
}

// Update overwrites a press item's mutable fields.
func (r *PressRepository) Update(ctx context.Context, item *models.PressItem) error {
	item.UpdatedAt = time.Now().UTC()

	const query = `UPDATE press_items SET title = $2, kind = $3, url = $4, asset_path = $5,
        asset_url = $6, published_at = $7, updated_at = $8 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		item.ID, item.Title, item.Kind, item.URL, item.AssetPath,
		item.AssetURL, item.PublishedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update press item: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update press item: item %s not found", item.ID)
	}
	return nil
}

// Delete removes a press item.
func (r *PressRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM press_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete press item: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("delete press item: item %s not found", id)
	}
	return nil
}
