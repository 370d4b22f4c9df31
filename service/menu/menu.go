package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/caferp/models"
)

type CreateMenuItemInput struct {
	Name        string          `json:"name"`
	Category    *string         `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
}

type IService interface {
	Create(ctx context.Context, input CreateMenuItemInput) (*models.MenuItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	List(ctx context.Context, onlyAvailable bool) ([]models.MenuItem, error)
	Update(ctx context.Context, id uuid.UUID, patch models.MenuItemPatch) (*models.MenuItem, error)
}

func NewService(db *sqlx.DB) IService {
	return &service{db: db}
}

type service struct {
	db *sqlx.DB
}

func (s *service) Create(ctx context.Context, input CreateMenuItemInput) (*models.MenuItem, error) {
	if input.Name == "" {
		return nil, models.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if input.Price.IsNegative() {
		return nil, models.ValidationError{Field: "price", Reason: "must not be negative"}
	}

	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO menu_items (name, category, price, is_available)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		input.Name, input.Category, input.Price, input.IsAvailable,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.GetContext(ctx, &item, `
		SELECT id, name, category, price, is_available, created_at
		FROM menu_items
		WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundError{Entity: "menu item", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load menu item: %w", err)
	}
	return &item, nil
}

func (s *service) List(ctx context.Context, onlyAvailable bool) ([]models.MenuItem, error) {
	query := `
		SELECT id, name, category, price, is_available, created_at
		FROM menu_items`
	if onlyAvailable {
		query += ` WHERE is_available`
	}
	query += ` ORDER BY created_at DESC`

	items := []models.MenuItem{}
	if err := s.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

// Update changes the catalog entry only; snapshot prices on existing
// order lines are never touched by a catalog price change.
func (s *service) Update(ctx context.Context, id uuid.UUID, patch models.MenuItemPatch) (*models.MenuItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, models.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		item.Name = *patch.Name
	}
	if patch.Category != nil {
		item.Category = patch.Category
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, models.ValidationError{Field: "price", Reason: "must not be negative"}
		}
		item.Price = *patch.Price
	}
	if patch.IsAvailable != nil {
		item.IsAvailable = *patch.IsAvailable
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name = $1, category = $2, price = $3, is_available = $4
		WHERE id = $5`,
		item.Name, item.Category, item.Price, item.IsAvailable, item.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	return item, nil
}
