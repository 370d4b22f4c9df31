package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem is a sellable product. Price is the current catalog price and
// may change over time; orders keep their own snapshot of it.
type MenuItem struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Category    *string         `db:"category" json:"category,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	IsAvailable bool            `db:"is_available" json:"is_available"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type MenuItemPatch struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	IsAvailable *bool            `json:"is_available,omitempty"`
}
