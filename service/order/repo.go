package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ray-remotestate/caferp/database"
	"github.com/ray-remotestate/caferp/models"
)

type IRepo interface {
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	MenuItemExists(ctx context.Context, id uuid.UUID) (bool, error)
	MissingMenuItems(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	InsertOrder(ctx context.Context, userID uuid.UUID, items []models.CreateOrderItemInput) (uuid.UUID, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderRead(ctx context.Context, id uuid.UUID) (*models.OrderRead, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	UpdateOrder(ctx context.Context, order *models.Order, item *models.OrderItem) error
	DeleteOrder(ctx context.Context, id uuid.UUID) (bool, error)
	ListOrderReads(ctx context.Context, filter models.OrderFilter) ([]models.OrderRead, error)
}

func NewRepo(db *sqlx.DB) IRepo {
	return &repo{db: db}
}

type repo struct {
	db *sqlx.DB
}

func (r *repo) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
	return exists, err
}

func (r *repo) MenuItemExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM menu_items WHERE id = $1)`, id)
	return exists, err
}

// MissingMenuItems returns the subset of ids that do not exist in the
// catalog.
func (r *repo) MissingMenuItems(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT id FROM menu_items WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var found []uuid.UUID
	if err := r.db.SelectContext(ctx, &found, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	known := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// InsertOrder creates the order row and all its line items in one
// transaction; each line keeps the snapshot price supplied by the caller.
func (r *repo) InsertOrder(ctx context.Context, userID uuid.UUID, items []models.CreateOrderItemInput) (uuid.UUID, error) {
	var orderID uuid.UUID
	err := database.Tx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id) VALUES ($1) RETURNING id`, userID,
		).Scan(&orderID); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for _, item := range items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, menu_item_id, quantity, price)
				VALUES ($1, $2, $3, $4)`,
				orderID, item.MenuItemID, item.Quantity, item.Price,
			); err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return orderID, nil
}

func (r *repo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := r.db.GetContext(ctx, &o, `
		SELECT id, user_id, status, special_requests, scheduled_at, created_at, closed_at
		FROM orders
		WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

type orderReadRow struct {
	ID              uuid.UUID          `db:"id"`
	UserID          uuid.UUID          `db:"user_id"`
	CustomerName    *string            `db:"customer_name"`
	Status          models.OrderStatus `db:"status"`
	SpecialRequests *string            `db:"special_requests"`
	ScheduledAt     *time.Time         `db:"scheduled_at"`
	CreatedAt       time.Time          `db:"created_at"`
	ClosedAt        *time.Time         `db:"closed_at"`
}

func (row orderReadRow) read() models.OrderRead {
	return models.OrderRead{
		ID:              row.ID,
		UserID:          row.UserID,
		CustomerName:    row.CustomerName,
		Status:          row.Status,
		SpecialRequests: row.SpecialRequests,
		ScheduledAt:     row.ScheduledAt,
		CreatedAt:       row.CreatedAt,
		ClosedAt:        row.ClosedAt,
	}
}

// GetOrderRead fetches the order with its customer name and line items
// resolved before returning; nothing is left to resolve lazily.
func (r *repo) GetOrderRead(ctx context.Context, id uuid.UUID) (*models.OrderRead, error) {
	var row orderReadRow
	err := r.db.GetContext(ctx, &row, `
		SELECT o.id, o.user_id, u.name AS customer_name, o.status,
		       o.special_requests, o.scheduled_at, o.created_at, o.closed_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	read := row.read()
	read.Items = []models.OrderItemRead{}
	if err := r.db.SelectContext(ctx, &read.Items, `
		SELECT oi.id, oi.menu_item_id, mi.name AS menu_item_name, oi.quantity, oi.price
		FROM order_items oi
		LEFT JOIN menu_items mi ON mi.id = oi.menu_item_id
		WHERE oi.order_id = $1
		ORDER BY oi.created_at, oi.id`, id); err != nil {
		return nil, err
	}
	return &read, nil
}

func (r *repo) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, order_id, menu_item_id, quantity, price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id`, orderID)
	return items, err
}

// UpdateOrder writes the order row and, when item is non-nil, the single
// reassigned line item inside the same transaction. The line item's
// snapshot price is deliberately not part of the update.
func (r *repo) UpdateOrder(ctx context.Context, order *models.Order, item *models.OrderItem) error {
	return database.Tx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status = $1, special_requests = $2, scheduled_at = $3, closed_at = $4
			WHERE id = $5`,
			order.Status, order.SpecialRequests, order.ScheduledAt, order.ClosedAt, order.ID,
		); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		if item != nil {
			if _, err := tx.ExecContext(ctx, `
				UPDATE order_items
				SET menu_item_id = $1, quantity = $2
				WHERE id = $3`,
				item.MenuItemID, item.Quantity, item.ID,
			); err != nil {
				return fmt.Errorf("failed to update order item: %w", err)
			}
		}
		return nil
	})
}

// DeleteOrder removes the order; line items go with it via the cascade.
func (r *repo) DeleteOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repo) ListOrderReads(ctx context.Context, filter models.OrderFilter) ([]models.OrderRead, error) {
	query := `
		SELECT o.id, o.user_id, u.name AS customer_name, o.status,
		       o.special_requests, o.scheduled_at, o.created_at, o.closed_at
		FROM orders o
		JOIN users u ON u.id = o.user_id`

	var args []interface{}
	appendCond := func(cond string, arg interface{}) {
		if len(args) == 0 {
			query += " WHERE "
		} else {
			query += " AND "
		}
		args = append(args, arg)
		query += fmt.Sprintf(cond, len(args))
	}

	if filter.Status != nil {
		appendCond("o.status = $%d", *filter.Status)
	}
	if filter.DateFrom != nil {
		appendCond("o.created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		appendCond("o.created_at <= $%d", *filter.DateTo)
	}

	query += " ORDER BY o.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var rows []orderReadRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []models.OrderRead{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	type itemRow struct {
		models.OrderItemRead
		OrderID uuid.UUID `db:"order_id"`
	}
	itemQuery, itemArgs, err := sqlx.In(`
		SELECT oi.id, oi.order_id, oi.menu_item_id, mi.name AS menu_item_name, oi.quantity, oi.price
		FROM order_items oi
		LEFT JOIN menu_items mi ON mi.id = oi.menu_item_id
		WHERE oi.order_id IN (?)
		ORDER BY oi.created_at, oi.id`, ids)
	if err != nil {
		return nil, err
	}

	var itemRows []itemRow
	if err := r.db.SelectContext(ctx, &itemRows, r.db.Rebind(itemQuery), itemArgs...); err != nil {
		return nil, err
	}

	itemsByOrder := make(map[uuid.UUID][]models.OrderItemRead, len(rows))
	for _, ir := range itemRows {
		itemsByOrder[ir.OrderID] = append(itemsByOrder[ir.OrderID], ir.OrderItemRead)
	}

	reads := make([]models.OrderRead, 0, len(rows))
	for _, row := range rows {
		read := row.read()
		read.Items = itemsByOrder[row.ID]
		if read.Items == nil {
			read.Items = []models.OrderItemRead{}
		}
		reads = append(reads, read)
	}
	return reads, nil
}
