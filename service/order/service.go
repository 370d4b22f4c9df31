package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/caferp/models"
	"github.com/ray-remotestate/caferp/utils"
)

type IService interface {
	Create(ctx context.Context, input models.CreateOrderInput) (*models.OrderRead, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.OrderRead, error)
	Update(ctx context.Context, orderID uuid.UUID, patch models.OrderPatch) (*models.OrderRead, error)
	Delete(ctx context.Context, orderID uuid.UUID) (bool, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.OrderRead, error)
}

func NewService(repo IRepo) IService {
	return &service{repo: repo, now: time.Now}
}

type service struct {
	repo IRepo
	now  func() time.Time
}

// Create opens a new order for the user with one line item per request,
// each stamped with the caller-supplied snapshot price, and returns the
// freshly re-read projection.
func (s *service) Create(ctx context.Context, input models.CreateOrderInput) (*models.OrderRead, error) {
	if len(input.Items) == 0 {
		return nil, models.ValidationError{Field: "items", Reason: "at least one item is required"}
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, models.ValidationError{Field: "quantity", Reason: "must be at least 1"}
		}
		if item.Price.IsNegative() {
			return nil, models.ValidationError{Field: "price", Reason: "must not be negative"}
		}
	}

	exists, err := s.repo.UserExists(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, models.ValidationError{Field: "user_id", Reason: fmt.Sprintf("user %s does not exist", input.UserID)}
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.MenuItemID)
	}
	missing, err := s.repo.MissingMenuItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check menu items: %w", err)
	}
	if len(missing) > 0 {
		return nil, models.ValidationError{Field: "menu_item_id", Reason: fmt.Sprintf("menu item %s does not exist", missing[0])}
	}

	orderID, err := s.repo.InsertOrder(ctx, input.UserID, input.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return s.Get(ctx, orderID)
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.OrderRead, error) {
	read, err := s.repo.GetOrderRead(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if read == nil {
		return nil, models.NotFoundError{Entity: "order", ID: orderID.String()}
	}
	finalize(read)
	return read, nil
}

// Update applies a sparse patch. Status changes drive the closed_at
// policy: entering a terminal status stamps closed_at, leaving one clears
// it. menu_item_id and quantity target the order's single line item; a
// multi-line order makes such a patch ambiguous and it is rejected.
func (s *service) Update(ctx context.Context, orderID uuid.UUID, patch models.OrderPatch) (*models.OrderRead, error) {
	ord, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if ord == nil {
		return nil, models.NotFoundError{Entity: "order", ID: orderID.String()}
	}

	if patch.Status != nil && !patch.Status.Valid() {
		return nil, models.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *patch.Status)}
	}
	if patch.Quantity != nil && *patch.Quantity < 1 {
		return nil, models.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	var targetItem *models.OrderItem
	if patch.MenuItemID != nil || patch.Quantity != nil {
		items, err := s.repo.ListOrderItems(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("failed to load order items: %w", err)
		}
		if len(items) != 1 {
			return nil, models.ValidationError{Field: "menu_item_id", Reason: "order has more than one line item; patch is ambiguous"}
		}
		targetItem = &items[0]

		if patch.MenuItemID != nil {
			exists, err := s.repo.MenuItemExists(ctx, *patch.MenuItemID)
			if err != nil {
				return nil, fmt.Errorf("failed to check menu item: %w", err)
			}
			if !exists {
				return nil, models.NotFoundError{Entity: "menu item", ID: patch.MenuItemID.String()}
			}
			// The snapshot price stays with the line; only the reference moves.
			targetItem.MenuItemID = *patch.MenuItemID
		}
		if patch.Quantity != nil {
			targetItem.Quantity = *patch.Quantity
		}
	}

	if patch.Status != nil {
		ord.Status = *patch.Status
		if ord.Status.Terminal() {
			if ord.ClosedAt == nil {
				closed := s.now()
				ord.ClosedAt = &closed
			}
		} else {
			ord.ClosedAt = nil
		}
	}
	if patch.SpecialRequests != nil {
		ord.SpecialRequests = patch.SpecialRequests
	}
	if patch.ScheduledAt != nil {
		ord.ScheduledAt = patch.ScheduledAt
	}

	if err := s.repo.UpdateOrder(ctx, ord, targetItem); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return s.Get(ctx, orderID)
}

// Delete is idempotent to absence: a missing order reports false, never
// an error.
func (s *service) Delete(ctx context.Context, orderID uuid.UUID) (bool, error) {
	deleted, err := s.repo.DeleteOrder(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to delete order: %w", err)
	}
	return deleted, nil
}

func (s *service) List(ctx context.Context, filter models.OrderFilter) ([]models.OrderRead, error) {
	reads, err := s.repo.ListOrderReads(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	for i := range reads {
		finalize(&reads[i])
	}
	return reads, nil
}

// finalize computes the derived projection fields; they are never stored.
func finalize(read *models.OrderRead) {
	total := decimal.Zero
	count := 0
	for _, item := range read.Items {
		total = total.Add(utils.LineTotal(item.Price, item.Quantity))
		count += item.Quantity
	}
	read.TotalPrice = utils.RoundMoney(total)
	read.CountItems = count
}
