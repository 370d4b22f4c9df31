package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/caferp/models"
)

type fakeRepo struct {
	users       map[uuid.UUID]string
	menu        map[uuid.UUID]string
	orders      map[uuid.UUID]*models.Order
	items       map[uuid.UUID][]models.OrderItem
	updateCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:  map[uuid.UUID]string{},
		menu:   map[uuid.UUID]string{},
		orders: map[uuid.UUID]*models.Order{},
		items:  map[uuid.UUID][]models.OrderItem{},
	}
}

func (f *fakeRepo) UserExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeRepo) MenuItemExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.menu[id]
	return ok, nil
}

func (f *fakeRepo) MissingMenuItems(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := f.menu[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (f *fakeRepo) InsertOrder(_ context.Context, userID uuid.UUID, items []models.CreateOrderItemInput) (uuid.UUID, error) {
	id := uuid.New()
	f.orders[id] = &models.Order{
		ID:        id,
		UserID:    userID,
		Status:    models.StatusOpen,
		CreatedAt: time.Now(),
	}
	for _, in := range items {
		f.items[id] = append(f.items[id], models.OrderItem{
			ID:         uuid.New(),
			OrderID:    id,
			MenuItemID: in.MenuItemID,
			Quantity:   in.Quantity,
			Price:      in.Price,
		})
	}
	return id, nil
}

func (f *fakeRepo) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeRepo) GetOrderRead(_ context.Context, id uuid.UUID) (*models.OrderRead, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	name := f.users[o.UserID]
	read := &models.OrderRead{
		ID:              o.ID,
		UserID:          o.UserID,
		CustomerName:    &name,
		Status:          o.Status,
		SpecialRequests: o.SpecialRequests,
		ScheduledAt:     o.ScheduledAt,
		CreatedAt:       o.CreatedAt,
		ClosedAt:        o.ClosedAt,
		Items:           []models.OrderItemRead{},
	}
	for _, item := range f.items[id] {
		itemName := f.menu[item.MenuItemID]
		read.Items = append(read.Items, models.OrderItemRead{
			ID:           item.ID,
			MenuItemID:   item.MenuItemID,
			MenuItemName: &itemName,
			Quantity:     item.Quantity,
			Price:        item.Price,
		})
	}
	return read, nil
}

func (f *fakeRepo) ListOrderItems(_ context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	return append([]models.OrderItem(nil), f.items[orderID]...), nil
}

func (f *fakeRepo) UpdateOrder(_ context.Context, order *models.Order, item *models.OrderItem) error {
	f.updateCalls++
	cp := *order
	f.orders[order.ID] = &cp
	if item != nil {
		for i := range f.items[order.ID] {
			if f.items[order.ID][i].ID == item.ID {
				f.items[order.ID][i] = *item
			}
		}
	}
	return nil
}

func (f *fakeRepo) DeleteOrder(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.orders[id]; !ok {
		return false, nil
	}
	delete(f.orders, id)
	delete(f.items, id)
	return true, nil
}

func (f *fakeRepo) ListOrderReads(_ context.Context, _ models.OrderFilter) ([]models.OrderRead, error) {
	reads := []models.OrderRead{}
	for id := range f.orders {
		read, _ := f.GetOrderRead(context.Background(), id)
		reads = append(reads, *read)
	}
	return reads, nil
}

func seed(f *fakeRepo) (userID, espressoID, croissantID uuid.UUID) {
	userID, espressoID, croissantID = uuid.New(), uuid.New(), uuid.New()
	f.users[userID] = "Alice"
	f.menu[espressoID] = "Espresso"
	f.menu[croissantID] = "Croissant"
	return
}

func TestCreate_ProjectionTotals(t *testing.T) {
	f := newFakeRepo()
	userID, espressoID, croissantID := seed(f)
	svc := NewService(f)

	read, err := svc.Create(context.Background(), models.CreateOrderInput{
		UserID: userID,
		Items: []models.CreateOrderItemInput{
			{MenuItemID: espressoID, Quantity: 2, Price: decimal.RequireFromString("3.50")},
			{MenuItemID: croissantID, Quantity: 1, Price: decimal.RequireFromString("5.00")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusOpen, read.Status)
	assert.Equal(t, 3, read.CountItems)
	assert.True(t, read.TotalPrice.Equal(decimal.RequireFromString("12.00")),
		"total_price = %s", read.TotalPrice)
	require.Len(t, read.Items, 2)
	assert.Equal(t, "Espresso", *read.Items[0].MenuItemName)
	assert.Equal(t, "Alice", *read.CustomerName)
}

func TestCreate_Validation(t *testing.T) {
	f := newFakeRepo()
	userID, espressoID, _ := seed(f)
	svc := NewService(f)
	ctx := context.Background()

	var vErr models.ValidationError

	_, err := svc.Create(ctx, models.CreateOrderInput{UserID: userID})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "items", vErr.Field)

	_, err = svc.Create(ctx, models.CreateOrderInput{
		UserID: userID,
		Items:  []models.CreateOrderItemInput{{MenuItemID: espressoID, Quantity: 0, Price: decimal.New(1, 0)}},
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "quantity", vErr.Field)

	_, err = svc.Create(ctx, models.CreateOrderInput{
		UserID: uuid.New(),
		Items:  []models.CreateOrderItemInput{{MenuItemID: espressoID, Quantity: 1, Price: decimal.New(1, 0)}},
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "user_id", vErr.Field)

	_, err = svc.Create(ctx, models.CreateOrderInput{
		UserID: userID,
		Items:  []models.CreateOrderItemInput{{MenuItemID: uuid.New(), Quantity: 1, Price: decimal.New(1, 0)}},
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "menu_item_id", vErr.Field)

	assert.Empty(t, f.orders, "no order may be created on validation failure")
}

func TestUpdate_InvalidStatusLeavesOrderUnchanged(t *testing.T) {
	f := newFakeRepo()
	userID, espressoID, _ := seed(f)
	svc := NewService(f)
	ctx := context.Background()

	read, err := svc.Create(ctx, models.CreateOrderInput{
		UserID: userID,
		Items:  []models.CreateOrderItemInput{{MenuItemID: espressoID, Quantity: 1, Price: decimal.New(350, -2)}},
	})
	require.NoError(t, err)

	bad := models.OrderStatus("shipped")
	_, err = svc.Update(ctx, read.ID, models.OrderPatch{Status: &bad})
	var vErr models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, f.updateCalls)
	assert.Equal(t, models.StatusOpen, f.orders[read.ID].Status)
}

func TestUpdate_ClosedAtPolicy(t *testing.T) {
	f := newFakeRepo()
	userID, espressoID, _ := seed(f)
	svc := NewService(f)
	ctx := context.Background()

	read, err := svc.Create(ctx, models.CreateOrderInput{
		UserID: userID,
		Items:  []models.CreateOrderItemInput{{MenuItemID: espressoID, Quantity: 1, Price: decimal.New(350, -2)}},
	})
	require.NoError(t, err)

	done := models.StatusDone
	updated, err := svc.Update(ctx, read.ID, models.OrderPatch{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status)
	require.NotNil(t, updated.ClosedAt, "terminal transition must stamp closed_at")

	open := models.StatusOpen
	updated, err = svc.Update(ctx, read.ID, models.OrderPatch{Status: &open})
	require.NoError(t, err)
	assert.Nil(t, updated.ClosedAt, "leaving a terminal status must clear closed_at")
}

func TestUpdate_LineItemPatch(t *testing.T) {
	f := newFakeRepo()
	userID, espressoID, croissantID := seed(f)
	svc := NewService(f)
	ctx := context.Background()

	read, err := svc.Create(ctx, models.CreateOrderInput{
		UserID: userID,
		Items:  []models.CreateOrderItemInput{{MenuItemID: espressoID, Quantity: 1, Price: decimal.RequireFromString("3.50")}},
	})
	require.NoError(t, err)

	qty := 4
	updated, err := svc.Update(ctx, read.ID, models.OrderPatch{MenuItemID: &croissantID, Quantity: &qty})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, croissantID, updated.Items[0].MenuItemID)
	assert.Equal(t, 4, updated.Items[0].Quantity)
	// The snapshot price must survive the menu-item reassignment.
	assert.True(t, updated.Items[0].Price.Equal(decimal.RequireFromString("3.50")))
	assert.True(t, updated.TotalPrice.Equal(decimal.RequireFromString("14.00")))
}

func TestUpdate_LineItemPatchAmbiguousOnMultiLineOrder(t *testing.T) {
	f := newFakeRepo()
	userID, espressoID, croissantID := seed(f)
	svc := NewService(f)
	ctx := context.Background()

	read, err := svc.Create(ctx, models.CreateOrderInput{
		UserID: userID,
		Items: []models.CreateOrderItemInput{
			{MenuItemID: espressoID, Quantity: 1, Price: decimal.New(350, -2)},
			{MenuItemID: croissantID, Quantity: 1, Price: decimal.New(500, -2)},
		},
	})
	require.NoError(t, err)

	qty := 2
	_, err = svc.Update(ctx, read.ID, models.OrderPatch{Quantity: &qty})
	var vErr models.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestUpdate_UnknownMenuItem(t *testing.T) {
	f := newFakeRepo()
	userID, espressoID, _ := seed(f)
	svc := NewService(f)
	ctx := context.Background()

	read, err := svc.Create(ctx, models.CreateOrderInput{
		UserID: userID,
		Items:  []models.CreateOrderItemInput{{MenuItemID: espressoID, Quantity: 1, Price: decimal.New(350, -2)}},
	})
	require.NoError(t, err)

	unknown := uuid.New()
	_, err = svc.Update(ctx, read.ID, models.OrderPatch{MenuItemID: &unknown})
	var nfErr models.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "menu item", nfErr.Entity)
}

func TestUpdate_MissingOrder(t *testing.T) {
	svc := NewService(newFakeRepo())
	done := models.StatusDone
	_, err := svc.Update(context.Background(), uuid.New(), models.OrderPatch{Status: &done})
	var nfErr models.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestDelete_IdempotentToAbsence(t *testing.T) {
	f := newFakeRepo()
	userID, espressoID, _ := seed(f)
	svc := NewService(f)
	ctx := context.Background()

	read, err := svc.Create(ctx, models.CreateOrderInput{
		UserID: userID,
		Items:  []models.CreateOrderItemInput{{MenuItemID: espressoID, Quantity: 1, Price: decimal.New(350, -2)}},
	})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, read.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, f.items[read.ID], "line items must go with the order")

	deleted, err = svc.Delete(ctx, read.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "deleting an absent order reports false, not an error")
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.Get(context.Background(), uuid.New())
	var nfErr models.NotFoundError
	require.True(t, errors.As(err, &nfErr))
}
