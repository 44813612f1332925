package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marketplace-service/internal/models"
)

// fakeStore is an in-memory Store whose transactions serialize on a single
// mutex, the same way concurrent operations on one order or one product's
// stock serialize on row locks in Postgres. A transaction that returns an
// error is rolled back by restoring the pre-transaction state.
type fakeStore struct {
	mu            sync.Mutex
	orders        map[int64]*models.Order
	products      map[int64]*models.Product
	notifications []models.Notification
	nextOrderID   int64
	nextNoteID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   make(map[int64]*models.Order),
		products: make(map[int64]*models.Product),
	}
}

func (f *fakeStore) addProduct(p models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := p
	f.products[p.ID] = &cp
}

func (f *fakeStore) stockOf(productID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[productID].StockLevel
}

func (f *fakeStore) setUnitPrice(productID, price int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[productID].UnitPrice = price
}

func (f *fakeStore) notificationsFor(userID int64) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakeState struct {
	orders        map[int64]*models.Order
	products      map[int64]*models.Product
	notifications []models.Notification
	nextOrderID   int64
	nextNoteID    int64
}

func (f *fakeStore) snapshot() fakeState {
	s := fakeState{
		orders:        make(map[int64]*models.Order, len(f.orders)),
		products:      make(map[int64]*models.Product, len(f.products)),
		notifications: append([]models.Notification(nil), f.notifications...),
		nextOrderID:   f.nextOrderID,
		nextNoteID:    f.nextNoteID,
	}
	for id, o := range f.orders {
		cp := *o
		s.orders[id] = &cp
	}
	for id, p := range f.products {
		cp := *p
		s.products[id] = &cp
	}
	return s
}

func (f *fakeStore) restore(s fakeState) {
	f.orders = s.orders
	f.products = s.products
	f.notifications = s.notifications
	f.nextOrderID = s.nextOrderID
	f.nextNoteID = s.nextNoteID
}

func (f *fakeStore) InTx(ctx context.Context, fn func(Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	before := f.snapshot()
	if err := fn(&fakeTx{s: f}); err != nil {
		f.restore(before)
		return err
	}
	return nil
}

func (f *fakeStore) OrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) OrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.IdempotencyKey == key {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) OrdersByBuyer(ctx context.Context, buyerID int64) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) OrdersBySeller(ctx context.Context, sellerID int64) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.SellerID == sellerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) Orders(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeStore) ProductByID(ctx context.Context, productID int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	cp := *p
	return &cp, nil
}

// fakeTx operates on the store under the transaction lock.
type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) OrderForUpdate(ctx context.Context, orderID int64) (*models.Order, error) {
	o, ok := t.s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	cp := *o
	return &cp, nil
}

func (t *fakeTx) InsertOrder(ctx context.Context, order *models.Order) error {
	t.s.nextOrderID++
	order.ID = t.s.nextOrderID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	cp := *order
	t.s.orders[order.ID] = &cp
	return nil
}

func (t *fakeTx) UpdateOrder(ctx context.Context, order *models.Order) error {
	if _, ok := t.s.orders[order.ID]; !ok {
		return fmt.Errorf("%w: order %d", ErrNotFound, order.ID)
	}
	order.UpdatedAt = time.Now()
	cp := *order
	t.s.orders[order.ID] = &cp
	return nil
}

func (t *fakeTx) DeleteOrder(ctx context.Context, orderID int64) error {
	if _, ok := t.s.orders[orderID]; !ok {
		return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	delete(t.s.orders, orderID)
	return nil
}

func (t *fakeTx) ProductForUpdate(ctx context.Context, productID int64) (*models.Product, error) {
	p, ok := t.s.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	cp := *p
	return &cp, nil
}

func (t *fakeTx) AdjustStock(ctx context.Context, productID int64, delta int) error {
	p, ok := t.s.products[productID]
	if !ok {
		return fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	if p.StockLevel+delta < 0 {
		return fmt.Errorf("%w: stock adjustment of %d on product %d would go negative",
			ErrInsufficientStock, delta, productID)
	}
	p.StockLevel += delta
	return nil
}

func (t *fakeTx) InsertNotification(ctx context.Context, n *models.Notification) error {
	t.s.nextNoteID++
	n.ID = t.s.nextNoteID
	n.CreatedAt = time.Now()
	t.s.notifications = append(t.s.notifications, *n)
	return nil
}
