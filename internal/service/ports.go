package service

import (
	"context"
	"time"

	"marketplace-service/internal/models"
)

// Tx is the transactional handle an engine operation runs against. All
// gating reads lock the row they read, so two concurrent operations on the
// same order or the same product's stock serialize at the store.
type Tx interface {
	OrderForUpdate(ctx context.Context, orderID int64) (*models.Order, error)
	InsertOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, order *models.Order) error
	DeleteOrder(ctx context.Context, orderID int64) error

	ProductForUpdate(ctx context.Context, productID int64) (*models.Product, error)
	// AdjustStock applies a signed delta to the product's stock level and
	// fails with ErrInsufficientStock if the result would go negative.
	AdjustStock(ctx context.Context, productID int64, delta int) error

	InsertNotification(ctx context.Context, n *models.Notification) error
}

// Store is the durable backing of the engine. InTx runs fn inside a single
// database transaction: commit on nil error, full rollback otherwise.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error

	OrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	OrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	OrdersByBuyer(ctx context.Context, buyerID int64) ([]models.Order, error)
	OrdersBySeller(ctx context.Context, sellerID int64) ([]models.Order, error)
	Orders(ctx context.Context) ([]models.Order, error)
	ProductByID(ctx context.Context, productID int64) (*models.Product, error)
}

// IdempotencyCache is the fast-path replay guard for order creation. The
// unique idempotency_key column on orders is the durable guard; the cache
// only short-circuits the common retry.
type IdempotencyCache interface {
	GetOrderID(ctx context.Context, key string) (int64, bool, error)
	SetOrderID(ctx context.Context, key string, orderID int64, ttl time.Duration) error
}
