package store

import (
	"context"
	"database/sql"
	"fmt"

	"marketplace-service/internal/models"
	"marketplace-service/internal/service"
)

// InsertOrder creates a new order row
func (t *storeTx) InsertOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (buyer_id, product_id, seller_id, quantity, unit_price, total_price, status, shipping_notes, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	return t.tx.GetContext(ctx, order, query,
		order.BuyerID, order.ProductID, order.SellerID, order.Quantity,
		order.UnitPrice, order.TotalPrice, order.Status, order.ShippingNotes,
		order.IdempotencyKey)
}

// OrderForUpdate locks the order row for the rest of the transaction.
func (t *storeTx) OrderForUpdate(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := t.tx.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1 FOR UPDATE", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: order %d", service.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return &order, nil
}

// UpdateOrder writes back the mutable order fields
func (t *storeTx) UpdateOrder(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET quantity = $1, total_price = $2, status = $3, shipping_notes = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at`

	return t.tx.GetContext(ctx, &order.UpdatedAt, query,
		order.Quantity, order.TotalPrice, order.Status, order.ShippingNotes, order.ID)
}

// DeleteOrder removes the order row
func (t *storeTx) DeleteOrder(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %d", service.ErrNotFound, id)
	}
	return nil
}

// OrderByID retrieves an order by ID
func (s *Store) OrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: order %d", service.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderByIdempotencyKey retrieves an order by idempotency key; nil if none.
func (s *Store) OrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE idempotency_key = $1", key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OrdersByBuyer retrieves a buyer's orders, newest first
func (s *Store) OrdersByBuyer(ctx context.Context, buyerID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC", buyerID)
	return orders, err
}

// OrdersBySeller retrieves the orders placed against a seller's products
func (s *Store) OrdersBySeller(ctx context.Context, sellerID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE seller_id = $1 ORDER BY created_at DESC", sellerID)
	return orders, err
}

// Orders retrieves all orders, newest first
func (s *Store) Orders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC")
	return orders, err
}
