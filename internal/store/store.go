package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/service"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store is the Postgres-backed implementation of service.Store.
type Store struct {
	db *sqlx.DB
}

var _ service.Store = (*Store)(nil)

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a single transaction: commit on nil error, rollback
// otherwise. A failed commit surfaces as ErrConflict so the caller retries.
func (s *Store) InTx(ctx context.Context, fn func(service.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", service.ErrUnavailable, err)
	}
	defer tx.Rollback()

	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit failed: %v", service.ErrConflict, err)
	}
	return nil
}

// storeTx adapts an open sqlx transaction to service.Tx.
type storeTx struct {
	tx *sqlx.Tx
}

var _ service.Tx = (*storeTx)(nil)

// ProductByID retrieves a product by ID
func (s *Store) ProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: product %d", service.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductForUpdate locks the product row for the rest of the transaction.
func (t *storeTx) ProductForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := t.tx.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1 FOR UPDATE", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: product %d", service.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	return &product, nil
}

// AdjustStock applies a signed delta to stock_level. The WHERE guard keeps
// the counter non-negative; zero rows affected on a locked, existing row
// means the delta would overdraw it.
func (t *storeTx) AdjustStock(ctx context.Context, productID int64, delta int) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE products SET stock_level = stock_level + $1, updated_at = NOW() WHERE id = $2 AND stock_level + $1 >= 0",
		delta, productID)
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: stock adjustment of %d on product %d would go negative",
			service.ErrInsufficientStock, delta, productID)
	}
	return nil
}
