package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Seller responses to a pending order.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// OrderService is the order lifecycle engine. Every state-changing
// operation runs its gating reads, the order write, the signed stock
// adjustment and the notification insert inside one store transaction, so a
// partial failure rolls back completely.
type OrderService struct {
	store          Store
	cache          IdempotencyCache
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewOrderService creates a new order service. cache may be nil, in which
// case creation replays are caught by the orders table alone.
func NewOrderService(store Store, cache IdempotencyCache, idempotencyTTL time.Duration) *OrderService {
	return &OrderService{
		store:          store,
		cache:          cache,
		idempotencyTTL: idempotencyTTL,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a buyer purchase request.
type CreateOrderRequest struct {
	ProductID      int64  `json:"product_id" binding:"required"`
	Quantity       int    `json:"quantity" binding:"required"`
	ShippingNotes  string `json:"shipping_notes,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// UpdateOrderRequest is a partial buyer edit; nil fields are left untouched.
type UpdateOrderRequest struct {
	Quantity      *int    `json:"quantity,omitempty"`
	ShippingNotes *string `json:"shipping_notes,omitempty"`
}

// CreateOrder places an order for the calling buyer: inserts the order in
// PENDING, decrements product stock by the quantity and notifies the
// seller, all in one transaction. The unit price is snapshotted from the
// catalog at this point and never re-fetched.
func (s *OrderService) CreateOrder(ctx context.Context, p models.Principal, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if p.Role != models.RoleBuyer && !p.IsAdmin() {
		return nil, fmt.Errorf("%w: role %s cannot place orders", ErrForbidden, p.Role)
	}
	if req.Quantity <= 0 {
		util.OrdersFailedTotal.WithLabelValues("invalid_quantity").Inc()
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidArgument, req.Quantity)
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	if existing, err := s.replayedOrder(ctx, req.IdempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		s.logger.Info("Duplicate order request detected",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.Int64("order_id", existing.ID))
		return existing, nil
	}

	order := &models.Order{
		BuyerID:        p.ID,
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		ShippingNotes:  req.ShippingNotes,
		Status:         models.StatusPending,
		IdempotencyKey: req.IdempotencyKey,
	}

	err := s.store.InTx(ctx, func(tx Tx) error {
		product, err := tx.ProductForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if product.SellerID == 0 {
			return fmt.Errorf("%w: product %d has no seller", ErrNotFound, req.ProductID)
		}

		minQty := product.MinOrderQty
		if minQty < 1 {
			minQty = 1
		}
		if req.Quantity < minQty {
			return fmt.Errorf("%w: quantity %d below minimum order quantity %d",
				ErrInvalidArgument, req.Quantity, minQty)
		}
		if req.Quantity > product.StockLevel {
			return fmt.Errorf("%w: requested %d, available %d",
				ErrInsufficientStock, req.Quantity, product.StockLevel)
		}

		order.SellerID = product.SellerID
		order.UnitPrice = product.UnitPrice
		order.TotalPrice = product.UnitPrice * int64(req.Quantity)

		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		if err := tx.AdjustStock(ctx, req.ProductID, -req.Quantity); err != nil {
			return err
		}
		return s.notify(ctx, tx, product.SellerID, models.NotificationOrderPlaced,
			fmt.Sprintf("New order #%d: %d x %s", order.ID, order.Quantity, product.Name), order.ID)
	})
	if err != nil {
		s.countFailure(err)
		return nil, err
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("buyer_id", order.BuyerID),
		zap.Int64("product_id", order.ProductID),
		zap.Int("quantity", order.Quantity))

	if s.cache != nil {
		if err := s.cache.SetOrderID(ctx, req.IdempotencyKey, order.ID, s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to cache idempotency key", zap.Error(err))
		}
	}
	return order, nil
}

// Respond applies the seller's decision on a pending order. Rejecting
// releases the reserved quantity back to stock; accepting leaves stock as
// committed at creation.
func (s *OrderService) Respond(ctx context.Context, p models.Principal, orderID int64, action string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Respond")
	defer span.End()

	var next models.Status
	switch action {
	case ActionAccept:
		next = models.StatusAccepted
	case ActionReject:
		next = models.StatusRejected
	default:
		return nil, fmt.Errorf("%w: unknown response action %q", ErrInvalidArgument, action)
	}

	var kind models.NotificationType
	if next == models.StatusAccepted {
		kind = models.NotificationOrderAccepted
	} else {
		kind = models.NotificationOrderRejected
	}

	return s.transition(ctx, p, orderID, next, kind, func(o *models.Order) error {
		if !sellerCan(p, o) {
			return fmt.Errorf("%w: user %d is not the seller of order %d", ErrForbidden, p.ID, o.ID)
		}
		if o.Status != models.StatusPending {
			return fmt.Errorf("%w: order %d is %s, response requires %s",
				ErrInvalidTransition, o.ID, o.Status, models.StatusPending)
		}
		return nil
	})
}

// Advance moves an order to the next status on the seller's behalf. Any
// transition absent from the table, including one out of a terminal state,
// is rejected, so a replayed call returns ErrInvalidTransition instead of
// double-applying stock.
func (s *OrderService) Advance(ctx context.Context, p models.Principal, orderID int64, next models.Status) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Advance")
	defer span.End()

	if !KnownStatus(next) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	kind := models.NotificationStatusUpdated
	if next == models.StatusCancelled {
		kind = models.NotificationOrderCancelled
	}

	return s.transition(ctx, p, orderID, next, kind, func(o *models.Order) error {
		if !sellerCan(p, o) {
			return fmt.Errorf("%w: user %d is not the seller of order %d", ErrForbidden, p.ID, o.ID)
		}
		return nil
	})
}

// CancelByBuyer cancels the buyer's own order while it is still PENDING or
// ACCEPTED, restoring the full reserved quantity and notifying the seller.
func (s *OrderService) CancelByBuyer(ctx context.Context, p models.Principal, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelByBuyer")
	defer span.End()

	var out *models.Order
	err := s.store.InTx(ctx, func(tx Tx) error {
		order, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !buyerCan(p, order) {
			return fmt.Errorf("%w: user %d is not the buyer of order %d", ErrForbidden, p.ID, order.ID)
		}
		if order.Status != models.StatusPending && order.Status != models.StatusAccepted {
			return fmt.Errorf("%w: order %d is %s, buyer cancellation requires %s or %s",
				ErrInvalidTransition, order.ID, order.Status, models.StatusPending, models.StatusAccepted)
		}

		from := order.Status
		if err := tx.AdjustStock(ctx, order.ProductID, order.Quantity); err != nil {
			return err
		}
		util.StockRestoredUnits.Add(float64(order.Quantity))

		order.Status = models.StatusCancelled
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		util.OrderTransitionsTotal.WithLabelValues(string(from), string(order.Status)).Inc()

		out = order
		return s.notify(ctx, tx, order.SellerID, models.NotificationOrderCancelled,
			fmt.Sprintf("Order #%d was cancelled by the buyer", order.ID), order.ID)
	})
	if err != nil {
		s.countFailure(err)
		return nil, err
	}

	s.logger.Info("Order cancelled by buyer", zap.Int64("order_id", out.ID))
	return out, nil
}

// UpdateByBuyer edits quantity and/or shipping notes on the buyer's order
// while it is PENDING or ACCEPTED. A quantity change applies the signed
// stock delta and recomputes the total from the original unit-price
// snapshot; the catalog price is not consulted again.
func (s *OrderService) UpdateByBuyer(ctx context.Context, p models.Principal, orderID int64, req *UpdateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateByBuyer")
	defer span.End()

	var out *models.Order
	err := s.store.InTx(ctx, func(tx Tx) error {
		order, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !buyerCan(p, order) {
			return fmt.Errorf("%w: user %d is not the buyer of order %d", ErrForbidden, p.ID, order.ID)
		}
		if order.Status != models.StatusPending && order.Status != models.StatusAccepted {
			return fmt.Errorf("%w: order %d is %s, buyer edits require %s or %s",
				ErrInvalidTransition, order.ID, order.Status, models.StatusPending, models.StatusAccepted)
		}

		if req.Quantity != nil && *req.Quantity != order.Quantity {
			newQty := *req.Quantity
			if newQty <= 0 {
				return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidArgument, newQty)
			}

			product, err := tx.ProductForUpdate(ctx, order.ProductID)
			if err != nil {
				return err
			}
			minQty := product.MinOrderQty
			if minQty < 1 {
				minQty = 1
			}
			if newQty < minQty {
				return fmt.Errorf("%w: quantity %d below minimum order quantity %d",
					ErrInvalidArgument, newQty, minQty)
			}

			delta := newQty - order.Quantity
			if delta > 0 && delta > product.StockLevel {
				return fmt.Errorf("%w: requested %d more, available %d",
					ErrInsufficientStock, delta, product.StockLevel)
			}
			if err := tx.AdjustStock(ctx, order.ProductID, -delta); err != nil {
				return err
			}
			if delta < 0 {
				util.StockRestoredUnits.Add(float64(-delta))
			}

			order.Quantity = newQty
			order.TotalPrice = order.UnitPrice * int64(newQty)

			if err := s.notify(ctx, tx, order.SellerID, models.NotificationOrderUpdated,
				fmt.Sprintf("Order #%d quantity changed to %d", order.ID, newQty), order.ID); err != nil {
				return err
			}
		}

		if req.ShippingNotes != nil {
			order.ShippingNotes = *req.ShippingNotes
		}

		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		s.countFailure(err)
		return nil, err
	}

	s.logger.Info("Order updated by buyer", zap.Int64("order_id", out.ID))
	return out, nil
}

// AdminDelete removes the order row unconditionally. A non-terminal order
// still holds stock, so its quantity is released first; the state machine
// is bypassed but the stock invariant is preserved. Seller and buyer are
// both told the order is gone.
func (s *OrderService) AdminDelete(ctx context.Context, p models.Principal, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.AdminDelete")
	defer span.End()

	if !p.IsAdmin() {
		return fmt.Errorf("%w: user %d is not an administrator", ErrForbidden, p.ID)
	}

	err := s.store.InTx(ctx, func(tx Tx) error {
		order, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if !IsTerminal(order.Status) {
			if err := tx.AdjustStock(ctx, order.ProductID, order.Quantity); err != nil {
				return err
			}
			util.StockRestoredUnits.Add(float64(order.Quantity))
		}

		if err := tx.DeleteOrder(ctx, order.ID); err != nil {
			return err
		}

		msg := fmt.Sprintf("Order #%d was removed by an administrator", order.ID)
		if err := s.notify(ctx, tx, order.SellerID, models.NotificationOrderRemoved, msg, order.ID); err != nil {
			return err
		}
		if order.BuyerID != order.SellerID {
			return s.notify(ctx, tx, order.BuyerID, models.NotificationOrderRemoved, msg, order.ID)
		}
		return nil
	})
	if err != nil {
		s.countFailure(err)
		return err
	}

	util.OrdersDeletedTotal.Inc()
	s.logger.Info("Order deleted by admin", zap.Int64("order_id", orderID))
	return nil
}

// GetOrder returns the order with its product summary. Only the buyer, the
// seller of the linked product or an admin may read it.
func (s *OrderService) GetOrder(ctx context.Context, p models.Principal, orderID int64) (*models.Order, *models.Product, error) {
	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !buyerCan(p, order) && !sellerCan(p, order) {
		return nil, nil, fmt.Errorf("%w: user %d may not view order %d", ErrForbidden, p.ID, order.ID)
	}

	product, err := s.store.ProductByID(ctx, order.ProductID)
	if err != nil {
		return nil, nil, err
	}
	return order, product, nil
}

// ListOrders returns the orders visible to the principal: own purchases for
// a buyer, orders against own products for a seller, everything for admin.
func (s *OrderService) ListOrders(ctx context.Context, p models.Principal) ([]models.Order, error) {
	switch p.Role {
	case models.RoleBuyer:
		return s.store.OrdersByBuyer(ctx, p.ID)
	case models.RoleSeller:
		return s.store.OrdersBySeller(ctx, p.ID)
	case models.RoleAdmin:
		return s.store.Orders(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrForbidden, p.Role)
	}
}

// transition runs a seller-driven status change: lock the order, run the
// operation-specific gate, validate against the transition table, apply the
// conditional stock release and notify the buyer, atomically.
func (s *OrderService) transition(
	ctx context.Context,
	p models.Principal,
	orderID int64,
	next models.Status,
	kind models.NotificationType,
	gate func(*models.Order) error,
) (*models.Order, error) {
	var out *models.Order
	err := s.store.InTx(ctx, func(tx Tx) error {
		order, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := gate(order); err != nil {
			return err
		}
		if !CanTransition(order.Status, next) {
			return fmt.Errorf("%w: order %d cannot go from %s to %s",
				ErrInvalidTransition, order.ID, order.Status, next)
		}

		from := order.Status
		if RestoresStock(from, next) {
			if err := tx.AdjustStock(ctx, order.ProductID, order.Quantity); err != nil {
				return err
			}
			util.StockRestoredUnits.Add(float64(order.Quantity))
		}

		order.Status = next
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		util.OrderTransitionsTotal.WithLabelValues(string(from), string(next)).Inc()

		out = order
		return s.notify(ctx, tx, order.BuyerID, kind,
			fmt.Sprintf("Order #%d is now %s", order.ID, next), order.ID)
	})
	if err != nil {
		s.countFailure(err)
		return nil, err
	}

	s.logger.Info("Order transitioned",
		zap.Int64("order_id", out.ID),
		zap.String("status", string(out.Status)))
	return out, nil
}

// replayedOrder resolves a creation retry: cache first, then the durable
// idempotency key on the orders table.
func (s *OrderService) replayedOrder(ctx context.Context, key string) (*models.Order, error) {
	if s.cache != nil {
		id, ok, err := s.cache.GetOrderID(ctx, key)
		if err != nil {
			s.logger.Warn("Idempotency cache lookup failed", zap.Error(err))
		} else if ok {
			return s.store.OrderByID(ctx, id)
		}
	}
	return s.store.OrderByIdempotencyKey(ctx, key)
}

func (s *OrderService) notify(ctx context.Context, tx Tx, userID int64, kind models.NotificationType, msg string, orderID int64) error {
	n := &models.Notification{
		UserID:    userID,
		Type:      kind,
		Message:   msg,
		RelatedID: orderID,
	}
	if err := tx.InsertNotification(ctx, n); err != nil {
		return err
	}
	util.NotificationsEnqueuedTotal.Inc()
	return nil
}

func (s *OrderService) countFailure(err error) {
	util.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "unavailable"
	}
}

func sellerCan(p models.Principal, o *models.Order) bool {
	return p.IsAdmin() || p.ID == o.SellerID
}

func buyerCan(p models.Principal, o *models.Order) bool {
	return p.IsAdmin() || p.ID == o.BuyerID
}
