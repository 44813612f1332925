package models

import "time"

// Roles assigned by the upstream auth middleware.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// Principal is the authenticated caller as resolved by the gateway.
type Principal struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Status is an order lifecycle state.
type Status string

// Order statuses
const (
	StatusPending    Status = "PENDING"
	StatusAccepted   Status = "ACCEPTED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusCompleted  Status = "COMPLETED"
	StatusRejected   Status = "REJECTED"
	StatusCancelled  Status = "CANCELLED"
)

// Product is the catalog subset the order engine needs: the stock counter,
// ordering constraints and the owning seller.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	SellerID    int64     `db:"seller_id" json:"seller_id"`
	SKU         string    `db:"sku" json:"sku"`
	Name        string    `db:"name" json:"name"`
	UnitPrice   int64     `db:"unit_price" json:"unit_price"`
	StockLevel  int       `db:"stock_level" json:"stock_level"`
	MinOrderQty int       `db:"min_order_qty" json:"min_order_qty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Order represents a buyer purchase against a single product. UnitPrice is
// the catalog price snapshotted at creation; TotalPrice is always
// UnitPrice * Quantity as of the last quantity-affecting write.
type Order struct {
	ID             int64     `db:"id" json:"id"`
	BuyerID        int64     `db:"buyer_id" json:"buyer_id"`
	ProductID      int64     `db:"product_id" json:"product_id"`
	SellerID       int64     `db:"seller_id" json:"seller_id"`
	Quantity       int       `db:"quantity" json:"quantity"`
	UnitPrice      int64     `db:"unit_price" json:"unit_price"`
	TotalPrice     int64     `db:"total_price" json:"total_price"`
	Status         Status    `db:"status" json:"status"`
	ShippingNotes  string    `db:"shipping_notes" json:"shipping_notes,omitempty"`
	IdempotencyKey string    `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// NotificationType describes the order event that produced a notification.
type NotificationType string

const (
	NotificationOrderPlaced    NotificationType = "ORDER_PLACED"
	NotificationOrderAccepted  NotificationType = "ORDER_ACCEPTED"
	NotificationOrderRejected  NotificationType = "ORDER_REJECTED"
	NotificationStatusUpdated  NotificationType = "ORDER_STATUS_UPDATED"
	NotificationOrderUpdated   NotificationType = "ORDER_UPDATED"
	NotificationOrderCancelled NotificationType = "ORDER_CANCELLED"
	NotificationOrderRemoved   NotificationType = "ORDER_REMOVED"
)

// Notification is a write-once outbox row. The engine appends it in the same
// transaction as the order state change; the dispatcher later drains it.
type Notification struct {
	ID        int64            `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"user_id"`
	Type      NotificationType `db:"type" json:"type"`
	Message   string           `db:"message" json:"message"`
	RelatedID int64            `db:"related_id" json:"related_id"`
	Sent      bool             `db:"sent" json:"sent"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
