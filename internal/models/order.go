package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. Only "new" orders are customer-editable; the edit window
// (EditableUntil) gates on top of that.
const (
	OrderStatusNew       = "new"
	OrderStatusReceived  = "received"
	OrderStatusProcessed = "processed"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	BaseModel
	UserID          uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User            *User       `json:"user,omitempty"`
	OrderNumber     string      `gorm:"uniqueIndex" json:"order_number"`
	Status          string      `json:"status"`
	PlacedAt        time.Time   `json:"placed_at"`
	EditableUntil   *time.Time  `json:"editable_until"`
	Subtotal        float64     `json:"subtotal"`
	TotalAmount     float64     `json:"total_amount"`
	Currency        string      `json:"currency"`
	DeliveryAddress string      `json:"delivery_address"`
	Notes           string      `json:"notes"`
	Items           []OrderItem `json:"items,omitempty"`
}

// IsEditableNow reports whether the owner may still change this order: the
// status gate and the edit-window gate both have to pass.
func (o *Order) IsEditableNow() bool {
	return o.Status == OrderStatusNew && o.EditableUntil != nil && time.Now().Before(*o.EditableUntil)
}

type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
	LineTotal   float64    `json:"line_total"`
}
