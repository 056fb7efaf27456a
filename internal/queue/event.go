package queue

import "time"

// OrderQueueName is the durable queue carrying placed-order events.
const OrderQueueName = "order.placed"

// OrderPlacedEvent is published whenever a customer places an order.
type OrderPlacedEvent struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	Phone       string    `json:"phone"`
	TotalAmount float64   `json:"total_amount"`
	Currency    string    `json:"currency"`
	PlacedAt    time.Time `json:"placed_at"`
}
