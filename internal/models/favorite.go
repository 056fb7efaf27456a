package models

import (
	"github.com/google/uuid"
)

// FavoriteOrder is a reusable order template. Items keep product references
// so reordering snapshots current catalog prices, not the ones at save time.
type FavoriteOrder struct {
	BaseModel
	UserID uuid.UUID           `gorm:"type:uuid;index" json:"user_id"`
	Name   string              `json:"name"`
	Items  []FavoriteOrderItem `json:"items,omitempty"`
}

type FavoriteOrderItem struct {
	BaseModel
	FavoriteOrderID uuid.UUID  `gorm:"type:uuid;index" json:"favorite_order_id"`
	ProductID       *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName     string     `json:"product_name"`
	Quantity        int        `json:"quantity"`
}
