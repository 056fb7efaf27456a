package models

// Product is the flat catalog entry customers order against.
type Product struct {
	BaseModel
	Name        string  `json:"name"`
	Description string  `json:"description"`
	SKU         string  `gorm:"uniqueIndex" json:"sku"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	Currency    string  `json:"currency"`
	IsActive    bool    `json:"is_active"`
}
