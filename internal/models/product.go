package models

// QuantityRule bounds quantities to what every backend can store; the SQL
// column is a 32-bit INTEGER.
const QuantityRule = "gte=0,lte=2147483647"

// Product represents a product entity in the inventory system.
// Name is the intended identifier but the store does not enforce uniqueness.
type Product struct {
	ID       string  `bson:"_id,omitempty" json:"id"`
	Name     string  `bson:"name" json:"name" validate:"required"`
	Quantity int     `bson:"quantity" json:"quantity" validate:"gte=0,lte=2147483647"`
	Price    float64 `bson:"price" json:"price" validate:"gte=0"`
}
