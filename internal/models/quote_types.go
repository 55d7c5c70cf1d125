package models

import "time"

// Quote is the model for the 'quotes' table: a standalone price inquiry,
// not linked to an order. Rows are immutable after creation.
type Quote struct {
	ID         string  `json:"id" db:"id"`
	ProductID  string  `json:"productId" db:"product_id"`
	VariantSKU *string `json:"variantSku,omitempty" db:"variant_sku"`
	Quantity   int     `json:"quantity" db:"quantity"`
	Name       string  `json:"name" db:"name"`
	Email      string  `json:"email" db:"email"`
	Company    *string `json:"company,omitempty" db:"company"`
	Message    *string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
