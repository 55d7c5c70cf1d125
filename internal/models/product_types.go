package models

import "time"

// Product is the model for the 'products' table.
// Monetary amounts are integer minor units (cents). A nil BasePrice means
// the product has no flat price and is quoted per variant tier, or on request.
type Product struct {
	ID           string  `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	Slug         string  `json:"slug" db:"slug"`
	Category     *string `json:"category,omitempty" db:"category"`
	Description  *string `json:"description,omitempty" db:"description"`
	BasePrice    *int64  `json:"basePrice,omitempty" db:"base_price"`
	MinQty       int     `json:"minQty" db:"min_qty"`
	LeadTimeDays *int    `json:"leadTimeDays,omitempty" db:"lead_time_days"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty" db:"thumbnail_url"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins, populated manually.
	Images []ProductImage `json:"images,omitempty" db:"-"`
	Prices []PriceTier    `json:"prices,omitempty" db:"-"`
}

// ProductImage is the model for the 'product_images' table.
type ProductImage struct {
	ID        int64  `json:"id" db:"id"`
	ProductID string `json:"productId" db:"product_id"`
	URL       string `json:"url" db:"url"`
	Position  int    `json:"position" db:"position"`
}

// PriceTier is the model for the 'prices' table: one quantity-break price
// row for a variant SKU. The tier applies once the ordered quantity reaches
// QtyBreak.
type PriceTier struct {
	ID         int64  `json:"id" db:"id"`
	VariantSKU string `json:"variantSku" db:"variant_sku"`
	QtyBreak   int    `json:"qtyBreak" db:"qty_break"`
	UnitPrice  int64  `json:"unitPrice" db:"unit_price"`
}
