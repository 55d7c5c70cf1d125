package models

import "time"

// Order statuses. An order in one of the open statuses is the customer's
// cart; checkout moves it to pending; reconciliation moves pending to paid.
// The remaining statuses are set administratively.
const (
	OrderStatusCart       = "cart"
	OrderStatusDraft      = "draft"
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// OpenOrderStatuses are the pre-submission statuses a draft order can hold.
var OpenOrderStatuses = []string{OrderStatusCart, OrderStatusDraft, OrderStatusPending}

// Order is the model for the 'orders' table. It represents either an
// in-progress cart or a submitted purchase. All monetary amounts are
// integer minor units; Total is always SubTotal + TaxTotal.
type Order struct {
	ID       string  `json:"id" db:"id"`
	UserID   *int64  `json:"userId,omitempty" db:"user_id"`
	Status   string  `json:"status" db:"status"`
	Currency string  `json:"currency" db:"currency"`
	SubTotal int64   `json:"subTotal" db:"sub_total"`
	TaxTotal int64   `json:"taxTotal" db:"tax_total"`
	Total    int64   `json:"total" db:"total"`

	PaymentIntentID           *string `json:"paymentIntentId,omitempty" db:"payment_intent_id"`
	PaymentIntentClientSecret *string `json:"-" db:"payment_intent_client_secret"`

	CustomerName    *string `json:"customerName,omitempty" db:"customer_name"`
	CustomerEmail   *string `json:"customerEmail,omitempty" db:"customer_email"`
	CustomerCompany *string `json:"customerCompany,omitempty" db:"customer_company"`
	CustomerAddress *string `json:"customerAddress,omitempty" db:"customer_address"`
	CustomerNote    *string `json:"customerNote,omitempty" db:"customer_note"`
	ShippingMethod  *string `json:"shippingMethod,omitempty" db:"shipping_method"` // delivery | pickup
	PickupStore     *string `json:"pickupStore,omitempty" db:"pickup_store"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderItem is the model for the 'order_items' table. A line is addressed
// by the (order, product, sku-or-null) tuple; LineTotal is always
// UnitPrice * Qty, recomputed on every mutation.
type OrderItem struct {
	ID           int64   `json:"id" db:"id"`
	OrderID      string  `json:"orderId" db:"order_id"`
	ProductID    string  `json:"productId" db:"product_id"`
	SKU          *string `json:"sku,omitempty" db:"sku"`
	Name         string  `json:"name" db:"name"`
	Qty          int     `json:"qty" db:"qty"`
	UnitPrice    int64   `json:"unitPrice" db:"unit_price"`
	LineTotal    int64   `json:"lineTotal" db:"line_total"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty" db:"thumbnail_url"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
