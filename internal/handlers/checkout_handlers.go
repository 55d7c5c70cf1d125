package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

//
// --- Checkout Orchestrator ---
//

// taxRatePercent is the flat VAT rate applied to the subtotal.
const taxRatePercent = 20

// Totals is the server-side money breakdown, in integer minor units.
type Totals struct {
	SubTotal int64 `json:"subTotal"`
	TaxTotal int64 `json:"taxTotal"`
	Total    int64 `json:"total"`
}

// TaxOn returns the tax on a subtotal, rounded half-up to the nearest
// minor unit.
func TaxOn(subTotal int64) int64 {
	return (subTotal*taxRatePercent + 50) / 100
}

// ComputeTotals sums line totals and applies the tax rate. The grand total
// is always subtotal + tax.
func ComputeTotals(lineTotals []int64) Totals {
	var subTotal int64
	for _, lt := range lineTotals {
		subTotal += lt
	}
	taxTotal := TaxOn(subTotal)
	return Totals{
		SubTotal: subTotal,
		TaxTotal: taxTotal,
		Total:    subTotal + taxTotal,
	}
}

// CheckoutItemInput is one cart line as submitted by the client. UnitPrice
// is advisory display state; the server re-resolves every price and
// discards any client-submitted amount.
type CheckoutItemInput struct {
	ID        string  `json:"id" binding:"required"`
	SKU       *string `json:"sku"`
	Name      string  `json:"name" binding:"required,notblank"`
	UnitPrice int64   `json:"unit_price"`
	Qty       int     `json:"qty" binding:"required,gt=0"`
	Image     *string `json:"image"`
}

// CheckoutInput is the body of POST /v1/checkout.
type CheckoutInput struct {
	Items    []CheckoutItemInput `json:"items" binding:"required,min=1,dive"`
	Currency string              `json:"currency" binding:"omitempty,iso4217"`

	CustomerName    string  `json:"customer_name" binding:"required,notblank"`
	CustomerEmail   string  `json:"customer_email" binding:"required,email"`
	CustomerCompany *string `json:"customer_company"`
	CustomerAddress *string `json:"customer_address"`
	CustomerNote    *string `json:"customer_note"`
	ShippingMethod  *string `json:"shipping_method" binding:"omitempty,oneof=delivery pickup"`
	PickupStore     *string `json:"pickup_store"`
}

// Checkout is the handler for POST /v1/checkout. It transitions the
// caller's draft order to pending with server-computed totals and lines,
// then creates a payment intent for the grand total.
//
// The order row and its lines are written in a single transaction, so a
// failed line insert can never leave a pending order without lines. The
// payment-intent reference is persisted after the fact as a best-effort
// write: the client already holds the secret it needs, and the order-detail
// reconciliation recovers the reference if this write is lost.
func (h *Handlers) Checkout(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = "EUR"
	}

	// 1. --- Recompute every line server-side ---
	tx, err := h.DB.BeginTx(c, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	orderID, err := h.getOrCreateDraftOrder(c, tx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open order"})
		return
	}

	type checkoutLine struct {
		CheckoutItemInput
		unitPrice int64
		lineTotal int64
	}

	lines := make([]checkoutLine, 0, len(input.Items))
	lineTotals := make([]int64, 0, len(input.Items))
	for _, item := range input.Items {
		unitPrice, err := h.Prices.ResolveUnitPriceTx(c, tx, item.ID, item.SKU, item.Qty)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve prices"})
			return
		}
		line := checkoutLine{
			CheckoutItemInput: item,
			unitPrice:         unitPrice,
			lineTotal:         unitPrice * int64(item.Qty),
		}
		lines = append(lines, line)
		lineTotals = append(lineTotals, line.lineTotal)
	}

	totals := ComputeTotals(lineTotals)
	now := time.Now()

	// 2. --- Submit the order: totals, customer fields, status pending ---
	_, err = tx.ExecContext(c, `
		UPDATE orders
		SET status = 'pending', currency = ?, sub_total = ?, tax_total = ?, total = ?,
			customer_name = ?, customer_email = ?, customer_company = ?, customer_address = ?,
			customer_note = ?, shipping_method = ?, pickup_store = ?, updated_at = ?
		WHERE id = ?`,
		currency, totals.SubTotal, totals.TaxTotal, totals.Total,
		input.CustomerName, input.CustomerEmail, input.CustomerCompany, input.CustomerAddress,
		input.CustomerNote, input.ShippingMethod, input.PickupStore, now, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit order"})
		return
	}

	// 3. --- Replace the order lines with the server-priced set ---
	if _, err := tx.ExecContext(c, "DELETE FROM order_items WHERE order_id = ?", orderID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace order lines"})
		return
	}
	for _, line := range lines {
		_, err := tx.ExecContext(c, `
			INSERT INTO order_items (order_id, product_id, sku, name, qty, unit_price, line_total, thumbnail_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			orderID, line.ID, line.SKU, line.Name, line.Qty, line.unitPrice, line.lineTotal, line.Image, now, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order line"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit order"})
		return
	}

	// 4. --- Create the payment intent for the grand total ---
	intent, err := h.Payments.CreateIntent(c, totals.Total, currency, orderID, userID)
	if err != nil {
		log.Printf("checkout: payment intent creation failed for order %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment provider error"})
		return
	}

	// 5. --- Persist the provider reference (fire-and-log) ---
	h.persistPaymentRef(c, orderID, intent.ID, intent.ClientSecret)

	c.JSON(http.StatusOK, gin.H{
		"orderId":      orderID,
		"clientSecret": intent.ClientSecret,
		"totals":       totals,
	})
}

// persistPaymentRef stores the provider's payment reference on the order.
// This is an explicit best-effort write: a failure is logged and never
// surfaced to the checkout response, since the intent already exists and
// reconciliation can recover from the provider side.
func (h *Handlers) persistPaymentRef(c *gin.Context, orderID, intentID, clientSecret string) {
	_, err := h.DB.ExecContext(c, `
		UPDATE orders SET payment_intent_id = ?, payment_intent_client_secret = ?, updated_at = ?
		WHERE id = ?`,
		intentID, clientSecret, time.Now(), orderID)
	if err != nil {
		log.Printf("checkout: failed to persist payment reference %s on order %s: %v", intentID, orderID, err)
	}
}
