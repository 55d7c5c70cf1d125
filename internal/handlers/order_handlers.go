package handlers

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ippcom/goodies-api/internal/models"
	"github.com/ippcom/goodies-api/internal/payments"
)

//
// --- Order Handlers & Payment Reconciliation ---
//

// markOrderPaid is the single guarded status transition both reconciliation
// paths share. It only moves a pending order to paid, so a duplicate or
// late "succeeded" signal can never revert a cancelled, refunded or already
// progressed order. Returns whether a row actually changed.
func (h *Handlers) markOrderPaid(ctx context.Context, orderID string, clientSecret *string) (bool, error) {
	result, err := h.DB.ExecContext(ctx, `
		UPDATE orders
		SET status = 'paid', payment_intent_client_secret = COALESCE(?, payment_intent_client_secret), updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		clientSecret, time.Now(), orderID)
	if err != nil {
		return false, err
	}
	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// GetMyOrders is the handler for GET /v1/orders.
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	rows, err := h.DB.QueryContext(c, `
		SELECT id, status, currency, sub_total, tax_total, total, created_at, updated_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.Status, &o.Currency, &o.SubTotal, &o.TaxTotal, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order data"})
			return
		}
		o.UserID = &userID
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrderDetails is the handler for GET /v1/orders/:id. Before responding
// it runs the synchronous reconciliation path: a pending order with a
// payment reference is checked against the provider, and marked paid when
// the provider reports success. Races with the webhook are harmless — both
// paths funnel into the same idempotent markOrderPaid update.
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)
	orderID := c.Param("id")

	var o models.Order
	err := h.DB.QueryRowContext(c, `
		SELECT id, status, currency, sub_total, tax_total, total,
			payment_intent_id, payment_intent_client_secret,
			customer_name, customer_email, customer_company, customer_address, customer_note,
			shipping_method, pickup_store, created_at, updated_at
		FROM orders
		WHERE id = ? AND user_id = ?`, orderID, userID).Scan(
		&o.ID, &o.Status, &o.Currency, &o.SubTotal, &o.TaxTotal, &o.Total,
		&o.PaymentIntentID, &o.PaymentIntentClientSecret,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerCompany, &o.CustomerAddress, &o.CustomerNote,
		&o.ShippingMethod, &o.PickupStore, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}
	o.UserID = &userID

	// Synchronous reconciliation. Provider errors are logged, not surfaced:
	// the stored state is still a valid view and the webhook path converges
	// later.
	clientSecret := ""
	if o.PaymentIntentClientSecret != nil {
		clientSecret = *o.PaymentIntentClientSecret
	}
	if o.Status == models.OrderStatusPending && o.PaymentIntentID != nil && *o.PaymentIntentID != "" {
		intent, err := h.Payments.RetrieveIntent(c, *o.PaymentIntentID)
		if err != nil {
			log.Printf("order %s: payment intent lookup failed: %v", o.ID, err)
		} else {
			if intent.ClientSecret != "" {
				clientSecret = intent.ClientSecret
			}
			if intent.Status == payments.StatusSucceeded {
				updated, err := h.markOrderPaid(c, o.ID, &intent.ClientSecret)
				if err != nil {
					log.Printf("order %s: failed to mark paid: %v", o.ID, err)
				} else if updated {
					o.Status = models.OrderStatusPaid
				}
			}
		}
	}

	rows, err := h.DB.QueryContext(c, `
		SELECT id, order_id, product_id, sku, name, qty, unit_price, line_total, thumbnail_url, created_at, updated_at
		FROM order_items
		WHERE order_id = ?
		ORDER BY id ASC`, o.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.SKU, &item.Name,
			&item.Qty, &item.UnitPrice, &item.LineTotal, &item.ThumbnailURL,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order item"})
			return
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating order items"})
		return
	}

	resp := gin.H{"order": o, "items": items}
	if o.Status == models.OrderStatusPending && clientSecret != "" {
		// The client still needs the secret to complete payment.
		resp["clientSecret"] = clientSecret
	}
	c.JSON(http.StatusOK, resp)
}
