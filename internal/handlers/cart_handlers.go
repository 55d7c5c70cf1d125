package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

//
// --- Cart Handlers ---
//
// The cart is the customer's open draft order: an orders row in one of the
// statuses cart/draft/pending, with its order_items as the cart lines. Any
// client-side cart state is advisory; these rows are the source of truth.
//

const findOpenOrderQuery = `
	SELECT id FROM orders
	WHERE user_id = ? AND status IN ('cart', 'draft', 'pending')
	ORDER BY created_at DESC, id DESC
	LIMIT 1`

// getOrCreateDraftOrder finds the caller's open draft order or creates one.
// Creation is serialized by the UNIQUE (user_id, open_slot) key: when two
// requests race, the loser's INSERT fails with a duplicate key and we fall
// back to the winner's row.
func (h *Handlers) getOrCreateDraftOrder(ctx context.Context, tx *sql.Tx, userID int64) (string, error) {
	var orderID string
	err := tx.QueryRowContext(ctx, findOpenOrderQuery, userID).Scan(&orderID)
	if err == nil {
		return orderID, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	orderID = uuid.NewString()
	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, currency, sub_total, tax_total, total, created_at, updated_at)
		VALUES (?, ?, 'cart', 'EUR', 0, 0, 0, ?, ?)`,
		orderID, userID, now, now)
	if err == nil {
		return orderID, nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		// Lost the race to a concurrent request from the same user.
		if err := tx.QueryRowContext(ctx, findOpenOrderQuery, userID).Scan(&orderID); err != nil {
			return "", err
		}
		return orderID, nil
	}
	return "", err
}

// findCartLine locates a line by the (order, product, sku-or-null) tuple.
func (h *Handlers) findCartLine(ctx context.Context, tx *sql.Tx, orderID, productID string, sku *string) (int64, int, error) {
	var (
		lineID int64
		qty    int
		err    error
	)
	if sku != nil && *sku != "" {
		err = tx.QueryRowContext(ctx,
			"SELECT id, qty FROM order_items WHERE order_id = ? AND product_id = ? AND sku = ?",
			orderID, productID, *sku).Scan(&lineID, &qty)
	} else {
		err = tx.QueryRowContext(ctx,
			"SELECT id, qty FROM order_items WHERE order_id = ? AND product_id = ? AND sku IS NULL",
			orderID, productID).Scan(&lineID, &qty)
	}
	return lineID, qty, err
}

// AddToCartInput defines the JSON for adding an item to the cart. The unit
// price is never taken from the client; it is resolved server-side for the
// line's resulting total quantity.
type AddToCartInput struct {
	ProductID    string  `json:"product_id" binding:"required"`
	SKU          *string `json:"sku"`
	Name         string  `json:"name" binding:"required,notblank"`
	Qty          int     `json:"qty" binding:"required,gt=0"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

// AddToCart is the handler for POST /v1/cart/items.
func (h *Handlers) AddToCart(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	tx, err := h.DB.BeginTx(c, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	orderID, err := h.getOrCreateDraftOrder(c, tx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart initialization failed"})
		return
	}

	// An existing line for the same product+sku is incremented; the unit
	// price is re-resolved for the new total quantity, since crossing a
	// quantity break can change the tier.
	lineID, existingQty, err := h.findCartLine(c, tx, orderID, input.ProductID, input.SKU)
	if err != nil && err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cart"})
		return
	}

	newQty := input.Qty
	if err == nil {
		newQty = existingQty + input.Qty
	}

	unitPrice, priceErr := h.Prices.ResolveUnitPriceTx(c, tx, input.ProductID, input.SKU, newQty)
	if priceErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve price"})
		return
	}
	lineTotal := unitPrice * int64(newQty)
	now := time.Now()

	if err == sql.ErrNoRows {
		_, err = tx.ExecContext(c, `
			INSERT INTO order_items (order_id, product_id, sku, name, qty, unit_price, line_total, thumbnail_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			orderID, input.ProductID, input.SKU, input.Name, newQty, unitPrice, lineTotal, input.ThumbnailURL, now, now)
	} else {
		_, err = tx.ExecContext(c, `
			UPDATE order_items
			SET qty = ?, unit_price = ?, line_total = ?, name = ?, thumbnail_url = ?, updated_at = ?
			WHERE id = ?`,
			newQty, unitPrice, lineTotal, input.Name, input.ThumbnailURL, now, lineID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"orderId":   orderID,
		"productId": input.ProductID,
		"sku":       input.SKU,
		"qty":       newQty,
		"unitPrice": unitPrice,
		"lineTotal": lineTotal,
	})
}

// CartItemResponse is one cart line as returned by GetCart.
type CartItemResponse struct {
	ProductID    string  `json:"productId"`
	SKU          *string `json:"sku,omitempty"`
	Name         string  `json:"name"`
	Qty          int     `json:"qty"`
	UnitPrice    int64   `json:"unitPrice"`
	LineTotal    int64   `json:"lineTotal"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
}

// GetCart is the handler for GET /v1/cart.
func (h *Handlers) GetCart(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var orderID string
	err := h.DB.QueryRowContext(c, findOpenOrderQuery, userID).Scan(&orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusOK, gin.H{
				"orderId":    nil,
				"items":      []CartItemResponse{},
				"subTotal":   0,
				"totalItems": 0,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	rows, err := h.DB.QueryContext(c, `
		SELECT product_id, sku, name, qty, unit_price, line_total, thumbnail_url
		FROM order_items
		WHERE order_id = ?
		ORDER BY id ASC`, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query cart items"})
		return
	}
	defer rows.Close()

	items := []CartItemResponse{}
	var subTotal int64
	var totalItems int

	for rows.Next() {
		var item CartItemResponse
		if err := rows.Scan(
			&item.ProductID,
			&item.SKU,
			&item.Name,
			&item.Qty,
			&item.UnitPrice,
			&item.LineTotal,
			&item.ThumbnailURL,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan cart item"})
			return
		}
		subTotal += item.LineTotal
		totalItems += item.Qty
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating cart items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderId":    orderID,
		"items":      items,
		"subTotal":   subTotal,
		"totalItems": totalItems,
	})
}

// UpdateCartItemInput defines the JSON for changing a line's quantity.
// A quantity of zero or less removes the line.
type UpdateCartItemInput struct {
	SKU *string `json:"sku"`
	Qty *int    `json:"qty" binding:"required"`
}

// UpdateCartItem is the handler for PUT /v1/cart/items/:product_id.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)
	productID := c.Param("product_id")

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.BeginTx(c, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	orderID, err := h.getOrCreateDraftOrder(c, tx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart initialization failed"})
		return
	}

	if *input.Qty <= 0 {
		if ok := h.deleteCartLine(c, tx, orderID, productID, input.SKU); !ok {
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
		return
	}

	unitPrice, err := h.Prices.ResolveUnitPriceTx(c, tx, productID, input.SKU, *input.Qty)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve price"})
		return
	}
	lineTotal := unitPrice * int64(*input.Qty)

	var result sql.Result
	if input.SKU != nil && *input.SKU != "" {
		result, err = tx.ExecContext(c, `
			UPDATE order_items SET qty = ?, unit_price = ?, line_total = ?, updated_at = ?
			WHERE order_id = ? AND product_id = ? AND sku = ?`,
			*input.Qty, unitPrice, lineTotal, time.Now(), orderID, productID, *input.SKU)
	} else {
		result, err = tx.ExecContext(c, `
			UPDATE order_items SET qty = ?, unit_price = ?, line_total = ?, updated_at = ?
			WHERE order_id = ? AND product_id = ? AND sku IS NULL`,
			*input.Qty, unitPrice, lineTotal, time.Now(), orderID, productID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Cart item quantity updated",
		"qty":       *input.Qty,
		"unitPrice": unitPrice,
		"lineTotal": lineTotal,
	})
}

// DeleteCartItem is the handler for DELETE /v1/cart/items/:product_id.
// The variant is selected with the optional ?sku= query parameter.
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)
	productID := c.Param("product_id")

	var sku *string
	if s := strings.TrimSpace(c.Query("sku")); s != "" {
		sku = &s
	}

	tx, err := h.DB.BeginTx(c, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	var orderID string
	if err := tx.QueryRowContext(c, findOpenOrderQuery, userID).Scan(&orderID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	if ok := h.deleteCartLine(c, tx, orderID, productID, sku); !ok {
		return
	}
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}

// deleteCartLine removes one line. It writes the error response itself and
// reports whether the caller should proceed to commit.
func (h *Handlers) deleteCartLine(c *gin.Context, tx *sql.Tx, orderID, productID string, sku *string) bool {
	var (
		result sql.Result
		err    error
	)
	if sku != nil && *sku != "" {
		result, err = tx.ExecContext(c,
			"DELETE FROM order_items WHERE order_id = ? AND product_id = ? AND sku = ?",
			orderID, productID, *sku)
	} else {
		result, err = tx.ExecContext(c,
			"DELETE FROM order_items WHERE order_id = ? AND product_id = ? AND sku IS NULL",
			orderID, productID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return false
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return false
	}
	return true
}

// ClearCart is the handler for DELETE /v1/cart. It empties every open draft
// order the user has and zeroes their totals; the order rows themselves are
// kept.
func (h *Handlers) ClearCart(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	rows, err := h.DB.QueryContext(c,
		"SELECT id FROM orders WHERE user_id = ? AND status IN ('cart', 'draft', 'pending')", userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}
	defer rows.Close()

	var orderIDs []any
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		orderIDs = append(orderIDs, id)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	if len(orderIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
		return
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(orderIDs)), ", ")

	if _, err := h.DB.ExecContext(c,
		"DELETE FROM order_items WHERE order_id IN ("+placeholders+")", orderIDs...); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	args := append([]any{time.Now()}, orderIDs...)
	if _, err := h.DB.ExecContext(c,
		"UPDATE orders SET sub_total = 0, tax_total = 0, total = 0, updated_at = ? WHERE id IN ("+placeholders+")", args...); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset cart totals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
