package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//
// --- Customer Dashboard ---
//

// DashboardOrder is a condensed order row for the dashboard listing.
type DashboardOrder struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// DashboardQuote is a condensed quote row for the dashboard listing.
type DashboardQuote struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetDashboard is the handler for GET /v1/dashboard: the caller's recent
// orders plus their quote requests, matched by the account email.
func (h *Handlers) GetDashboard(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var userEmail string
	if err := h.DB.QueryRowContext(c, "SELECT email FROM users WHERE id = ?", userID).Scan(&userEmail); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return
	}

	orderRows, err := h.DB.QueryContext(c, `
		SELECT id, status, total, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT 20`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer orderRows.Close()

	orders := []DashboardOrder{}
	for orderRows.Next() {
		var o DashboardOrder
		if err := orderRows.Scan(&o.ID, &o.Status, &o.Total, &o.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		orders = append(orders, o)
	}
	if err := orderRows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating orders"})
		return
	}

	quoteRows, err := h.DB.QueryContext(c, `
		SELECT id, product_id, quantity, created_at
		FROM quotes
		WHERE email = ?
		ORDER BY created_at DESC
		LIMIT 20`, userEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quotes"})
		return
	}
	defer quoteRows.Close()

	quotes := []DashboardQuote{}
	for quoteRows.Next() {
		var q DashboardQuote
		if err := quoteRows.Scan(&q.ID, &q.ProductID, &q.Quantity, &q.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan quote"})
			return
		}
		quotes = append(quotes, q)
	}
	if err := quoteRows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating quotes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "quotes": quotes})
}
