package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ippcom/goodies-api/internal/email"
	"github.com/ippcom/goodies-api/internal/models"
)

//
// --- Quote Intake ---
//
// Quotes are a standalone workflow: validate, persist one immutable record,
// then notify. The record is the source of truth; the two notification
// emails are best-effort and never roll it back.
//

// CreateQuoteInput is the body of POST /v1/quotes.
type CreateQuoteInput struct {
	ProductID  string  `json:"product_id" binding:"required"`
	VariantSKU *string `json:"variant_sku"`
	Quantity   int     `json:"quantity" binding:"required,gt=0"`
	Name       string  `json:"name" binding:"required,notblank"`
	Email      string  `json:"email" binding:"required,email"`
	Company    *string `json:"company"`
	Message    *string `json:"message"`
}

// CreateQuote is the handler for POST /v1/quotes (public).
func (h *Handlers) CreateQuote(c *gin.Context) {
	var input CreateQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Missing required fields"})
		return
	}

	// The product name feeds the notification subjects; an unknown product
	// id still produces a valid quote record.
	productName := input.ProductID
	var name string
	err := h.DB.QueryRowContext(c, "SELECT name FROM products WHERE id = ?", input.ProductID).Scan(&name)
	switch {
	case err == nil:
		productName = name
	case err == sql.ErrNoRows:
		// keep the id as display name
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Database error"})
		return
	}

	quoteID := uuid.NewString()
	_, err = h.DB.ExecContext(c, `
		INSERT INTO quotes (id, product_id, variant_sku, quantity, name, email, company, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quoteID, input.ProductID, input.VariantSKU, input.Quantity,
		input.Name, input.Email, input.Company, input.Message, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to save quote"})
		return
	}

	h.sendQuoteEmails(c, email.QuoteEmail{
		ProductName: productName,
		VariantSKU:  input.VariantSKU,
		Quantity:    input.Quantity,
		Name:        input.Name,
		Email:       input.Email,
		Company:     input.Company,
		Message:     input.Message,
	})

	c.JSON(http.StatusOK, gin.H{"ok": true, "quote_id": quoteID})
}

// sendQuoteEmails dispatches the internal notification and the customer
// confirmation. Both are fire-and-log.
func (h *Handlers) sendQuoteEmails(c *gin.Context, q email.QuoteEmail) {
	if h.Mailer == nil {
		return
	}

	if h.QuotesTo != "" {
		subject, body := email.InternalQuoteBody(q)
		if err := h.Mailer.Send(c, h.QuotesTo, subject, body); err != nil {
			log.Printf("quote: internal notification failed: %v", err)
		}
	}

	subject, body := email.CustomerQuoteBody(q)
	if err := h.Mailer.Send(c, q.Email, subject, body); err != nil {
		log.Printf("quote: customer confirmation to %s failed: %v", q.Email, err)
	}
}

// GetQuoteDetails is the handler for GET /v1/quotes/:id. A quote is only
// visible to the account whose email matches the requester email stored on
// the record.
func (h *Handlers) GetQuoteDetails(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)
	quoteID := c.Param("id")

	var userEmail string
	if err := h.DB.QueryRowContext(c, "SELECT email FROM users WHERE id = ?", userID).Scan(&userEmail); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return
	}

	var q models.Quote
	err := h.DB.QueryRowContext(c, `
		SELECT id, product_id, variant_sku, quantity, name, email, company, message, created_at
		FROM quotes
		WHERE id = ? AND email = ?`, quoteID, userEmail).Scan(
		&q.ID, &q.ProductID, &q.VariantSKU, &q.Quantity,
		&q.Name, &q.Email, &q.Company, &q.Message, &q.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quote"})
		return
	}

	var productName *string
	var name string
	if err := h.DB.QueryRowContext(c, "SELECT name FROM products WHERE id = ?", q.ProductID).Scan(&name); err == nil {
		productName = &name
	}

	c.JSON(http.StatusOK, gin.H{"quote": q, "productName": productName})
}
