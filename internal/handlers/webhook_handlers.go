package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ippcom/goodies-api/internal/payments"
)

// StripeWebhook is the handler for POST /v1/stripe/webhook: the
// asynchronous reconciliation path. The raw body is verified against the
// provider's signature before anything else; a bad signature is rejected
// with no state change. Verified "payment succeeded" events mark the
// referenced order paid through the same guarded update as the synchronous
// path, so duplicate and out-of-order deliveries are no-ops. Events whose
// metadata names an unknown order are acknowledged without effect.
func (h *Handlers) StripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	event, err := h.Payments.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if event.Type == payments.EventPaymentSucceeded && event.Intent != nil && event.Intent.OrderID != "" {
		var clientSecret *string
		if event.Intent.ClientSecret != "" {
			clientSecret = &event.Intent.ClientSecret
		}
		if _, err := h.markOrderPaid(c, event.Intent.OrderID, clientSecret); err != nil {
			// A storage failure is retryable from the provider's side.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
