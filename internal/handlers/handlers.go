package handlers

import (
	"database/sql"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ippcom/goodies-api/internal/email"
	"github.com/ippcom/goodies-api/internal/payments"
	"github.com/ippcom/goodies-api/internal/pricing"
)

// Handlers holds all dependencies for the request handlers.
type Handlers struct {
	DB       *sql.DB
	Payments payments.Client
	Mailer   email.Sender
	Prices   *pricing.Resolver

	// QuotesTo is the internal recipient for quote notifications.
	// Empty means the internal notification is skipped.
	QuotesTo string
}

// RegisterValidations adds our custom binding rules to gin's validator.
// "notblank" rejects strings that are empty after trimming, which plain
// "required" lets through.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	}
}
