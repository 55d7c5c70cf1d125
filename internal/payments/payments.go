// Package payments is the port to the external payment provider. Handlers
// depend on the Client interface so tests can substitute a fake; the Stripe
// implementation lives in stripe.go.
package payments

import (
	"context"
	"errors"
)

// Intent statuses we care about. The provider has more; everything that is
// not succeeded is treated as still-in-progress by the reconciliation paths.
const StatusSucceeded = "succeeded"

// EventPaymentSucceeded is the provider event type that marks an order paid.
const EventPaymentSucceeded = "payment_intent.succeeded"

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("payments: invalid webhook signature")

// Intent is the provider's payment-intent object reduced to what the
// storefront needs. OrderID is the correlation metadata we attached at
// creation time; it is empty on intents we did not create.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	OrderID      string
}

// Event is a verified webhook event.
type Event struct {
	Type   string
	Intent *Intent
}

// Client is the payment-provider interface the storefront consumes.
type Client interface {
	// CreateIntent creates a payment intent for amount minor units of
	// currency, attaching the order ID as correlation metadata.
	CreateIntent(ctx context.Context, amount int64, currency, orderID string, userID int64) (*Intent, error)

	// RetrieveIntent fetches the current state of a payment intent.
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)

	// VerifyWebhook checks the provider signature over the raw payload and
	// returns the decoded event. ErrInvalidSignature means the payload must
	// be rejected with no state change.
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}
