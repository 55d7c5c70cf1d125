package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeClient implements Client against the Stripe API.
type StripeClient struct {
	webhookSecret string
}

// NewStripeClient configures the Stripe SDK with the secret key and returns
// a client. webhookSecret is the shared secret for signature verification.
func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	stripe.Key = secretKey
	return &StripeClient{webhookSecret: webhookSecret}
}

func (s *StripeClient) CreateIntent(ctx context.Context, amount int64, currency, orderID string, userID int64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", orderID)
	params.AddMetadata("user_id", strconv.FormatInt(userID, 10))

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return intentFromStripe(pi), nil
}

func (s *StripeClient) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent %s: %w", id, err)
	}
	return intentFromStripe(pi), nil
}

func (s *StripeClient) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	out := &Event{Type: string(event.Type)}

	// Payment-intent events carry the intent as the event object.
	if strings.HasPrefix(out.Type, "payment_intent.") {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode webhook payment intent: %w", err)
		}
		out.Intent = intentFromStripe(&pi)
	}

	return out, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		OrderID:      pi.Metadata["order_id"],
	}
}
