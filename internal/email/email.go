// Package email is the transactional-mail port. Quote intake treats mail as
// best-effort: a failed send is logged by the caller and never rolls back
// the persisted record.
package email

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/resend/resend-go/v2"
)

// Sender sends one transactional email.
type Sender interface {
	Send(ctx context.Context, to, subject, text string) error
}

// ResendSender sends mail through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) Send(ctx context.Context, to, subject, text string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    text,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send to %s: %w", to, err)
	}
	return nil
}

// LogSender logs the message instead of sending it. Used when no mail API
// key is configured, so the rest of the flow stays testable locally.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, text string) error {
	log.Printf("--- EMAIL (not sent, no mail provider configured) ---")
	log.Printf("To: %s", to)
	log.Printf("Subject: %s", subject)
	log.Println(text)
	return nil
}

// QuoteEmail is the data both quote notifications are built from.
type QuoteEmail struct {
	ProductName string
	VariantSKU  *string
	Quantity    int
	Name        string
	Email       string
	Company     *string
	Message     *string
}

// InternalQuoteBody renders the sales-team notification.
func InternalQuoteBody(q QuoteEmail) (subject, body string) {
	subject = fmt.Sprintf("New quote request - %s", q.ProductName)

	lines := []string{
		fmt.Sprintf("Product: %s", q.ProductName),
	}
	if q.VariantSKU != nil && *q.VariantSKU != "" {
		lines = append(lines, fmt.Sprintf("Variant: %s", *q.VariantSKU))
	}
	lines = append(lines,
		fmt.Sprintf("Quantity: %d", q.Quantity),
		"",
		fmt.Sprintf("Name: %s", q.Name),
		fmt.Sprintf("Email: %s", q.Email),
	)
	if q.Company != nil && *q.Company != "" {
		lines = append(lines, fmt.Sprintf("Company: %s", *q.Company))
	}
	lines = append(lines, "", "Message:")
	if q.Message != nil && *q.Message != "" {
		lines = append(lines, *q.Message)
	} else {
		lines = append(lines, "(no message)")
	}

	return subject, strings.Join(lines, "\n")
}

// CustomerQuoteBody renders the confirmation sent back to the requester.
func CustomerQuoteBody(q QuoteEmail) (subject, body string) {
	subject = fmt.Sprintf("We received your quote request - %s", q.ProductName)

	lines := []string{
		fmt.Sprintf("Hello %s,", q.Name),
		"",
		"Thank you for your request. Our team will come back to you shortly with a quote for:",
		"",
		fmt.Sprintf("  %s x%d", q.ProductName, q.Quantity),
	}
	if q.VariantSKU != nil && *q.VariantSKU != "" {
		lines = append(lines, fmt.Sprintf("  Variant: %s", *q.VariantSKU))
	}
	lines = append(lines, "", "You can follow your requests from your customer dashboard.")

	return subject, strings.Join(lines, "\n")
}
