package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ippcom/goodies-api/internal/handlers"
	"github.com/ippcom/goodies-api/internal/payments"
	"github.com/ippcom/goodies-api/internal/pricing"
)

const testUserID int64 = 7

// fakePayments implements payments.Client with per-test hooks. A call with
// no hook installed fails the flow, which surfaces unexpected provider
// usage in the handler under test.
type fakePayments struct {
	createIntent   func(ctx context.Context, amount int64, currency, orderID string, userID int64) (*payments.Intent, error)
	retrieveIntent func(ctx context.Context, id string) (*payments.Intent, error)
	verifyWebhook  func(payload []byte, signature string) (*payments.Event, error)

	retrieveCalls int
}

func (f *fakePayments) CreateIntent(ctx context.Context, amount int64, currency, orderID string, userID int64) (*payments.Intent, error) {
	if f.createIntent == nil {
		return nil, errors.New("unexpected CreateIntent call")
	}
	return f.createIntent(ctx, amount, currency, orderID, userID)
}

func (f *fakePayments) RetrieveIntent(ctx context.Context, id string) (*payments.Intent, error) {
	f.retrieveCalls++
	if f.retrieveIntent == nil {
		return nil, errors.New("unexpected RetrieveIntent call")
	}
	return f.retrieveIntent(ctx, id)
}

func (f *fakePayments) VerifyWebhook(payload []byte, signature string) (*payments.Event, error) {
	if f.verifyWebhook == nil {
		return nil, errors.New("unexpected VerifyWebhook call")
	}
	return f.verifyWebhook(payload, signature)
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeSender records sent mail, or fails every send when err is set.
type fakeSender struct {
	err  error
	sent []sentMail
}

func (f *fakeSender) Send(_ context.Context, to, subject, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: text})
	return nil
}

func newTestHandlers(t *testing.T) (*handlers.Handlers, sqlmock.Sqlmock, *fakePayments, *fakeSender) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fp := &fakePayments{}
	fs := &fakeSender{}
	h := &handlers.Handlers{
		DB:       db,
		Payments: fp,
		Mailer:   fs,
		Prices:   pricing.NewResolver(db),
		QuotesTo: "sales@example.com",
	}
	return h, mock, fp, fs
}

// newTestRouter wires the handlers under test behind a stub auth layer
// that injects testUserID, mirroring what the real middleware does.
func newTestRouter(h *handlers.Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handlers.RegisterValidations()

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userID", testUserID) })

	r.GET("/cart", h.GetCart)
	r.POST("/cart/items", h.AddToCart)
	r.PUT("/cart/items/:product_id", h.UpdateCartItem)
	r.DELETE("/cart/items/:product_id", h.DeleteCartItem)
	r.DELETE("/cart", h.ClearCart)
	r.POST("/checkout", h.Checkout)
	r.GET("/orders/:id", h.GetOrderDetails)
	r.POST("/stripe/webhook", h.StripeWebhook)
	r.POST("/quotes", h.CreateQuote)
	r.GET("/products", h.SearchProducts)
	r.GET("/categories", h.GetCategories)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "unexpected status, body: %s", w.Body.String())
}
