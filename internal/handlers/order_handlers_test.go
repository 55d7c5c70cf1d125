package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ippcom/goodies-api/internal/payments"
)

var orderDetailColumns = []string{
	"id", "status", "currency", "sub_total", "tax_total", "total",
	"payment_intent_id", "payment_intent_client_secret",
	"customer_name", "customer_email", "customer_company", "customer_address", "customer_note",
	"shipping_method", "pickup_store", "created_at", "updated_at",
}

func orderDetailRow(status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(orderDetailColumns).AddRow(
		"order-1", status, "EUR", int64(3000), int64(600), int64(3600),
		"pi_1", "pi_1_secret",
		"Ada Lovelace", "ada@example.com", nil, nil, nil,
		nil, nil, now, now,
	)
}

func expectOrderItems(mock sqlmock.Sqlmock) {
	now := time.Now()
	mock.ExpectQuery("FROM order_items").
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "order_id", "product_id", "sku", "name", "qty", "unit_price", "line_total", "thumbnail_url", "created_at", "updated_at"}).
			AddRow(int64(11), "order-1", "prod-1", "SKU-1", "Widget", 3, int64(1000), int64(3000), nil, now, now))
}

func TestGetOrderDetails_ReconcilesPendingToPaid(t *testing.T) {
	h, mock, fp, _ := newTestHandlers(t)
	r := newTestRouter(h)

	mock.ExpectQuery("SELECT id, status, currency").
		WithArgs("order-1", testUserID).
		WillReturnRows(orderDetailRow("pending"))
	mock.ExpectExec("SET status = 'paid'").
		WithArgs("pi_1_secret", sqlmock.AnyArg(), "order-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectOrderItems(mock)

	fp.retrieveIntent = func(_ context.Context, id string) (*payments.Intent, error) {
		assert.Equal(t, "pi_1", id)
		return &payments.Intent{ID: "pi_1", ClientSecret: "pi_1_secret", Status: payments.StatusSucceeded}, nil
	}

	w := doJSON(t, r, http.MethodGet, "/orders/order-1", nil)

	requireStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	order, ok := body["order"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "paid", order["status"])
	// Payment is settled, so the secret must not be offered for re-use.
	assert.NotContains(t, body, "clientSecret")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderDetails_SettledOrderSkipsProvider(t *testing.T) {
	h, mock, fp, _ := newTestHandlers(t)
	r := newTestRouter(h)

	mock.ExpectQuery("SELECT id, status, currency").
		WithArgs("order-1", testUserID).
		WillReturnRows(orderDetailRow("paid"))
	expectOrderItems(mock)

	w := doJSON(t, r, http.MethodGet, "/orders/order-1", nil)

	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, 0, fp.retrieveCalls)
}

func TestGetOrderDetails_ProviderErrorLeavesPending(t *testing.T) {
	h, mock, fp, _ := newTestHandlers(t)
	r := newTestRouter(h)

	mock.ExpectQuery("SELECT id, status, currency").
		WithArgs("order-1", testUserID).
		WillReturnRows(orderDetailRow("pending"))
	expectOrderItems(mock)

	fp.retrieveIntent = func(context.Context, string) (*payments.Intent, error) {
		return nil, errors.New("stripe: timeout")
	}

	w := doJSON(t, r, http.MethodGet, "/orders/order-1", nil)

	requireStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	order, ok := body["order"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pending", order["status"])
	// Still payable: the stored secret is handed back to the client.
	assert.Equal(t, "pi_1_secret", body["clientSecret"])
}

func TestGetOrderDetails_NotFound(t *testing.T) {
	h, mock, _, _ := newTestHandlers(t)
	r := newTestRouter(h)

	mock.ExpectQuery("SELECT id, status, currency").
		WithArgs("order-404", testUserID).
		WillReturnRows(sqlmock.NewRows(orderDetailColumns))

	w := doJSON(t, r, http.MethodGet, "/orders/order-404", nil)

	requireStatus(t, w, http.StatusNotFound)
}
