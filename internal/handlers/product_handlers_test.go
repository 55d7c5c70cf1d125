package handlers_test

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows(
		[]string{"id", "name", "slug", "category", "thumbnail_url", "min_qty", "base_price"})
}

func TestSearchProducts_Pagination(t *testing.T) {
	h, mock, _, _ := newTestHandlers(t)
	r := newTestRouter(h)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(96))
	mock.ExpectQuery("SELECT id, name, slug").
		WithArgs(48, 48).
		WillReturnRows(productRows().
			AddRow("prod-49", "Mug", "mug", "Drinkware", nil, 1, int64(500)))

	w := doJSON(t, r, http.MethodGet, "/products?page=2", nil)

	requireStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	assert.Equal(t, float64(96), body["total"])
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, float64(48), body["pageSize"])
	assert.Equal(t, float64(2), body["totalPages"])
	assert.Len(t, body["products"], 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchProducts_Filters(t *testing.T) {
	h, mock, _, _ := newTestHandlers(t)
	r := newTestRouter(h)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("%mug%", "Drinkware").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT id, name, slug").
		WithArgs("%mug%", "Drinkware", 48, 0).
		WillReturnRows(productRows().
			AddRow("prod-1", "Camp Mug", "camp-mug", "Drinkware", nil, 1, int64(500)))

	w := doJSON(t, r, http.MethodGet, "/products?q=mug&category=Drinkware", nil)

	requireStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(1), body["totalPages"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchProducts_EmptyCatalog(t *testing.T) {
	h, mock, _, _ := newTestHandlers(t)
	r := newTestRouter(h)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT id, name, slug").
		WithArgs(48, 0).
		WillReturnRows(productRows())

	w := doJSON(t, r, http.MethodGet, "/products", nil)

	requireStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	assert.Equal(t, float64(0), body["total"])
	// The pager always shows at least one page.
	assert.Equal(t, float64(1), body["totalPages"])
	assert.Empty(t, body["products"])
}

func TestGetCategories(t *testing.T) {
	h, mock, _, _ := newTestHandlers(t)
	r := newTestRouter(h)

	mock.ExpectQuery("GROUP BY category").
		WillReturnRows(sqlmock.NewRows([]string{"category", "count"}).
			AddRow("Drinkware", 12).
			AddRow("Stationery", 3))

	w := doJSON(t, r, http.MethodGet, "/categories", nil)

	requireStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	categories, ok := body["categories"].([]any)
	assert.True(t, ok)
	assert.Len(t, categories, 2)
	first, _ := categories[0].(map[string]any)
	assert.Equal(t, "Drinkware", first["name"])
	assert.Equal(t, float64(12), first["count"])
}
