package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ippcom/goodies-api/internal/auth"
)

func authedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/whoami", func(c *gin.Context) {
		userID, _ := c.Get("userID")
		c.JSON(http.StatusOK, gin.H{"userID": userID})
	})
	return r
}

func get(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := auth.GenerateToken(42)
	require.NoError(t, err)

	w := get(authedRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"bad token", "Bearer not-a-token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(authedRouter(), tc.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newAdminRouter := func(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		r := gin.New()
		r.Use(func(c *gin.Context) { c.Set("userID", int64(42)) })
		r.Use(AdminMiddleware(db))
		r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r, mock
	}

	t.Run("admin passes", func(t *testing.T) {
		r, mock := newAdminRouter(t)
		mock.ExpectQuery("SELECT role FROM users").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("customer forbidden", func(t *testing.T) {
		r, mock := newAdminRouter(t)
		mock.ExpectQuery("SELECT role FROM users").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("customer"))

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
