package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/ippcom/goodies-api/internal/models"
)

//
// --- Catalog Handlers ---
//

// catalogPageSize is the fixed page size of the catalog listing.
const catalogPageSize = 48

// ProductSummary is one catalog listing row.
type ProductSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Category     *string `json:"category,omitempty"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
	MinQty       int     `json:"minQty"`
	BasePrice    *int64  `json:"basePrice,omitempty"`
}

// SearchProducts is the handler for GET /v1/products. Supports ?q= name
// search, ?category= filtering and ?page= pagination (48 per page), with an
// exact total count for the pager.
func (h *Handlers) SearchProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	q := strings.TrimSpace(c.Query("q"))
	category := strings.TrimSpace(c.Query("category"))

	where := []string{}
	args := []any{}
	if q != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+q+"%")
	}
	if category != "" {
		where = append(where, "category = ?")
		args = append(args, category)
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := h.DB.QueryRowContext(c, "SELECT COUNT(*) FROM products"+whereClause, args...).Scan(&total); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
		return
	}

	offset := (page - 1) * catalogPageSize
	listArgs := append(append([]any{}, args...), catalogPageSize, offset)
	rows, err := h.DB.QueryContext(c,
		"SELECT id, name, slug, category, thumbnail_url, min_qty, base_price FROM products"+
			whereClause+" ORDER BY name LIMIT ? OFFSET ?", listArgs...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query products"})
		return
	}
	defer rows.Close()

	products := []ProductSummary{}
	for rows.Next() {
		var p ProductSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Category, &p.ThumbnailURL, &p.MinQty, &p.BasePrice); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product"})
			return
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating products"})
		return
	}

	totalPages := (total + catalogPageSize - 1) / catalogPageSize
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"total":      total,
		"page":       page,
		"pageSize":   catalogPageSize,
		"totalPages": totalPages,
	})
}

// GetProduct is the handler for GET /v1/products/:id. The response includes
// the product's images and its quantity-break price tiers.
func (h *Handlers) GetProduct(c *gin.Context) {
	productID := c.Param("id")

	var p models.Product
	err := h.DB.QueryRowContext(c, `
		SELECT id, name, slug, category, description, base_price, min_qty, lead_time_days, thumbnail_url, created_at, updated_at
		FROM products
		WHERE id = ?`, productID).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Category, &p.Description, &p.BasePrice,
		&p.MinQty, &p.LeadTimeDays, &p.ThumbnailURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	imgRows, err := h.DB.QueryContext(c,
		"SELECT id, product_id, url, position FROM product_images WHERE product_id = ? ORDER BY position ASC", p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch images"})
		return
	}
	defer imgRows.Close()
	for imgRows.Next() {
		var img models.ProductImage
		if err := imgRows.Scan(&img.ID, &img.ProductID, &img.URL, &img.Position); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan image"})
			return
		}
		p.Images = append(p.Images, img)
	}
	if err := imgRows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating images"})
		return
	}

	priceRows, err := h.DB.QueryContext(c,
		"SELECT id, variant_sku, qty_break, unit_price FROM prices WHERE product_id = ? ORDER BY variant_sku, qty_break", p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prices"})
		return
	}
	defer priceRows.Close()
	for priceRows.Next() {
		var tier models.PriceTier
		if err := priceRows.Scan(&tier.ID, &tier.VariantSKU, &tier.QtyBreak, &tier.UnitPrice); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan price tier"})
			return
		}
		p.Prices = append(p.Prices, tier)
	}
	if err := priceRows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating price tiers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": p})
}

// CategoryCount is one row of the categories listing.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GetCategories is the handler for GET /v1/categories: distinct category
// names with their product counts, blanks skipped.
func (h *Handlers) GetCategories(c *gin.Context) {
	rows, err := h.DB.QueryContext(c, `
		SELECT category, COUNT(*)
		FROM products
		WHERE category IS NOT NULL AND TRIM(category) <> ''
		GROUP BY category
		ORDER BY category ASC`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	defer rows.Close()

	categories := []CategoryCount{}
	for rows.Next() {
		var cat CategoryCount
		if err := rows.Scan(&cat.Name, &cat.Count); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan category"})
			return
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateProductInput is the body of POST /v1/products (admin only).
// BasePrice is in minor units; nil means "price on request".
type CreateProductInput struct {
	Name         string  `json:"name" binding:"required,notblank"`
	Category     *string `json:"category"`
	Description  *string `json:"description"`
	BasePrice    *int64  `json:"base_price" binding:"omitempty,gte=0"`
	MinQty       int     `json:"min_qty" binding:"omitempty,gte=1"`
	LeadTimeDays *int    `json:"lead_time_days" binding:"omitempty,gte=0"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

// CreateProduct is the handler for POST /v1/products.
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if input.MinQty == 0 {
		input.MinQty = 1
	}

	productID := uuid.NewString()
	now := time.Now()
	_, err := h.DB.ExecContext(c, `
		INSERT INTO products (id, name, slug, category, description, base_price, min_qty, lead_time_days, thumbnail_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		productID, input.Name, slug.Make(input.Name), input.Category, input.Description,
		input.BasePrice, input.MinQty, input.LeadTimeDays, input.ThumbnailURL, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": productID, "slug": slug.Make(input.Name)})
}
