package pricing

import (
	"context"
	"database/sql"
)

// Querier is the subset of *sql.DB / *sql.Tx the resolver needs, so price
// lookups can run inside a caller's transaction.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Resolver resolves the unit price for a product/variant at a given
// quantity. Every call re-queries the price tables; there is no cache.
type Resolver struct {
	DB Querier
}

func NewResolver(db Querier) *Resolver {
	return &Resolver{DB: db}
}

// ResolveUnitPrice returns the applicable unit price in minor units.
//
// With a variant SKU, the best-matching quantity break is the row with the
// highest qty_break that is still <= the requested quantity. Without a SKU,
// or when no tier matches, the product's flat base price applies. When
// neither exists the result is 0, which callers must treat as "price on
// request" rather than a free item. Absence is never an error; only a
// backend failure is.
func (r *Resolver) ResolveUnitPrice(ctx context.Context, productID string, sku *string, qty int) (int64, error) {
	return r.resolveOn(ctx, r.DB, productID, sku, qty)
}

// ResolveUnitPriceTx is ResolveUnitPrice running on an explicit transaction.
func (r *Resolver) ResolveUnitPriceTx(ctx context.Context, tx Querier, productID string, sku *string, qty int) (int64, error) {
	return r.resolveOn(ctx, tx, productID, sku, qty)
}

func (r *Resolver) resolveOn(ctx context.Context, q Querier, productID string, sku *string, qty int) (int64, error) {
	if sku != nil && *sku != "" {
		var unitPrice int64
		err := q.QueryRowContext(ctx, `
			SELECT unit_price
			FROM prices
			WHERE variant_sku = ? AND qty_break <= ?
			ORDER BY qty_break DESC, unit_price ASC
			LIMIT 1`,
			*sku, qty).Scan(&unitPrice)
		if err == nil {
			return unitPrice, nil
		}
		if err != sql.ErrNoRows {
			return 0, err
		}
		// No matching tier: fall through to the base price.
	}

	var basePrice sql.NullInt64
	err := q.QueryRowContext(ctx,
		"SELECT base_price FROM products WHERE id = ?", productID).Scan(&basePrice)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	if basePrice.Valid {
		return basePrice.Int64, nil
	}
	return 0, nil
}
