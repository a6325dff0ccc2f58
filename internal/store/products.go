// Package store implements the Postgres-backed product repository and price
// history ledger, with a Redis read-through cache for latest prices.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gauravrohinda/trackprices/internal/model"
)

// ErrDuplicateURL is returned by Insert when the user already tracks the URL.
var ErrDuplicateURL = errors.New("product URL already tracked for this user")

// ProductRepository owns the products table. The check orchestrator only
// reads via ListByUser; the mutating operations serve the surrounding
// application's product-management surface.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository constructs a ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Insert registers a product and seeds its first price observation in one
// transaction. Caller must have scraped the page already: p.Name and
// firstPrice come from that first successful extraction, and p.LowPrice must
// be > 0.
func (r *ProductRepository) Insert(ctx context.Context, p *model.Product, firstPrice float64) error {
	if p.LowPrice <= 0 {
		return fmt.Errorf("low price must be > 0, got %v", p.LowPrice)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO products (id, user_id, url, name, low_price, high_price)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, url) DO NOTHING
		 RETURNING created_at`,
		p.ID, p.UserID, p.URL, p.Name, p.LowPrice, p.HighPrice,
	).Scan(&p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicateURL
	}
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO price_history (product_id, price, source, observed_at)
		 VALUES ($1, $2, 'scrape', $3)`,
		p.ID, firstPrice, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("seed first observation: %w", err)
	}

	return tx.Commit(ctx)
}

// ListByUser returns the user's full product set, each joined with its
// latest observed price (nil when no history yet).
func (r *ProductRepository) ListByUser(ctx context.Context, userID string) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, `
SELECT p.id, p.user_id, p.url, p.name, p.low_price, p.high_price, p.created_at,
       (ph.price::double precision) AS latest_price
FROM products p
LEFT JOIN LATERAL (
    SELECT price FROM price_history ph2
    WHERE ph2.product_id = p.id
    ORDER BY observed_at DESC, id DESC LIMIT 1
) ph ON true
WHERE p.user_id = $1
ORDER BY p.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query products for user %s: %w", userID, err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.URL, &p.Name,
			&p.LowPrice, &p.HighPrice, &p.CreatedAt, &p.LatestPrice,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// ListUserIDs returns every user id with at least one tracked product.
// The scheduler uses this to fan batches out across users.
func (r *ProductRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT user_id FROM products`)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// UpdateThresholds mutates a product's alert boundaries. low must stay > 0;
// high == 0 disables the high-price alert.
func (r *ProductRepository) UpdateThresholds(ctx context.Context, productID string, low, high float64) error {
	if low <= 0 {
		return fmt.Errorf("low price must be > 0, got %v", low)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET low_price = $1, high_price = $2 WHERE id = $3`,
		low, high, productID,
	)
	if err != nil {
		return fmt.Errorf("update thresholds: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s not found", productID)
	}
	return nil
}

// Delete removes a product and its entire price history in one transaction.
// Hard delete, not soft: the ledger rows are gone afterwards.
func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM price_history WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s not found", productID)
	}

	return tx.Commit(ctx)
}
