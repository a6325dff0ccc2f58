package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gauravrohinda/trackprices/internal/logger"
	"github.com/gauravrohinda/trackprices/internal/model"
)

// latestTTL bounds staleness of the latest-price cache if an entry outlives
// its product.
const latestTTL = 24 * time.Hour

func latestKey(productID string) string {
	return "price:latest:" + productID
}

// HistoryStore is the append-only ledger of observed prices. Postgres is the
// source of truth; Redis, when present, is a read-through cache for Latest.
// Concurrent appends across distinct products are safe.
type HistoryStore struct {
	pool *pgxpool.Pool
	rdb  *redis.Client // nil disables the latest-price cache
}

// NewHistoryStore constructs a HistoryStore. rdb may be nil.
func NewHistoryStore(pool *pgxpool.Pool, rdb *redis.Client) *HistoryStore {
	return &HistoryStore{pool: pool, rdb: rdb}
}

// Append records one observation. Rows are never edited or deduplicated.
func (s *HistoryStore) Append(ctx context.Context, productID string, price float64, observedAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO price_history (product_id, price, source, observed_at)
		 VALUES ($1, $2, 'scrape', $3)`,
		productID, price, observedAt,
	)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, latestKey(productID), price, latestTTL).Err(); err != nil {
			logger.Log.Warn("latest-price cache set failed",
				zap.String("product_id", productID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// Latest returns the most recently appended price for productID, or nil when
// the product has no history yet.
func (s *HistoryStore) Latest(ctx context.Context, productID string) (*float64, error) {
	if s.rdb != nil {
		val, err := s.rdb.Get(ctx, latestKey(productID)).Result()
		if err == nil {
			if price, perr := strconv.ParseFloat(val, 64); perr == nil {
				return &price, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("latest-price cache get failed",
				zap.String("product_id", productID),
				zap.Error(err),
			)
		}
	}

	var price float64
	err := s.pool.QueryRow(ctx,
		`SELECT (price::double precision) FROM price_history
		 WHERE product_id = $1
		 ORDER BY observed_at DESC, id DESC LIMIT 1`,
		productID,
	).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest price: %w", err)
	}
	return &price, nil
}

// History returns a product's full ledger, newest first.
func (s *HistoryStore) History(ctx context.Context, productID string) ([]model.PriceObservation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, product_id, (price::double precision), source, observed_at
		 FROM price_history
		 WHERE product_id = $1
		 ORDER BY observed_at DESC, id DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.PriceObservation
	for rows.Next() {
		var o model.PriceObservation
		if err := rows.Scan(&o.ID, &o.ProductID, &o.Price, &o.Source, &o.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		out = append(out, o)
	}

	return out, rows.Err()
}

// DeleteAll purges a product's ledger and evicts its cache entry.
func (s *HistoryStore) DeleteAll(ctx context.Context, productID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM price_history WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, latestKey(productID)).Err(); err != nil {
			logger.Log.Warn("latest-price cache del failed",
				zap.String("product_id", productID),
				zap.Error(err),
			)
		}
	}

	return nil
}
