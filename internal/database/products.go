package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/Maksimka7878/fixnew-importer/internal/models"
)

// ProductRepo persists imported products, keyed by the source site's
// product id.
type ProductRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewProductRepo(db *DB, logger *slog.Logger) *ProductRepo {
	return &ProductRepo{
		db:     db,
		logger: logger.With("component", "product_repo"),
	}
}

// Upsert writes products, replacing any previous row with the same source
// id. Returns the number of rows written.
func (r *ProductRepo) Upsert(ctx context.Context, products []models.ScrapedProduct) (int, error) {
	const query = `
		INSERT INTO imported_products
			(source_id, source_url, title, description, price, old_price, images, specs, in_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (source_id) DO UPDATE SET
			source_url  = EXCLUDED.source_url,
			title       = EXCLUDED.title,
			description = EXCLUDED.description,
			price       = EXCLUDED.price,
			old_price   = EXCLUDED.old_price,
			images      = EXCLUDED.images,
			specs       = EXCLUDED.specs,
			in_stock    = EXCLUDED.in_stock,
			updated_at  = now()
	`

	batch := &pgx.Batch{}
	for _, p := range products {
		images, err := json.Marshal(p.Images)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal images for %s: %w", p.SourceID, err)
		}
		specs, err := json.Marshal(p.Specs)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal specs for %s: %w", p.SourceID, err)
		}
		batch.Queue(query,
			p.SourceID, p.SourceURL, p.Title, p.Description,
			p.Price, p.OldPrice, images, specs, p.InStock)
	}

	results := r.db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for range products {
		if _, err := results.Exec(); err != nil {
			return written, fmt.Errorf("failed to upsert product: %w", err)
		}
		written++
	}

	r.logger.Info("products upserted", "count", written)
	return written, nil
}

// KnownSourceIDs returns every persisted source id, used to seed the
// orchestrator's dedup set so re-imports are incremental.
func (r *ProductRepo) KnownSourceIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT source_id FROM imported_products`)
	if err != nil {
		return nil, fmt.Errorf("failed to query known ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
