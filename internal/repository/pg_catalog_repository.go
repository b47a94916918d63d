package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"vintagefeed/internal/model"
)

// PgCatalogRepository stores the catalog in Postgres through a pgx pool.
type PgCatalogRepository struct {
	DB *pgxpool.Pool
}

const pgUpsertProduct = `
	INSERT INTO products
	(store_slug, store_name, title, price, currency, image, images_json, external_url, description, synced_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (store_slug, title) DO UPDATE SET
		store_name   = EXCLUDED.store_name,
		price        = EXCLUDED.price,
		currency     = EXCLUDED.currency,
		image        = EXCLUDED.image,
		images_json  = EXCLUDED.images_json,
		external_url = EXCLUDED.external_url,
		description  = EXCLUDED.description,
		synced_at    = EXCLUDED.synced_at
`

func (r *PgCatalogRepository) WithinStoreTx(ctx context.Context, storeSlug string, fn func(CatalogTx) error) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin catalog tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Released on commit/rollback. Closes the upsert/delete race between
	// two scheduler runs of the same store.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, storeSlug); err != nil {
		return fmt.Errorf("lock store %s: %w", storeSlug, err)
	}

	if err := fn(&pgCatalogTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit catalog tx: %w", err)
	}
	return nil
}

func (r *PgCatalogRepository) ListByStore(ctx context.Context, storeSlug string) ([]model.Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, store_slug, store_name, title, price, currency,
		       COALESCE(image, ''), COALESCE(images_json, ''), COALESCE(external_url, ''),
		       COALESCE(description, ''), synced_at
		FROM products
		WHERE store_slug = $1
		ORDER BY id ASC
	`, storeSlug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Product
	for rows.Next() {
		var p model.Product
		var images string
		if err := rows.Scan(&p.ID, &p.StoreSlug, &p.StoreName, &p.Title, &p.Price, &p.Currency,
			&p.Image, &images, &p.ExternalURL, &p.Description, &p.SyncedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Images = decodeImages(images)
		list = append(list, p)
	}
	return list, rows.Err()
}

type pgCatalogTx struct {
	tx pgx.Tx
}

func (t *pgCatalogTx) Upsert(ctx context.Context, p model.Product) error {
	_, err := t.tx.Exec(ctx, pgUpsertProduct,
		p.StoreSlug, p.StoreName, p.Title, p.Price, p.Currency,
		nullIfEmpty(p.Image), encodeImages(p.Images), nullIfEmpty(p.ExternalURL),
		nullIfEmpty(p.Description), p.SyncedAt)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", p.Title, err)
	}
	return nil
}

func (t *pgCatalogTx) DeleteMissing(ctx context.Context, storeSlug string, keep []string) (int64, error) {
	var (
		tag pgconn.CommandTag
		err error
	)
	if len(keep) == 0 {
		tag, err = t.tx.Exec(ctx, `DELETE FROM products WHERE store_slug = $1`, storeSlug)
	} else {
		tag, err = t.tx.Exec(ctx,
			`DELETE FROM products WHERE store_slug = $1 AND NOT (title = ANY($2))`,
			storeSlug, uniqueTitles(keep))
	}
	if err != nil {
		return 0, fmt.Errorf("delete missing products for %s: %w", storeSlug, err)
	}
	return tag.RowsAffected(), nil
}
