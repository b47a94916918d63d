package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"vintagefeed/internal/model"
)

// SQLCatalogRepository is the SQLite catalog store used for local runs and
// tests. It takes no database-level lock; callers serialise per store with a
// lock.Locker.
type SQLCatalogRepository struct {
	DB *sqlx.DB
}

func NewSQLCatalogRepository(db *sqlx.DB) *SQLCatalogRepository {
	return &SQLCatalogRepository{DB: db}
}

type productRow struct {
	ID          int64     `db:"id"`
	StoreSlug   string    `db:"store_slug"`
	StoreName   string    `db:"store_name"`
	Title       string    `db:"title"`
	Price       float64   `db:"price"`
	Currency    string    `db:"currency"`
	Image       string    `db:"image"`
	ImagesJSON  string    `db:"images_json"`
	ExternalURL string    `db:"external_url"`
	Description string    `db:"description"`
	SyncedAt    time.Time `db:"synced_at"`
}

func (r productRow) toModel() model.Product {
	return model.Product{
		ID:          r.ID,
		StoreSlug:   r.StoreSlug,
		StoreName:   r.StoreName,
		Title:       r.Title,
		Price:       r.Price,
		Currency:    r.Currency,
		Image:       r.Image,
		Images:      decodeImages(r.ImagesJSON),
		ExternalURL: r.ExternalURL,
		Description: r.Description,
		SyncedAt:    r.SyncedAt,
	}
}

const sqlUpsertProduct = `
	INSERT INTO products
	(store_slug, store_name, title, price, currency, image, images_json, external_url, description, synced_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (store_slug, title) DO UPDATE SET
		store_name   = excluded.store_name,
		price        = excluded.price,
		currency     = excluded.currency,
		image        = excluded.image,
		images_json  = excluded.images_json,
		external_url = excluded.external_url,
		description  = excluded.description,
		synced_at    = excluded.synced_at
`

func (r *SQLCatalogRepository) WithinStoreTx(ctx context.Context, storeSlug string, fn func(CatalogTx) error) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&sqlCatalogTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog tx: %w", err)
	}
	return nil
}

func (r *SQLCatalogRepository) ListByStore(ctx context.Context, storeSlug string) ([]model.Product, error) {
	var rows []productRow
	err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(`
		SELECT id, store_slug, store_name, title, price, currency,
		       COALESCE(image, '') AS image, COALESCE(images_json, '') AS images_json,
		       COALESCE(external_url, '') AS external_url, COALESCE(description, '') AS description,
		       synced_at
		FROM products
		WHERE store_slug = ?
		ORDER BY id ASC
	`), storeSlug)
	if err != nil {
		return nil, err
	}

	list := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toModel())
	}
	return list, nil
}

type sqlCatalogTx struct {
	tx *sqlx.Tx
}

func (t *sqlCatalogTx) Upsert(ctx context.Context, p model.Product) error {
	_, err := t.tx.ExecContext(ctx, t.tx.Rebind(sqlUpsertProduct),
		p.StoreSlug, p.StoreName, p.Title, p.Price, p.Currency,
		nullIfEmpty(p.Image), encodeImages(p.Images), nullIfEmpty(p.ExternalURL),
		nullIfEmpty(p.Description), p.SyncedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert %q: %w", p.Title, err)
	}
	return nil
}

func (t *sqlCatalogTx) DeleteMissing(ctx context.Context, storeSlug string, keep []string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if len(keep) == 0 {
		res, err = t.tx.ExecContext(ctx, t.tx.Rebind(`DELETE FROM products WHERE store_slug = ?`), storeSlug)
	} else {
		query, args, inErr := sqlx.In(`DELETE FROM products WHERE store_slug = ? AND title NOT IN (?)`, storeSlug, uniqueTitles(keep))
		if inErr != nil {
			return 0, fmt.Errorf("build delete for %s: %w", storeSlug, inErr)
		}
		res, err = t.tx.ExecContext(ctx, t.tx.Rebind(query), args...)
	}
	if err != nil {
		return 0, fmt.Errorf("delete missing products for %s: %w", storeSlug, err)
	}
	return res.RowsAffected()
}
