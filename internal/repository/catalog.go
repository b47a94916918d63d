package repository

import (
	"context"
	"encoding/json"
	"strings"

	"vintagefeed/internal/model"
)

// CatalogTx is the write surface available while a store sync holds its transaction.
type CatalogTx interface {
	// Upsert inserts the product or overwrites the mutable fields of the row
	// with the same (store_slug, title), keeping its id.
	Upsert(ctx context.Context, p model.Product) error
	// DeleteMissing removes rows of the store whose title is not in keep.
	// An empty keep removes every row of the store.
	DeleteMissing(ctx context.Context, storeSlug string, keep []string) (int64, error)
}

type CatalogRepository interface {
	// WithinStoreTx runs fn in one transaction serialised against other
	// syncs of the same store.
	WithinStoreTx(ctx context.Context, storeSlug string, fn func(CatalogTx) error) error
	ListByStore(ctx context.Context, storeSlug string) ([]model.Product, error)
}

func encodeImages(images []string) any {
	if len(images) == 0 {
		return nil
	}
	b, err := json.Marshal(images)
	if err != nil {
		return nil
	}
	return string(b)
}

func decodeImages(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// uniqueTitles returns keep without duplicates so the delete statement stays small.
func uniqueTitles(keep []string) []string {
	seen := make(map[string]struct{}, len(keep))
	out := make([]string, 0, len(keep))
	for _, t := range keep {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
