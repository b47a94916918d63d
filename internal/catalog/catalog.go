// Package catalog keeps each store's persisted product set equal to its
// latest feed.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"vintagefeed/internal/classify"
	"vintagefeed/internal/lock"
	"vintagefeed/internal/model"
	"vintagefeed/internal/repository"
)

type Service struct {
	Repo   repository.CatalogRepository
	Locker lock.Locker
	Log    *zap.Logger
	Now    func() time.Time
}

func NewService(repo repository.CatalogRepository, locker lock.Locker, log *zap.Logger) *Service {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Repo: repo, Locker: locker, Log: log, Now: time.Now}
}

// SyncProducts upserts every listing on (storeSlug, title) and then deletes
// the store's rows whose title is absent from listings. It returns the number
// of listings processed. Listings without a title or price must be filtered
// out first. Prices are stored rounded to cents on every backend.
func (s *Service) SyncProducts(ctx context.Context, storeSlug, storeName string, listings []model.RawListing) (int, error) {
	if strings.TrimSpace(storeSlug) == "" {
		return 0, errors.New("store slug is required")
	}
	for i, l := range listings {
		if strings.TrimSpace(l.Title) == "" {
			return 0, fmt.Errorf("listing %d has no title", i)
		}
		if l.Price == nil {
			return 0, fmt.Errorf("listing %d (%q) has no price", i, l.Title)
		}
	}

	release, err := s.Locker.Lock(ctx, storeSlug)
	if err != nil {
		return 0, fmt.Errorf("lock store %s: %w", storeSlug, err)
	}
	defer release()

	now := s.Now().UTC()
	titles := make([]string, 0, len(listings))
	var removed int64

	err = s.Repo.WithinStoreTx(ctx, storeSlug, func(tx repository.CatalogTx) error {
		for _, l := range listings {
			if err := tx.Upsert(ctx, toProduct(storeSlug, storeName, l, now)); err != nil {
				return err
			}
			titles = append(titles, l.Title)
		}
		n, err := tx.DeleteMissing(ctx, storeSlug, titles)
		if err != nil {
			return err
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sync store %s: %w", storeSlug, err)
	}

	s.Log.Info("catalog synced",
		zap.String("slug", storeSlug),
		zap.Int("products", len(listings)),
		zap.Int64("removed", removed))
	return len(listings), nil
}

func toProduct(storeSlug, storeName string, l model.RawListing, now time.Time) model.Product {
	currency := l.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}
	image := l.Image
	if image == "" && len(l.Images) > 0 {
		image = l.Images[0]
	}
	return model.Product{
		StoreSlug:   storeSlug,
		StoreName:   storeName,
		Title:       l.Title,
		Price:       model.RoundCents(*l.Price),
		Currency:    currency,
		Image:       image,
		Images:      l.Images,
		ExternalURL: l.ExternalURL,
		Description: l.Description,
		SyncedAt:    now,
	}
}

// ClassifiedProduct is a catalog row with its read-time classification.
type ClassifiedProduct struct {
	model.Product
	Category classify.Category `json:"category"`
	Brand    string            `json:"brand,omitempty"`
}

func Classify(p model.Product) ClassifiedProduct {
	return ClassifiedProduct{
		Product:  p,
		Category: classify.CategoryFromTitle(p.Title),
		Brand:    classify.BrandSlugFromTitle(p.Title),
	}
}

// ListClassified reads a store's catalog and classifies every row.
func (s *Service) ListClassified(ctx context.Context, storeSlug string) ([]ClassifiedProduct, error) {
	products, err := s.Repo.ListByStore(ctx, storeSlug)
	if err != nil {
		return nil, err
	}
	out := make([]ClassifiedProduct, 0, len(products))
	for _, p := range products {
		out = append(out, Classify(p))
	}
	return out, nil
}
