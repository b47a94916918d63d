package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"vintagefeed/internal/model"
)

const (
	publicPageSize        = 250
	defaultPublicMaxItems = 2500
)

// ShopifyPublic reads the unauthenticated /products.json feed.
type ShopifyPublic struct {
	store       model.StoreConfig
	opts        Options
	baseURL     string
	pageSize    int
	maxProducts int
}

func NewShopifyPublic(store model.StoreConfig, opts Options) *ShopifyPublic {
	limit := store.MaxProducts
	if limit <= 0 {
		limit = defaultPublicMaxItems
	}
	return &ShopifyPublic{
		store:       store,
		opts:        opts.withDefaults(),
		baseURL:     storeBaseURL(store.Domain),
		pageSize:    publicPageSize,
		maxProducts: limit,
	}
}

func (s *ShopifyPublic) Name() string { return "shopify-public" }

func (s *ShopifyPublic) Fetch(ctx context.Context) (*FetchResult, error) {
	res := &FetchResult{}
	fetched := 0

	for page := 1; fetched < s.maxProducts; page++ {
		products, err := s.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}

		for _, p := range products {
			if fetched >= s.maxProducts {
				break
			}
			fetched++
			l := s.toListing(p)
			if !syncable(l) {
				continue
			}
			if publicSoldOut(p) {
				res.Skipped++
				continue
			}
			res.Listings = append(res.Listings, l)
		}

		s.opts.Logger.Debug("shopify public page",
			zap.String("store", s.store.Name),
			zap.Int("page", page),
			zap.Int("products", len(products)))

		if len(products) < s.pageSize {
			break
		}
	}
	return res, nil
}

func (s *ShopifyPublic) fetchPage(ctx context.Context, page int) ([]publicProduct, error) {
	url := fmt.Sprintf("%s/products.json?limit=%d&page=%d", s.baseURL, s.pageSize, page)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	raw, err := do(ctx, s.opts, s.Name(), req)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) && (fe.StatusCode == http.StatusUnauthorized || fe.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %w", ErrUseGraphQL, err)
		}
		return nil, err
	}

	var body publicProductsResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &ParseError{Source: s.Name(), URL: url, Err: err}
	}
	return body.Products, nil
}

func (s *ShopifyPublic) toListing(p publicProduct) model.RawListing {
	srcs := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		srcs = append(srcs, img.Src)
	}
	images := dedupe(srcs)

	var price *float64
	for _, v := range p.Variants {
		if v.Price.Value == nil {
			continue
		}
		if price == nil || *v.Price.Value < *price {
			price = v.Price.Value
		}
	}

	link := ""
	if p.Handle != "" {
		link = s.baseURL + "/products/" + p.Handle
	}

	return model.RawListing{
		Title:       strings.TrimSpace(p.Title),
		Price:       price,
		Currency:    model.DefaultCurrency,
		Image:       firstOrEmpty(images),
		Images:      images,
		ExternalURL: link,
		Description: p.BodyHTML,
	}
}
