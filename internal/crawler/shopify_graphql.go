package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"vintagefeed/internal/model"
)

const (
	storefrontAPIVersion   = "2024-01"
	graphQLPageSize        = 50
	defaultGraphQLMaxItems = 250
)

const productsQuery = `query Products($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id
        title
        handle
        description
        descriptionHtml
        onlineStoreUrl
        availableForSale
        totalInventory
        priceRange { minVariantPrice { amount currencyCode } }
        images(first: 250) { edges { node { url } } }
      }
    }
  }
}`

// ShopifyGraphQL reads a store through the authenticated Storefront API.
type ShopifyGraphQL struct {
	store       model.StoreConfig
	opts        Options
	endpoint    string
	baseURL     string
	maxProducts int
}

func NewShopifyGraphQL(store model.StoreConfig, opts Options) *ShopifyGraphQL {
	base := storeBaseURL(store.Domain)
	limit := store.MaxProducts
	if limit <= 0 {
		limit = defaultGraphQLMaxItems
	}
	return &ShopifyGraphQL{
		store:       store,
		opts:        opts.withDefaults(),
		endpoint:    fmt.Sprintf("%s/api/%s/graphql.json", base, storefrontAPIVersion),
		baseURL:     base,
		maxProducts: limit,
	}
}

func (s *ShopifyGraphQL) Name() string { return "shopify-graphql" }

func (s *ShopifyGraphQL) Fetch(ctx context.Context) (*FetchResult, error) {
	res := &FetchResult{}
	var after *string
	fetched := 0

	for fetched < s.maxProducts {
		first := min(graphQLPageSize, s.maxProducts-fetched)
		page, err := s.fetchPage(ctx, first, after)
		if err != nil {
			return nil, err
		}

		edges := page.Data.Products.Edges
		for _, e := range edges {
			if fetched >= s.maxProducts {
				break
			}
			fetched++
			l := s.toListing(e.Node)
			if !syncable(l) {
				continue
			}
			if graphQLSoldOut(e.Node) {
				res.Skipped++
				continue
			}
			res.Listings = append(res.Listings, l)
		}

		s.opts.Logger.Debug("shopify graphql page",
			zap.String("store", s.store.Name),
			zap.Int("nodes", len(edges)),
			zap.Int("fetched", fetched))

		info := page.Data.Products.PageInfo
		if !info.HasNextPage || info.EndCursor == "" || len(edges) == 0 {
			break
		}
		cursor := info.EndCursor
		after = &cursor
	}
	return res, nil
}

func (s *ShopifyGraphQL) fetchPage(ctx context.Context, first int, after *string) (*graphQLProductsResponse, error) {
	vars := map[string]any{"first": first}
	if after != nil {
		vars["after"] = *after
	}
	body, err := json.Marshal(graphQLRequest{Query: productsQuery, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", s.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", s.store.AccessToken)

	raw, err := do(ctx, s.opts, s.Name(), req)
	if err != nil {
		return nil, err
	}

	var page graphQLProductsResponse
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, &ParseError{Source: s.Name(), URL: s.endpoint, Err: err}
	}
	if len(page.Errors) > 0 {
		msgs := make([]string, 0, len(page.Errors))
		for _, e := range page.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, &APIError{Source: s.Name(), Messages: msgs}
	}
	return &page, nil
}

func (s *ShopifyGraphQL) toListing(n graphQLProduct) model.RawListing {
	urls := make([]string, 0, len(n.Images.Edges))
	for _, e := range n.Images.Edges {
		urls = append(urls, e.Node.URL)
	}
	images := dedupe(urls)

	currency := strings.TrimSpace(n.PriceRange.MinVariantPrice.CurrencyCode)
	if currency == "" {
		currency = model.DefaultCurrency
	}

	link := n.OnlineStoreURL
	if link == "" && n.Handle != "" {
		link = s.baseURL + "/products/" + n.Handle
	}

	desc := n.DescriptionHTML
	if desc == "" {
		desc = n.Description
	}

	return model.RawListing{
		Title:       strings.TrimSpace(n.Title),
		Price:       parseAmount(n.PriceRange.MinVariantPrice.Amount),
		Currency:    currency,
		Image:       firstOrEmpty(images),
		Images:      images,
		ExternalURL: link,
		Description: desc,
	}
}
