package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"vintagefeed/internal/model"
)

type squarespaceResponse struct {
	Items []squarespaceItem `json:"items"`
}

type squarespaceItem struct {
	Title    string               `json:"title"`
	FullURL  string               `json:"fullUrl"`
	AssetURL string               `json:"assetUrl"`
	Excerpt  string               `json:"excerpt"`
	Body     string               `json:"body"`
	Tags     []string             `json:"tags"`
	Variants []squarespaceVariant `json:"variants"`
	Items    []struct {
		AssetURL string `json:"assetUrl"`
	} `json:"items"`
	StructuredContent *struct {
		Variants []squarespaceVariant `json:"variants"`
	} `json:"structuredContent"`
}

// Prices are in cents.
type squarespaceVariant struct {
	Price      flexNumber `json:"price"`
	SalePrice  flexNumber `json:"salePrice"`
	OnSale     bool       `json:"onSale"`
	Unlimited  *bool      `json:"unlimited"`
	QtyInStock *int       `json:"qtyInStock"`
}

func (it squarespaceItem) allVariants() []squarespaceVariant {
	if len(it.Variants) > 0 {
		return it.Variants
	}
	if it.StructuredContent != nil {
		return it.StructuredContent.Variants
	}
	return nil
}

// Squarespace reads a commerce page through its ?format=json rendering.
type Squarespace struct {
	store   model.StoreConfig
	opts    Options
	shopURL string
	baseURL string
}

func NewSquarespace(store model.StoreConfig, opts Options) (*Squarespace, error) {
	u, err := url.Parse(strings.TrimSpace(store.ShopURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("store %q: invalid shop_url %q", store.Name, store.ShopURL)
	}
	return &Squarespace{
		store:   store,
		opts:    opts.withDefaults(),
		shopURL: u.String(),
		baseURL: u.Scheme + "://" + u.Host,
	}, nil
}

func (s *Squarespace) Name() string { return "squarespace" }

func (s *Squarespace) Fetch(ctx context.Context) (*FetchResult, error) {
	endpoint := s.feedURL()
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", endpoint, err)
	}

	raw, err := do(ctx, s.opts, s.Name(), req)
	if err != nil {
		return nil, err
	}

	var body squarespaceResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &ParseError{Source: s.Name(), URL: endpoint, Err: err}
	}

	res := &FetchResult{}
	for _, it := range body.Items {
		price := squarespacePrice(it)
		if price == nil || *price <= 0 || *price > maxListingPrice {
			continue
		}
		if squarespaceSoldOut(it) {
			res.Skipped++
			continue
		}
		res.Listings = append(res.Listings, s.toListing(it, price))
	}

	s.opts.Logger.Debug("squarespace feed",
		zap.String("store", s.store.Name),
		zap.Int("items", len(body.Items)),
		zap.Int("listings", len(res.Listings)))
	return res, nil
}

func (s *Squarespace) feedURL() string {
	u, _ := url.Parse(s.shopURL)
	q := u.Query()
	q.Set("format", "json")
	u.RawQuery = q.Encode()
	return u.String()
}

// squarespacePrice reads the first variant: salePrice when on sale, else price, in dollars.
func squarespacePrice(it squarespaceItem) *float64 {
	variants := it.allVariants()
	if len(variants) == 0 {
		return nil
	}
	v := variants[0]
	cents := v.Price.Value
	if v.OnSale {
		cents = v.SalePrice.Value
	}
	if cents == nil {
		return nil
	}
	dollars := *cents / 100
	return &dollars
}

func (s *Squarespace) toListing(it squarespaceItem, price *float64) model.RawListing {
	srcs := make([]string, 0, len(it.Items)+1)
	for _, img := range it.Items {
		srcs = append(srcs, img.AssetURL)
	}
	srcs = append(srcs, it.AssetURL)
	images := dedupe(srcs)

	link := ""
	if it.FullURL != "" {
		link = s.baseURL + it.FullURL
		if strings.HasPrefix(it.FullURL, "http://") || strings.HasPrefix(it.FullURL, "https://") {
			link = it.FullURL
		}
	}

	desc := it.Excerpt
	if strings.TrimSpace(desc) == "" {
		desc = it.Body
	}

	return model.RawListing{
		Title:       strings.TrimSpace(it.Title),
		Price:       price,
		Currency:    model.DefaultCurrency,
		Image:       firstOrEmpty(images),
		Images:      images,
		ExternalURL: link,
		Description: desc,
	}
}
