// Package crawler fetches partner store feeds and normalises them into
// model.RawListing records.
//
// Each adapter only excludes a listing for availability when its source
// says so explicitly; missing or ambiguous stock data means "available".
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"vintagefeed/internal/model"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "vintagefeed-ingest/1.0"
	maxBodyBytes     = 32 << 20
)

// FetchResult is the output of one adapter run. Skipped counts listings left
// out because they were classified sold out, nothing else.
type FetchResult struct {
	Listings []model.RawListing
	Skipped  int
}

// Source is one store feed.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*FetchResult, error)
}

type Options struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: o.Timeout}
	}
	if strings.TrimSpace(o.UserAgent) == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// NewSource picks the adapter for a configured store.
func NewSource(cfg model.StoreConfig, opts Options) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case model.StoreShopify:
		if strings.TrimSpace(cfg.AccessToken) != "" {
			return NewShopifyGraphQL(cfg, opts), nil
		}
		return NewShopifyPublic(cfg, opts), nil
	case model.StoreSquarespace:
		return NewSquarespace(cfg, opts)
	case model.StoreRSS:
		return NewRSS(cfg, opts), nil
	}
	return nil, fmt.Errorf("unsupported store type %q", cfg.Type)
}

// ErrUseGraphQL is returned when a store refuses its public products feed.
var ErrUseGraphQL = errors.New("public products feed refused; configure a storefront access token")

// FetchError is a transport failure or a non-2xx response.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: fetch %s: status %d", e.Source, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: fetch %s: %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means the payload arrived but could not be decoded.
type ParseError struct {
	Source string
	URL    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse %s: %v", e.Source, e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// APIError carries a GraphQL errors array from an otherwise successful response.
type APIError struct {
	Source   string
	Messages []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: api error: %s", e.Source, strings.Join(e.Messages, "; "))
}

// do sends req and returns the body of a 2xx response.
func do(ctx context.Context, opts Options, source string, req *http.Request) ([]byte, error) {
	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", opts.UserAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	url := req.URL.String()

	resp, err := opts.Client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			opts.Logger.Warn("close response body", zap.String("url", url), zap.Error(closeErr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{Source: source, URL: url, StatusCode: resp.StatusCode}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: err}
	}
	return b, nil
}

// storeBaseURL accepts "shop.example.com" or a full "https://..." origin.
func storeBaseURL(domain string) string {
	d := strings.TrimRight(strings.TrimSpace(domain), "/")
	if strings.HasPrefix(d, "http://") || strings.HasPrefix(d, "https://") {
		return d
	}
	return "https://" + d
}

// dedupe keeps the first occurrence of every non-empty string.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func firstOrEmpty(in []string) string {
	if len(in) == 0 {
		return ""
	}
	return in[0]
}

// maxListingPrice is the largest price the catalog column holds (NUMERIC(12,2)).
const maxListingPrice = 9_999_999_999.99

// syncable reports whether a listing has a title and a price the catalog
// column can hold.
func syncable(l model.RawListing) bool {
	if l.Price == nil || strings.TrimSpace(l.Title) == "" {
		return false
	}
	p := *l.Price
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0 && p <= maxListingPrice
}

// FilterPriced drops listings that cannot be synced: no title, or no valid price.
func FilterPriced(listings []model.RawListing) []model.RawListing {
	out := make([]model.RawListing, 0, len(listings))
	for _, l := range listings {
		if !syncable(l) {
			continue
		}
		if l.Currency == "" {
			l.Currency = model.DefaultCurrency
		}
		out = append(out, l)
	}
	return out
}
