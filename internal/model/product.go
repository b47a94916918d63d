package model

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// RawListing is a store listing after feed normalisation, before persistence.
type RawListing struct {
	Title       string
	Price       *float64 // nil means the listing must not be synced
	Currency    string
	Image       string
	Images      []string
	ExternalURL string
	Description string
}

// Product is a persisted catalog row.
type Product struct {
	ID          int64     `json:"id"`
	StoreSlug   string    `json:"store_slug"`
	StoreName   string    `json:"store_name"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Image       string    `json:"image,omitempty"`
	Images      []string  `json:"images,omitempty"`
	ExternalURL string    `json:"external_url,omitempty"`
	Description string    `json:"description,omitempty"`
	SyncedAt    time.Time `json:"synced_at"`
}

const DefaultCurrency = "USD"

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the store slug used as the catalog key space.
func Slugify(name string) string {
	s := nonSlugRun.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// PriceOf returns a pointer for RawListing.Price.
func PriceOf(v float64) *float64 {
	return &v
}

// RoundCents rounds a dollar amount to whole cents, matching the Postgres
// NUMERIC(12,2) price column.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
