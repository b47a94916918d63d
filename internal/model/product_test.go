package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Dolly's Vintage":        "dolly-s-vintage",
		"  The Closet -- NYC  ":  "the-closet-nyc",
		"ReSale & Co.":           "resale-co",
		"already-a-slug":         "already-a-slug",
		"!!!":                    "",
		"Second Hand Rose 1972 ": "second-hand-rose-1972",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestStoreConfig_StoreSlugAndValidate(t *testing.T) {
	c := StoreConfig{Type: StoreShopify, Name: "Golden Age Vintage", Domain: "goldenage.myshopify.com"}
	assert.Equal(t, "golden-age-vintage", c.StoreSlug())
	assert.NoError(t, c.Validate())

	c.Slug = "gav"
	assert.Equal(t, "gav", c.StoreSlug())

	assert.Error(t, StoreConfig{Type: StoreShopify, Name: "x"}.Validate())
	assert.Error(t, StoreConfig{Type: StoreSquarespace, Name: "x"}.Validate())
	assert.Error(t, StoreConfig{Type: StoreRSS, Name: "x"}.Validate())
	assert.Error(t, StoreConfig{Type: "etsy", Name: "x"}.Validate())
	assert.Error(t, StoreConfig{Type: StoreRSS, RSSURL: "https://a/feed"}.Validate())
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 95.5, RoundCents(95.5))
	assert.Equal(t, 12.35, RoundCents(12.345000001))
	assert.Equal(t, 0.0, RoundCents(0.004))
}
