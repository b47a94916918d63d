package crawler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vintagefeed/internal/model"
)

func TestNewSource_picksAdapter(t *testing.T) {
	tests := []struct {
		cfg  model.StoreConfig
		want string
	}{
		{model.StoreConfig{Type: model.StoreShopify, Name: "a", Domain: "a.test", AccessToken: "tok"}, "shopify-graphql"},
		{model.StoreConfig{Type: model.StoreShopify, Name: "a", Domain: "a.test"}, "shopify-public"},
		{model.StoreConfig{Type: model.StoreSquarespace, Name: "a", ShopURL: "https://a.test/shop"}, "squarespace"},
		{model.StoreConfig{Type: model.StoreRSS, Name: "a", RSSURL: "https://a.test/feed"}, "rss"},
	}
	for _, tt := range tests {
		src, err := NewSource(tt.cfg, Options{})
		require.NoError(t, err)
		assert.Equal(t, tt.want, src.Name())
	}

	_, err := NewSource(model.StoreConfig{Type: "wix", Name: "a"}, Options{})
	assert.Error(t, err)
}

func TestFilterPriced(t *testing.T) {
	in := []model.RawListing{
		{Title: "a", Price: model.PriceOf(10)},
		{Title: "b"},
		{Title: "  ", Price: model.PriceOf(5)},
		{Title: "c", Price: model.PriceOf(0), Currency: "EUR"},
	}
	out := FilterPriced(in)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Title)
	assert.Equal(t, "USD", out[0].Currency)
	assert.Equal(t, "EUR", out[1].Currency)
}

func TestFilterPriced_dropsPricesTheCatalogCannotHold(t *testing.T) {
	in := []model.RawListing{
		{Title: "negative", Price: model.PriceOf(-5)},
		{Title: "nan", Price: model.PriceOf(math.NaN())},
		{Title: "inf", Price: model.PriceOf(math.Inf(1))},
		{Title: "too large", Price: model.PriceOf(1e10)},
		{Title: "ceiling", Price: model.PriceOf(maxListingPrice)},
		{Title: "flap", Price: model.PriceOf(2400)},
	}
	out := FilterPriced(in)
	require.Len(t, out, 2)
	assert.Equal(t, "ceiling", out[0].Title)
	assert.Equal(t, "flap", out[1].Title)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, dedupe([]string{"a", "", "b", "a", " c ", "b"}))
	assert.Empty(t, dedupe(nil))
}

func TestStoreBaseURL(t *testing.T) {
	assert.Equal(t, "https://shop.test", storeBaseURL("shop.test/"))
	assert.Equal(t, "http://127.0.0.1:8080", storeBaseURL("http://127.0.0.1:8080"))
}
