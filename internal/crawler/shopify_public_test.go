package crawler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vintagefeed/internal/model"
)

func TestShopifyPublic_Fetch_mapsAndClassifies(t *testing.T) {
	t.Parallel()

	payload := `{"products":[
	  {"id":1,"title":"Vintage Denim Jacket","handle":"vintage-denim-jacket","body_html":"<p>Great</p>",
	   "variants":[{"price":"120.00","available":true},{"price":"95.50","available":false}],
	   "images":[{"src":"https://cdn.test/a.jpg"},{"src":"https://cdn.test/b.jpg"},{"src":"https://cdn.test/a.jpg"}]},
	  {"id":2,"title":"Mixed Variants Skirt","handle":"skirt","available":null,
	   "variants":[{"price":"40.00","available":true},{"price":"40.00","available":false}]},
	  {"id":3,"title":"Gone Coat","handle":"coat","available":false,"variants":[{"price":"300.00","available":true}]},
	  {"id":4,"title":"All Gone Boots","handle":"boots","variants":[{"price":"80.00","available":false}]},
	  {"id":5,"title":"No Variant Data Hat","handle":"hat"},
	  {"id":6,"title":"Gone Unpriced Belt","handle":"belt","available":false},
	  {"id":7,"title":"Negative Gloves","handle":"gloves","variants":[{"price":"-5.00","available":true}]}
	]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products.json", r.URL.Path)
		assert.Equal(t, "250", r.URL.Query().Get("limit"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	res, err := NewShopifyPublic(model.StoreConfig{Name: "P", Domain: srv.URL}, Options{Client: srv.Client()}).Fetch(t.Context())
	require.NoError(t, err)

	// unpriced or invalid items are dropped before the sold-out check
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Listings, 2)

	jacket := res.Listings[0]
	require.NotNil(t, jacket.Price)
	assert.InDelta(t, 95.50, *jacket.Price, 1e-9)
	assert.Equal(t, []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}, jacket.Images)
	assert.Equal(t, srv.URL+"/products/vintage-denim-jacket", jacket.ExternalURL)
	assert.Equal(t, "<p>Great</p>", jacket.Description)

	assert.Equal(t, "Mixed Variants Skirt", res.Listings[1].Title)
}

func TestShopifyPublic_Fetch_paginates(t *testing.T) {
	t.Parallel()

	var pages []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pages = append(pages, page)
		n := 3
		if page == 2 {
			n = 1
		}
		products := make([]map[string]any, n)
		for i := range products {
			products[i] = map[string]any{
				"title":    fmt.Sprintf("p%d-%d", page, i),
				"handle":   fmt.Sprintf("p%d-%d", page, i),
				"variants": []any{map[string]any{"price": "10.00"}},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"products": products})
	}))
	defer srv.Close()

	src := NewShopifyPublic(model.StoreConfig{Name: "P", Domain: srv.URL}, Options{Client: srv.Client()})
	src.pageSize = 3
	res, err := src.Fetch(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, pages)
	assert.Len(t, res.Listings, 4)
}

func TestShopifyPublic_Fetch_capAndEmptyPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "3" {
			_, _ = w.Write([]byte(`{"products":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"products":[{"title":"a","variants":[{"price":1}]},{"title":"b","variants":[{"price":2}]}]}`))
	}))
	defer srv.Close()

	src := NewShopifyPublic(model.StoreConfig{Name: "P", Domain: srv.URL}, Options{Client: srv.Client()})
	src.pageSize = 2
	res, err := src.Fetch(t.Context())
	require.NoError(t, err)
	assert.Len(t, res.Listings, 4)

	capped := NewShopifyPublic(model.StoreConfig{Name: "P", Domain: srv.URL, MaxProducts: 3}, Options{Client: srv.Client()})
	capped.pageSize = 2
	res, err = capped.Fetch(t.Context())
	require.NoError(t, err)
	assert.Len(t, res.Listings, 3)
}

func TestShopifyPublic_Fetch_unauthorizedSuggestsGraphQL(t *testing.T) {
	t.Parallel()

	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		_, err := NewShopifyPublic(model.StoreConfig{Name: "P", Domain: srv.URL}, Options{Client: srv.Client()}).Fetch(t.Context())
		assert.ErrorIs(t, err, ErrUseGraphQL)
		var fe *FetchError
		assert.True(t, errors.As(err, &fe))
		srv.Close()
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	_, err := NewShopifyPublic(model.StoreConfig{Name: "P", Domain: srv.URL}, Options{Client: srv.Client()}).Fetch(t.Context())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUseGraphQL)
}
