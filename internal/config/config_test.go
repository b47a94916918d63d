package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vintagefeed/internal/model"
)

func writeStores(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stores.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_defaultsAndOverrides(t *testing.T) {
	t.Setenv("WORKER_COUNT", "9")
	t.Setenv("FEED_TIMEOUT", "bogus")
	t.Setenv("SYNC_LOCK_TTL", "90s")
	t.Setenv("METRICS_PORT", "")

	cfg := Load()
	assert.Equal(t, 9, cfg.WorkerCount)
	assert.Equal(t, 20*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 90*time.Second, cfg.SyncLockTTL)
	assert.Equal(t, "9090", cfg.MetricsPort)
}

func TestLoadStores(t *testing.T) {
	t.Setenv("GOLDEN_TOKEN", "shpat_123")
	path := writeStores(t, `
stores:
  - type: shopify
    name: Golden Age & Co
    domain: golden-age.myshopify.com
    access_token: ${GOLDEN_TOKEN}
    max_products: 100
  - type: squarespace
    name: Attic
    slug: the-attic
    shop_url: https://attic.example.com/shop
  - type: rss
    name: Thrift Blog
    rss_url: https://thrift.example.com/feed
`)

	stores, err := LoadStores(path)
	require.NoError(t, err)
	require.Len(t, stores, 3)

	assert.Equal(t, model.StoreShopify, stores[0].Type)
	assert.Equal(t, "golden-age-co", stores[0].Slug)
	assert.Equal(t, "shpat_123", stores[0].AccessToken)
	assert.Equal(t, 100, stores[0].MaxProducts)
	assert.Equal(t, "the-attic", stores[1].Slug)
	assert.Equal(t, "https://thrift.example.com/feed", stores[2].RSSURL)

	s, ok := FindStore(stores, "the-attic")
	assert.True(t, ok)
	assert.Equal(t, "Attic", s.Name)
	_, ok = FindStore(stores, "nope")
	assert.False(t, ok)
}

func TestLoadStores_rejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":        "stores: []\n",
		"unknown type": "stores:\n  - type: etsy\n    name: X\n",
		"missing url":  "stores:\n  - type: rss\n    name: X\n",
		"dup slug": `
stores:
  - type: rss
    name: Same Name
    rss_url: https://a.example.com/feed
  - type: rss
    name: same-name
    rss_url: https://b.example.com/feed
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadStores(writeStores(t, body))
			assert.Error(t, err)
		})
	}

	_, err := LoadStores(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
