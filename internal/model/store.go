package model

import (
	"errors"
	"fmt"
	"strings"
)

type StoreType string

const (
	StoreShopify     StoreType = "shopify"
	StoreSquarespace StoreType = "squarespace"
	StoreRSS         StoreType = "rss"
)

// StoreConfig is one partner store as configured by the marketplace admins.
type StoreConfig struct {
	Type        StoreType `mapstructure:"type" json:"type"`
	Name        string    `mapstructure:"name" json:"name"`
	Slug        string    `mapstructure:"slug" json:"slug"`
	Domain      string    `mapstructure:"domain" json:"domain,omitempty"`
	ShopURL     string    `mapstructure:"shop_url" json:"shop_url,omitempty"`
	RSSURL      string    `mapstructure:"rss_url" json:"rss_url,omitempty"`
	AccessToken string    `mapstructure:"access_token" json:"-"`
	MaxProducts int       `mapstructure:"max_products" json:"max_products,omitempty"`
}

// StoreSlug returns the configured slug, or one derived from the name.
func (c StoreConfig) StoreSlug() string {
	if s := strings.TrimSpace(c.Slug); s != "" {
		return s
	}
	return Slugify(c.Name)
}

func (c StoreConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("store name is required")
	}
	switch c.Type {
	case StoreShopify:
		if strings.TrimSpace(c.Domain) == "" {
			return fmt.Errorf("store %q: shopify domain is required", c.Name)
		}
	case StoreSquarespace:
		if strings.TrimSpace(c.ShopURL) == "" {
			return fmt.Errorf("store %q: squarespace shop_url is required", c.Name)
		}
	case StoreRSS:
		if strings.TrimSpace(c.RSSURL) == "" {
			return fmt.Errorf("store %q: rss_url is required", c.Name)
		}
	default:
		return fmt.Errorf("store %q: unknown type %q", c.Name, c.Type)
	}
	return nil
}
