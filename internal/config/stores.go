package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"vintagefeed/internal/model"
)

// LoadStores reads the partner store list from a YAML file with a top-level
// "stores" key. access_token values may reference the environment, e.g.
// "${GOLDEN_AGE_TOKEN}".
func LoadStores(path string) ([]model.StoreConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read stores file %s: %w", path, err)
	}

	var stores []model.StoreConfig
	if err := v.UnmarshalKey("stores", &stores); err != nil {
		return nil, fmt.Errorf("decode stores file %s: %w", path, err)
	}
	if err := validateStores(stores); err != nil {
		return nil, err
	}

	for i := range stores {
		stores[i].AccessToken = strings.TrimSpace(os.ExpandEnv(stores[i].AccessToken))
		stores[i].Slug = stores[i].StoreSlug()
	}
	return stores, nil
}

func validateStores(stores []model.StoreConfig) error {
	if len(stores) == 0 {
		return errors.New("stores cannot be empty")
	}
	seen := make(map[string]string, len(stores))
	for _, s := range stores {
		if err := s.Validate(); err != nil {
			return err
		}
		slug := s.StoreSlug()
		if slug == "" {
			return fmt.Errorf("store %q has an empty slug", s.Name)
		}
		if other, ok := seen[slug]; ok {
			return fmt.Errorf("stores %q and %q share slug %q", other, s.Name, slug)
		}
		seen[slug] = s.Name
	}
	return nil
}

// FindStore returns the store whose slug or name matches key.
func FindStore(stores []model.StoreConfig, key string) (model.StoreConfig, bool) {
	for _, s := range stores {
		if s.StoreSlug() == key || strings.EqualFold(s.Name, key) {
			return s, true
		}
	}
	return model.StoreConfig{}, false
}
