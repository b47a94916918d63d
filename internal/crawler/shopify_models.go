package crawler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLProductsResponse struct {
	Data struct {
		Products struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node graphQLProduct `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLProduct struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Handle           string `json:"handle"`
	Description      string `json:"description"`
	DescriptionHTML  string `json:"descriptionHtml"`
	OnlineStoreURL   string `json:"onlineStoreUrl"`
	AvailableForSale *bool  `json:"availableForSale"`
	TotalInventory   *int   `json:"totalInventory"`
	PriceRange       struct {
		MinVariantPrice struct {
			Amount       string `json:"amount"`
			CurrencyCode string `json:"currencyCode"`
		} `json:"minVariantPrice"`
	} `json:"priceRange"`
	Images struct {
		Edges []struct {
			Node struct {
				URL string `json:"url"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"images"`
}

// products.json

type publicProductsResponse struct {
	Products []publicProduct `json:"products"`
}

type publicProduct struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Handle    string          `json:"handle"`
	BodyHTML  string          `json:"body_html"`
	Available *bool           `json:"available"`
	Variants  []publicVariant `json:"variants"`
	Images    []struct {
		Src string `json:"src"`
	} `json:"images"`
}

type publicVariant struct {
	Price     flexNumber `json:"price"`
	Available *bool      `json:"available"`
}

// flexNumber accepts a JSON number or a numeric string; anything else is unset.
type flexNumber struct {
	Value *float64
}

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		f.Value = parseAmount(s)
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return nil
	}
	f.Value = &v
	return nil
}
