package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ShopID is the opaque shop identifier. The upstream encodes it either as a
// JSON number (sample data) or a string (Yelp business ids).
type ShopID string

// UnmarshalJSON accepts both string and numeric ids.
func (id *ShopID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ShopID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("shop id must be a string or number: %w", err)
	}
	*id = ShopID(n.String())
	return nil
}

func (id ShopID) String() string {
	return string(id)
}

// Position is a WGS84 coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the position was never set.
func (p Position) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}

// Shop is a coffee shop as delivered by the search API. Detail-only fields
// (Hours, Phone, Website, Reviews) are empty in list responses.
type Shop struct {
	ID             ShopID   `json:"id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	City           string   `json:"city,omitempty"`
	State          string   `json:"state,omitempty"`
	ZipCode        string   `json:"zip_code,omitempty"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	Rating         float64  `json:"rating"`
	ReviewCount    int      `json:"review_count,omitempty"`
	SignatureDrink string   `json:"signature_drink,omitempty"`
	Description    string   `json:"description,omitempty"`
	Summary        string   `json:"nlp_summary,omitempty"`
	YelpURL        string   `json:"yelp_url,omitempty"`
	Price          string   `json:"price,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	Hours          string   `json:"hours,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	Website        string   `json:"website,omitempty"`
	Reviews        []Review `json:"reviews,omitempty"`
}

// Position returns the shop coordinates.
func (s Shop) Position() Position {
	return Position{Lat: s.Lat, Lng: s.Lng}
}

// ExternalURL is the deep link shown next to the shop: Yelp first, then the website.
func (s Shop) ExternalURL() string {
	if u := strings.TrimSpace(s.YelpURL); u != "" {
		return u
	}
	return strings.TrimSpace(s.Website)
}

// Blurb is the short text shown on cards: the NLP summary when present,
// otherwise the signature drink.
func (s Shop) Blurb() string {
	if summary := strings.TrimSpace(s.Summary); summary != "" {
		return summary
	}
	return strings.TrimSpace(s.SignatureDrink)
}

// Review is one customer review, present only in detail responses.
type Review struct {
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// SearchResult is one search response. CoffeeShops keeps the upstream order;
// TopShops is the ranked subset.
type SearchResult struct {
	ZipCode       string   `json:"zip_code,omitempty"`
	Radius        float64  `json:"radius,omitempty"`
	CoffeeShops   []Shop   `json:"coffee_shops"`
	TopShops      []Shop   `json:"top_shops,omitempty"`
	AllShopsCount int      `json:"all_shops_count,omitempty"`
	Center        Position `json:"center"`
}

// Shops returns every shop of the result: CoffeeShops followed by any ranked
// shop that is missing from CoffeeShops. Duplicates are dropped by id.
func (r SearchResult) Shops() []Shop {
	out := make([]Shop, 0, len(r.CoffeeShops)+len(r.TopShops))
	seen := make(map[ShopID]struct{}, len(r.CoffeeShops)+len(r.TopShops))
	for _, group := range [][]Shop{r.CoffeeShops, r.TopShops} {
		for _, shop := range group {
			if _, ok := seen[shop.ID]; ok {
				continue
			}
			seen[shop.ID] = struct{}{}
			out = append(out, shop)
		}
	}
	return out
}

// Find resolves id against the result.
func (r SearchResult) Find(id ShopID) (Shop, bool) {
	for _, group := range [][]Shop{r.CoffeeShops, r.TopShops} {
		for _, shop := range group {
			if shop.ID == id {
				return shop, true
			}
		}
	}
	return Shop{}, false
}

// FilterByRating keeps shops rated at or above min, preserving order.
func FilterByRating(shops []Shop, min float64) []Shop {
	out := make([]Shop, 0, len(shops))
	for _, shop := range shops {
		if shop.Rating >= min {
			out = append(out, shop)
		}
	}
	return out
}
