package coffeeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/coffee-map/internal/coffee/application"
	"github.com/sngm3741/coffee-map/internal/coffee/domain"
	"github.com/sngm3741/coffee-map/internal/logger"
)

const honoluluSearchBody = `{
	"zip_code": "96814",
	"coffee_shops": [
		{"id": 1, "name": "Honolulu Coffee Company", "address": "1000 Bishop St, Honolulu, HI 96813",
		 "lat": 21.3069, "lng": -157.8583, "signature_drink": "Hawaiian Latte", "rating": 4.5,
		 "description": "Premium coffee with Hawaiian flavors"},
		{"id": "island-vintage", "name": "Island Vintage Coffee", "address": "2301 Kalakaua Ave",
		 "lat": 21.2753, "lng": -157.8271, "rating": 4.7, "review_count": 1200,
		 "website": "https://www.yelp.com/biz/island-vintage-coffee-honolulu"},
		{"id": 3, "name": "No Coordinates Cafe", "lat": null, "lng": null, "rating": 4.0}
	],
	"top_shops": [
		{"id": "island-vintage", "name": "Island Vintage Coffee", "lat": 21.2753, "lng": -157.8271,
		 "rating": 4.7, "nlp_summary": "Beloved for acai bowls and Kona blends."}
	],
	"all_shops_count": 3,
	"lat": 21.30,
	"lng": -157.85
}`

const detailBody = `{
	"id": 1, "name": "Honolulu Coffee Company", "address": "1000 Bishop St", "lat": 21.3069, "lng": -157.8583,
	"rating": 4.5, "hours": "7:00 AM - 6:00 PM", "phone": "(808) 555-0123", "website": "https://example.com",
	"reviews": [
		{"user": "CoffeeLover", "rating": 5, "comment": "Amazing signature drinks!"},
		{"user": "LocalGuy", "rating": 4, "comment": "Great atmosphere and friendly staff."}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second, Logger: logger.NewTestLogger(t)}), srv
}

func radius(f float64) *float64 { return &f }

func TestSearchParams(t *testing.T) {
	tests := []struct {
		name  string
		query application.SearchQuery
		want  url.Values
	}{
		{name: "empty", query: application.SearchQuery{}, want: url.Values{}},
		{name: "whitespace zip omitted", query: application.SearchQuery{ZipCode: "   "}, want: url.Values{}},
		{name: "zip only", query: application.SearchQuery{ZipCode: " 96814 "}, want: url.Values{"zip_code": {"96814"}}},
		{name: "radius only", query: application.SearchQuery{Radius: radius(2.5)}, want: url.Values{"radius": {"2.5"}}},
		{name: "zero radius omitted", query: application.SearchQuery{ZipCode: "96814", Radius: radius(0)}, want: url.Values{"zip_code": {"96814"}}},
		{name: "both", query: application.SearchQuery{ZipCode: "96814", Radius: radius(10)}, want: url.Values{"zip_code": {"96814"}, "radius": {"10"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, searchParams(tt.query))
		})
	}
}

func TestSearch_Success(t *testing.T) {
	var gotQuery url.Values
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/coffee-shops", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(honoluluSearchBody))
	})

	result, err := client.Search(context.Background(), application.SearchQuery{ZipCode: "96814", Radius: radius(5)})
	require.NoError(t, err)

	assert.Equal(t, "96814", gotQuery.Get("zip_code"))
	assert.Equal(t, "5", gotQuery.Get("radius"))

	require.Len(t, result.CoffeeShops, 2, "shop without coordinates is dropped")
	assert.Equal(t, domain.ShopID("1"), result.CoffeeShops[0].ID)
	assert.Equal(t, "Hawaiian Latte", result.CoffeeShops[0].SignatureDrink)
	assert.InDelta(t, 21.3069, result.CoffeeShops[0].Lat, 1e-9)
	assert.Equal(t, domain.ShopID("island-vintage"), result.CoffeeShops[1].ID)
	assert.Equal(t, 1200, result.CoffeeShops[1].ReviewCount)

	require.Len(t, result.TopShops, 1)
	assert.Equal(t, "Beloved for acai bowls and Kona blends.", result.TopShops[0].Summary)
	assert.Equal(t, 3, result.AllShopsCount)
	assert.Equal(t, domain.Position{Lat: 21.30, Lng: -157.85}, result.Center)
	assert.Equal(t, "96814", result.ZipCode)
}

func TestSearch_NoParamsSendsBarePath(t *testing.T) {
	var rawQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"coffee_shops": []}`))
	})

	result, err := client.Search(context.Background(), application.SearchQuery{ZipCode: " "})
	require.NoError(t, err)
	assert.Empty(t, rawQuery)
	assert.Empty(t, result.CoffeeShops)
	assert.True(t, result.Center.IsZero())
}

func TestSearch_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non JSON body", status: http.StatusOK, body: "<html>oops</html>"},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error": "boom"}`},
		{name: "missing coffee_shops", status: http.StatusOK, body: `{"top_shops": []}`},
		{name: "shop without name", status: http.StatusOK, body: `{"coffee_shops": [{"id": 1, "lat": 1, "lng": 2}]}`},
		{name: "rating out of range", status: http.StatusOK, body: `{"coffee_shops": [{"id": 1, "name": "x", "rating": 9}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Search(context.Background(), application.SearchQuery{ZipCode: "96814"})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrNetwork)
			assert.False(t, errors.Is(err, domain.ErrNotFound))
		})
	}
}

func TestSearch_TransportFailure(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.Search(context.Background(), application.SearchQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)

	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "search", netErr.Op)
}

func TestShopDetail_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/coffee-shop/1", r.URL.Path)
		_, _ = w.Write([]byte(detailBody))
	})

	shop, err := client.ShopDetail(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, "Honolulu Coffee Company", shop.Name)
	assert.Equal(t, "7:00 AM - 6:00 PM", shop.Hours)
	assert.Equal(t, "(808) 555-0123", shop.Phone)
	require.Len(t, shop.Reviews, 2)
	assert.Equal(t, domain.Review{User: "CoffeeLover", Rating: 5, Comment: "Amazing signature drinks!"}, shop.Reviews[0])
}

func TestShopDetail_ErrorMarkerIsNotFound(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNotFound} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error": "Coffee shop not found"}`))
		})

		_, err := client.ShopDetail(context.Background(), "42")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound, "status %d", status)
		assert.False(t, errors.Is(err, domain.ErrNetwork))
	}
}

func TestShopDetail_NetworkFailures(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.ShopDetail(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrNetwork)

	client, _ = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	_, err = client.ShopDetail(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestShopDetail_EscapesID(t *testing.T) {
	var rawPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"id": "a/b", "name": "Slash"}`))
	})

	shop, err := client.ShopDetail(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/api/coffee-shop/a%2Fb", rawPath)
	assert.Equal(t, domain.ShopID("a/b"), shop.ID)
}
