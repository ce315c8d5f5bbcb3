package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/coffee-map/internal/coffee/application"
	"github.com/sngm3741/coffee-map/internal/coffee/domain"
	"github.com/sngm3741/coffee-map/internal/config"
	"github.com/sngm3741/coffee-map/internal/infrastructure/memory"
	"github.com/sngm3741/coffee-map/internal/logger"
)

type stubAPI struct {
	result domain.SearchResult
}

func (s stubAPI) Search(context.Context, application.SearchQuery) (domain.SearchResult, error) {
	return s.result, nil
}

func (s stubAPI) ShopDetail(_ context.Context, id domain.ShopID) (domain.Shop, error) {
	shop, ok := s.result.Find(id)
	if !ok {
		return domain.Shop{}, domain.ErrNotFound
	}
	return shop, nil
}

func testConfig() config.Config {
	return config.Config{
		Addr:              ":0",
		DefaultZipCode:    "96814",
		DefaultCenterLat:  21.3069,
		DefaultCenterLng:  -157.8583,
		SessionBackend:    config.SessionBackendMemory,
		SessionSecret:     []byte("test-secret"),
		SessionIssuer:     "coffee-map-web",
		SessionTTL:        time.Hour,
		SessionCookieName: "coffee_map_session",
		UpstreamTimeout:   time.Second,
		AllowedOrigins:    []string{"https://coffee.example.com"},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := testConfig()
	srv := &Server{
		logger:         logger.NewTestLogger(t),
		allowedOrigins: cfg.AllowedOrigins,
		sessions:       memory.NewSessionStore(cfg.SessionTTL),
	}
	srv.assemble(cfg, stubAPI{result: domain.SearchResult{
		ZipCode: "96814",
		CoffeeShops: []domain.Shop{
			{ID: "1", Name: "Honolulu Coffee Company", Lat: 21.3069, Lng: -157.8583, Rating: 4.5},
			{ID: "2", Name: "Island Vintage Coffee", Lat: 21.2753, Lng: -157.8271, Rating: 4.7},
		},
		TopShops: []domain.Shop{{ID: "2", Name: "Island Vintage Coffee", Lat: 21.2753, Lng: -157.8271, Rating: 4.7}},
		Center:   domain.Position{Lat: 21.30, Lng: -157.85},
	}})
	return srv
}

func TestHealthz(t *testing.T) {
	routes := newTestServer(t).Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	routes := newTestServer(t).Routes()
	routes.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "web_http_requests_total")
}

func TestSessionFlowAcrossRequests(t *testing.T) {
	routes := newTestServer(t).Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/search?zip_code=96814", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodPost, "/ui/select/1", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "1", view["selectedId"])

	// A request without the cookie gets a fresh session that has not searched.
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ui/select/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	routes := newTestServer(t).Routes()

	req := httptest.NewRequest(http.MethodOptions, "/ui/state", nil)
	req.Header.Set("Origin", "https://coffee.example.com")
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://coffee.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenSessionStore_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.SessionBackend = "etcd"

	_, err := New(context.Background(), cfg, logger.NewTestLogger(t))
	assert.Error(t, err)
}
