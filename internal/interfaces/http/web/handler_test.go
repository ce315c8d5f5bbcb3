package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/coffee-map/internal/coffee/application"
	"github.com/sngm3741/coffee-map/internal/coffee/domain"
	"github.com/sngm3741/coffee-map/internal/coffee/maps"
	"github.com/sngm3741/coffee-map/internal/interfaces/http/common"
	"github.com/sngm3741/coffee-map/internal/logger"
)

type fakeFinder struct {
	view   application.View
	shop   domain.Shop
	err    error
	calls  []string
	query  application.SearchQuery
	flag   bool
	id     domain.ShopID
	sessID string
}

func (f *fakeFinder) record(name, sessionID string) (application.View, error) {
	f.calls = append(f.calls, name)
	f.sessID = sessionID
	return f.view, f.err
}

func (f *fakeFinder) Load(_ context.Context, sessionID string) (application.View, error) {
	return f.record("load", sessionID)
}

func (f *fakeFinder) Search(_ context.Context, sessionID string, q application.SearchQuery) (application.View, error) {
	f.query = q
	return f.record("search", sessionID)
}

func (f *fakeFinder) Filter(_ context.Context, sessionID string, topRatedOnly bool) (application.View, error) {
	f.flag = topRatedOnly
	return f.record("filter", sessionID)
}

func (f *fakeFinder) ToggleOverflow(_ context.Context, sessionID string, expanded bool) (application.View, error) {
	f.flag = expanded
	return f.record("overflow", sessionID)
}

func (f *fakeFinder) Select(_ context.Context, sessionID string, id domain.ShopID) (application.View, error) {
	f.id = id
	return f.record("select", sessionID)
}

func (f *fakeFinder) Detail(_ context.Context, id domain.ShopID) (domain.Shop, error) {
	f.calls = append(f.calls, "detail")
	f.id = id
	return f.shop, f.err
}

const testSession = "6f1c2b7e-4d1a-4c53-9a0e-2f7d3c1b9e10"

func fixedSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(common.ContextWithSession(r.Context(), testSession)))
	})
}

func newTestRouter(t *testing.T, finder *fakeFinder) http.Handler {
	h := NewHandler(Config{Logger: logger.NewTestLogger(t), Finder: finder, DefaultZipCode: "96814"})
	r := chi.NewRouter()
	h.Register(r, fixedSession)
	return r
}

func rankedView() application.View {
	shops := []domain.Shop{
		{ID: "1", Name: "Honolulu Coffee Company", Lat: 21.30, Lng: -157.85, Rating: 4.5},
		{ID: "2", Name: "Island Vintage Coffee", Lat: 21.27, Lng: -157.82, Rating: 4.7},
	}
	m := maps.Initialize(domain.Position{Lat: 21.3069, Lng: -157.8583}, maps.InitialZoom, "Search area")
	m.SetMarkers([]maps.Point{{ID: "1", Position: shops[0].Position()}, {ID: "2", Position: shops[1].Position()}})
	return application.View{
		Searched:   true,
		ZipCode:    "96814",
		Ranked:     true,
		TopShops:   shops[:1],
		Rest:       shops[1:],
		TotalCount: 2,
		SelectedID: "2",
		Map:        *m,
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestStateHandler(t *testing.T) {
	finder := &fakeFinder{view: rankedView()}
	rec := httptest.NewRecorder()
	newTestRouter(t, finder).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"load"}, finder.calls)
	assert.Equal(t, testSession, finder.sessID)

	body := decode(t, rec)
	assert.Equal(t, "2", body["selectedId"])
	assert.Equal(t, true, body["searched"])
	assert.Equal(t, false, body["empty"])
	assert.Contains(t, body["topShops"], "Honolulu Coffee Company")
	assert.Contains(t, body["overflow"], "Show all shops (1 more)")

	mapModel, ok := body["map"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, mapModel["markers"], 2)
}

func TestSearchHandler_PassesQuery(t *testing.T) {
	finder := &fakeFinder{view: rankedView()}
	rec := httptest.NewRecorder()
	newTestRouter(t, finder).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/search?zip_code=+96815+&radius=2.5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "96815", finder.query.ZipCode)
	require.NotNil(t, finder.query.Radius)
	assert.Equal(t, 2.5, *finder.query.Radius)
}

func TestSearchHandler_OmittedParams(t *testing.T) {
	finder := &fakeFinder{view: application.View{Searched: true, Empty: true}}
	rec := httptest.NewRecorder()
	newTestRouter(t, finder).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/search", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, finder.query.ZipCode)
	assert.Nil(t, finder.query.Radius)

	body := decode(t, rec)
	assert.Equal(t, true, body["empty"])
	assert.Contains(t, body["sidebar"], "No coffee shops found for this search.")
}

func TestSearchHandler_InvalidRadius(t *testing.T) {
	finder := &fakeFinder{}
	rec := httptest.NewRecorder()
	newTestRouter(t, finder).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/search?radius=-3", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Radius must be a positive number"}`, rec.Body.String())
	assert.Empty(t, finder.calls)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		target  string
		err     error
		status  int
		message string
	}{
		{
			name: "search network", method: http.MethodGet, target: "/ui/search?zip_code=96814",
			err: &domain.NetworkError{Op: "search", Status: 500}, status: http.StatusBadGateway, message: "Failed to load coffee shops data",
		},
		{
			name: "detail network", method: http.MethodGet, target: "/ui/shops/1",
			err: &domain.NetworkError{Op: "detail"}, status: http.StatusBadGateway, message: "Failed to load shop details",
		},
		{
			name: "detail not found", method: http.MethodGet, target: "/ui/shops/404",
			err: domain.ErrNotFound, status: http.StatusNotFound, message: "Shop details not found",
		},
		{
			name: "unknown selection", method: http.MethodPost, target: "/ui/select/99",
			err: domain.ErrShopNotListed, status: http.StatusNotFound, message: "Shop is not part of the current results",
		},
		{
			name: "session store failure", method: http.MethodGet, target: "/ui/state",
			err: assert.AnError, status: http.StatusInternalServerError, message: "Something went wrong, please try again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &fakeFinder{err: tt.err}
			rec := httptest.NewRecorder()
			newTestRouter(t, finder).ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec)["error"])
		})
	}
}

func TestFilterAndOverflowHandlers(t *testing.T) {
	finder := &fakeFinder{view: rankedView()}
	router := newTestRouter(t, finder)

	form := url.Values{"top_rated": {"true"}}
	req := httptest.NewRequest(http.MethodPost, "/ui/filter", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, finder.flag)

	form = url.Values{"expanded": {"false"}}
	req = httptest.NewRequest(http.MethodPost, "/ui/overflow", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, finder.flag)

	assert.Equal(t, []string{"filter", "overflow"}, finder.calls)
}

func TestSelectHandler(t *testing.T) {
	view := rankedView()
	view.OverflowExpanded = true
	finder := &fakeFinder{view: view}
	rec := httptest.NewRecorder()
	newTestRouter(t, finder).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ui/select/2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ShopID("2"), finder.id)

	body := decode(t, rec)
	assert.Equal(t, 1, strings.Count(body["overflow"].(string)+body["topShops"].(string), "shop-card selected"))
}

func TestDetailHandler(t *testing.T) {
	finder := &fakeFinder{shop: domain.Shop{
		ID: "1", Name: "Honolulu Coffee Company", Rating: 4.5,
		Reviews: []domain.Review{{User: "CoffeeLover", Rating: 5, Comment: "Amazing!"}},
	}}
	rec := httptest.NewRecorder()
	newTestRouter(t, finder).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/shops/1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ShopID("1"), finder.id)

	body := decode(t, rec)
	assert.Equal(t, "Honolulu Coffee Company", body["title"])
	assert.Contains(t, body["body"], "CoffeeLover")
}

func TestViewHandler_RequiresSession(t *testing.T) {
	h := NewHandler(Config{Finder: &fakeFinder{}})
	rec := httptest.NewRecorder()
	h.stateHandler()(rec, httptest.NewRequest(http.MethodGet, "/ui/state", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPageAndScript(t *testing.T) {
	router := newTestRouter(t, &fakeFinder{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `value="96814"`)
	assert.Contains(t, rec.Body.String(), `src="/static/app.js"`)
	assert.NotContains(t, rec.Body.String(), "onclick")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")
	assert.Contains(t, rec.Body.String(), "addEventListener")
}
