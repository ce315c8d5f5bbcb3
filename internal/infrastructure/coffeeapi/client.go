// Package coffeeapi is the HTTP client of the upstream coffee shop search API.
package coffeeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sngm3741/coffee-map/internal/coffee/application"
	"github.com/sngm3741/coffee-map/internal/coffee/domain"
	"github.com/sngm3741/coffee-map/internal/logger"
	"github.com/sngm3741/coffee-map/internal/metrics"
)

const (
	searchPath   = "/api/coffee-shops"
	detailPath   = "/api/coffee-shop/"
	maxBodyBytes = 4 << 20

	endpointSearch = "search"
	endpointDetail = "detail"
)

var tracer = otel.Tracer("github.com/sngm3741/coffee-map/internal/infrastructure/coffeeapi")

// Config defines dependencies required by Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logger.Logger
}

// Client implements application.ShopAPI over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

var _ application.ShopAPI = (*Client)(nil)

// NewClient creates a coffee API client. A nil HTTPClient gets a client with cfg.Timeout.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: httpClient,
		logger:     log,
	}
}

type wireShop struct {
	domain.Shop
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type searchResponse struct {
	ZipCode       string     `json:"zip_code"`
	Radius        *float64   `json:"radius"`
	CoffeeShops   []wireShop `json:"coffee_shops"`
	TopShops      []wireShop `json:"top_shops"`
	AllShopsCount *int       `json:"all_shops_count"`
	Lat           *float64   `json:"lat"`
	Lng           *float64   `json:"lng"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Search queries the shop list. Empty or whitespace zip codes and missing
// radii are left out of the query so the upstream defaults apply.
func (c *Client) Search(ctx context.Context, query application.SearchQuery) (domain.SearchResult, error) {
	endpoint := c.baseURL + searchPath
	if params := searchParams(query); len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	ctx, span := tracer.Start(ctx, "coffeeapi.Search", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("coffee.zip_code", strings.TrimSpace(query.ZipCode)))

	status, body, err := c.get(ctx, endpointSearch, endpoint)
	if err != nil {
		return domain.SearchResult{}, c.fail(span, endpointSearch, err)
	}
	if status < 200 || status > 299 {
		return domain.SearchResult{}, c.fail(span, endpointSearch, &domain.NetworkError{
			Op:     endpointSearch,
			Status: status,
			Err:    errors.New(upstreamMessage(body)),
		})
	}
	if err := validate(searchSchema, body); err != nil {
		return domain.SearchResult{}, c.fail(span, endpointSearch, &domain.NetworkError{Op: endpointSearch, Err: err})
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.SearchResult{}, c.fail(span, endpointSearch, &domain.NetworkError{Op: endpointSearch, Err: err})
	}

	result := c.toSearchResult(payload)
	metrics.UpstreamRequests.WithLabelValues(endpointSearch, "ok").Inc()
	metrics.SearchResultShops.Observe(float64(len(result.CoffeeShops)))
	span.SetAttributes(attribute.Int("coffee.shops", len(result.CoffeeShops)))
	return result, nil
}

// ShopDetail fetches one shop with its reviews. The upstream signals a
// missing shop with an "error" field in the body, whatever the status code.
func (c *Client) ShopDetail(ctx context.Context, id domain.ShopID) (domain.Shop, error) {
	endpoint := c.baseURL + detailPath + url.PathEscape(id.String())

	ctx, span := tracer.Start(ctx, "coffeeapi.ShopDetail", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("coffee.shop_id", id.String()))

	status, body, err := c.get(ctx, endpointDetail, endpoint)
	if err != nil {
		return domain.Shop{}, c.fail(span, endpointDetail, err)
	}

	var marker errorResponse
	if err := json.Unmarshal(body, &marker); err == nil && strings.TrimSpace(marker.Error) != "" {
		metrics.UpstreamRequests.WithLabelValues(endpointDetail, "not_found").Inc()
		span.SetAttributes(attribute.Bool("coffee.not_found", true))
		return domain.Shop{}, fmt.Errorf("%w: %s", domain.ErrNotFound, strings.TrimSpace(marker.Error))
	}
	if status < 200 || status > 299 {
		return domain.Shop{}, c.fail(span, endpointDetail, &domain.NetworkError{
			Op:     endpointDetail,
			Status: status,
			Err:    errors.New(upstreamMessage(body)),
		})
	}
	if err := validate(detailSchema, body); err != nil {
		return domain.Shop{}, c.fail(span, endpointDetail, &domain.NetworkError{Op: endpointDetail, Err: err})
	}

	var payload wireShop
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Shop{}, c.fail(span, endpointDetail, &domain.NetworkError{Op: endpointDetail, Err: err})
	}

	metrics.UpstreamRequests.WithLabelValues(endpointDetail, "ok").Inc()
	shop, _ := payload.toDomain()
	return shop, nil
}

func (c *Client) get(ctx context.Context, endpointName, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, &domain.NetworkError{Op: endpointName, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamDuration.WithLabelValues(endpointName).Observe(time.Since(started).Seconds())
	if err != nil {
		return 0, nil, &domain.NetworkError{Op: endpointName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, &domain.NetworkError{Op: endpointName, Status: resp.StatusCode, Err: err}
	}
	if !json.Valid(body) {
		return resp.StatusCode, nil, &domain.NetworkError{
			Op:     endpointName,
			Status: resp.StatusCode,
			Err:    errors.New("response body is not JSON"),
		}
	}
	return resp.StatusCode, body, nil
}

func (c *Client) fail(span trace.Span, endpointName string, err error) error {
	metrics.UpstreamRequests.WithLabelValues(endpointName, "error").Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.WithError(err).Warn("coffee api request failed", map[string]interface{}{"endpoint": endpointName})
	return err
}

func (c *Client) toSearchResult(payload searchResponse) domain.SearchResult {
	result := domain.SearchResult{
		ZipCode:     strings.TrimSpace(payload.ZipCode),
		CoffeeShops: c.toShops(payload.CoffeeShops),
		TopShops:    c.toShops(payload.TopShops),
	}
	if payload.Radius != nil {
		result.Radius = *payload.Radius
	}
	if payload.Lat != nil && payload.Lng != nil {
		result.Center = domain.Position{Lat: *payload.Lat, Lng: *payload.Lng}
	}
	result.AllShopsCount = len(result.CoffeeShops)
	if payload.AllShopsCount != nil && *payload.AllShopsCount > 0 {
		result.AllShopsCount = *payload.AllShopsCount
	}
	return result
}

// toShops drops entries that cannot be placed on the map so the card list and
// the marker set always describe the same shops.
func (c *Client) toShops(in []wireShop) []domain.Shop {
	out := make([]domain.Shop, 0, len(in))
	for _, w := range in {
		shop, ok := w.toDomain()
		if !ok {
			c.logger.Warn("dropping shop without coordinates", map[string]interface{}{"shopId": shop.ID.String(), "name": shop.Name})
			continue
		}
		out = append(out, shop)
	}
	return out
}

func (w wireShop) toDomain() (domain.Shop, bool) {
	shop := w.Shop
	if w.Lat == nil || w.Lng == nil {
		return shop, false
	}
	shop.Lat = *w.Lat
	shop.Lng = *w.Lng
	return shop, true
}

func searchParams(query application.SearchQuery) url.Values {
	params := url.Values{}
	if zip := strings.TrimSpace(query.ZipCode); zip != "" {
		params.Set("zip_code", zip)
	}
	if query.Radius != nil && *query.Radius > 0 {
		params.Set("radius", strconv.FormatFloat(*query.Radius, 'f', -1, 64))
	}
	return params
}

func upstreamMessage(body []byte) string {
	var marker errorResponse
	if err := json.Unmarshal(body, &marker); err == nil && strings.TrimSpace(marker.Error) != "" {
		return strings.TrimSpace(marker.Error)
	}
	body = bytes.TrimSpace(body)
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("unexpected response: %s", body)
}
