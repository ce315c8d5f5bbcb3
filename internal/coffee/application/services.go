package application

import (
	"context"

	"github.com/sngm3741/coffee-map/internal/coffee/domain"
)

// ShopAPI is the port to the upstream coffee-shop search API.
type ShopAPI interface {
	Search(ctx context.Context, query SearchQuery) (domain.SearchResult, error)
	ShopDetail(ctx context.Context, id domain.ShopID) (domain.Shop, error)
}

// SessionStore persists one State per browser session.
// Get returns domain.ErrSessionNotFound for unknown or expired sessions.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, state *State) error
	Ping(ctx context.Context) error
}

// SearchQuery holds the optional search parameters. Empty ZipCode and nil
// Radius are omitted from the upstream request.
type SearchQuery struct {
	ZipCode string
	Radius  *float64
}

// ShopFinder describes the browser-facing use cases.
type ShopFinder interface {
	Load(ctx context.Context, sessionID string) (View, error)
	Search(ctx context.Context, sessionID string, query SearchQuery) (View, error)
	Filter(ctx context.Context, sessionID string, topRatedOnly bool) (View, error)
	ToggleOverflow(ctx context.Context, sessionID string, expanded bool) (View, error)
	Select(ctx context.Context, sessionID string, id domain.ShopID) (View, error)
	Detail(ctx context.Context, id domain.ShopID) (domain.Shop, error)
}
