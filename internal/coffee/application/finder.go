package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sngm3741/coffee-map/internal/coffee/domain"
	"github.com/sngm3741/coffee-map/internal/coffee/maps"
	"github.com/sngm3741/coffee-map/internal/logger"
)

// FinderConfig defines dependencies required by the ShopFinder.
type FinderConfig struct {
	API      ShopAPI
	Sessions SessionStore
	Logger   logger.Logger
	// DefaultCenter frames the map before the first search and whenever the
	// upstream does not resolve a search center.
	DefaultCenter   domain.Position
	SearchAreaLabel string
	// Callout renders the marker popup of a shop.
	Callout func(domain.Shop) string
	Now     func() time.Time
}

type shopFinder struct {
	api             ShopAPI
	sessions        SessionStore
	logger          logger.Logger
	defaultCenter   domain.Position
	searchAreaLabel string
	callout         func(domain.Shop) string
	now             func() time.Time
}

// NewShopFinder creates the ShopFinder use cases.
func NewShopFinder(cfg FinderConfig) ShopFinder {
	f := &shopFinder{
		api:             cfg.API,
		sessions:        cfg.Sessions,
		logger:          cfg.Logger,
		defaultCenter:   cfg.DefaultCenter,
		searchAreaLabel: cfg.SearchAreaLabel,
		callout:         cfg.Callout,
		now:             cfg.Now,
	}
	if f.logger == nil {
		f.logger = logger.NewNoOpLogger()
	}
	if f.now == nil {
		f.now = time.Now
	}
	return f
}

func (f *shopFinder) Load(ctx context.Context, sessionID string) (View, error) {
	state, err := f.loadState(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return BuildView(state), nil
}

// Search fetches a new result and replaces the session's result wholesale.
// On failure the stored state is left untouched.
func (f *shopFinder) Search(ctx context.Context, sessionID string, query SearchQuery) (View, error) {
	query.ZipCode = strings.TrimSpace(query.ZipCode)
	if query.Radius != nil && *query.Radius <= 0 {
		return View{}, fmt.Errorf("%w: radius must be positive", domain.ErrInvalidQuery)
	}

	state, err := f.loadState(ctx, sessionID)
	if err != nil {
		return View{}, err
	}

	result, err := f.api.Search(ctx, query)
	if err != nil {
		f.logger.WithError(err).Warn("coffee shop search failed", map[string]interface{}{
			"session": sessionID,
			"zipCode": query.ZipCode,
		})
		return View{}, err
	}
	if result.ZipCode == "" {
		result.ZipCode = query.ZipCode
	}
	if result.Radius == 0 && query.Radius != nil {
		result.Radius = *query.Radius
	}

	state.Replace(result)
	f.syncMap(state)

	if err := f.save(ctx, sessionID, state); err != nil {
		return View{}, err
	}

	f.logger.Info("coffee shop search completed", map[string]interface{}{
		"session":  sessionID,
		"zipCode":  result.ZipCode,
		"shops":    len(result.CoffeeShops),
		"topShops": len(result.TopShops),
	})
	return BuildView(state), nil
}

func (f *shopFinder) Filter(ctx context.Context, sessionID string, topRatedOnly bool) (View, error) {
	return f.update(ctx, sessionID, func(state *State) error {
		state.TopRatedOnly = topRatedOnly
		return nil
	})
}

func (f *shopFinder) ToggleOverflow(ctx context.Context, sessionID string, expanded bool) (View, error) {
	return f.update(ctx, sessionID, func(state *State) error {
		state.OverflowExpanded = expanded
		return nil
	})
}

func (f *shopFinder) Select(ctx context.Context, sessionID string, id domain.ShopID) (View, error) {
	return f.update(ctx, sessionID, func(state *State) error {
		_, err := Select(state, id)
		return err
	})
}

func (f *shopFinder) Detail(ctx context.Context, id domain.ShopID) (domain.Shop, error) {
	if strings.TrimSpace(id.String()) == "" {
		return domain.Shop{}, domain.ErrNotFound
	}
	shop, err := f.api.ShopDetail(ctx, id)
	if err != nil {
		f.logger.WithError(err).Warn("coffee shop detail failed", map[string]interface{}{"shopId": id.String()})
		return domain.Shop{}, err
	}
	return shop, nil
}

// syncMap rebuilds every marker from the current result and frames them.
func (f *shopFinder) syncMap(state *State) {
	if state.Map == nil {
		state.Map = maps.Initialize(f.defaultCenter, maps.InitialZoom, f.searchAreaLabel)
	}

	shops := state.Result.Shops()
	points := make([]maps.Point, 0, len(shops))
	positions := make([]domain.Position, 0, len(shops))
	for _, shop := range shops {
		shop := shop
		point := maps.Point{ID: shop.ID, Position: shop.Position()}
		if f.callout != nil {
			point.RenderCallout = func() string { return f.callout(shop) }
		}
		points = append(points, point)
		positions = append(positions, shop.Position())
	}
	state.Map.SetMarkers(points)

	fallback := state.Result.Center
	if fallback.IsZero() {
		fallback = f.defaultCenter
	}
	state.Map.FocusOn(positions, fallback)
}

func (f *shopFinder) update(ctx context.Context, sessionID string, mutate func(*State) error) (View, error) {
	state, err := f.loadState(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	if err := mutate(state); err != nil {
		return View{}, err
	}
	if err := f.save(ctx, sessionID, state); err != nil {
		return View{}, err
	}
	return BuildView(state), nil
}

// loadState returns the stored state or a freshly initialized one.
func (f *shopFinder) loadState(ctx context.Context, sessionID string) (*State, error) {
	state, err := f.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return NewState(f.defaultCenter, f.searchAreaLabel), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if state.Map == nil {
		state.Map = maps.Initialize(f.defaultCenter, maps.InitialZoom, f.searchAreaLabel)
	}
	return state, nil
}

func (f *shopFinder) save(ctx context.Context, sessionID string, state *State) error {
	state.UpdatedAt = f.now().UTC()
	if err := f.sessions.Save(ctx, sessionID, state); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
