package application

import (
	"time"

	"github.com/sngm3741/coffee-map/internal/coffee/domain"
	"github.com/sngm3741/coffee-map/internal/coffee/maps"
)

// TopShopCount is the size of the ranked section.
const TopShopCount = 3

// State is the application state of one browser session: the current search
// result, the selection, the view flags and the map model.
type State struct {
	Result           *domain.SearchResult `json:"result,omitempty"`
	SelectedID       domain.ShopID        `json:"selectedId,omitempty"`
	TopRatedOnly     bool                 `json:"topRatedOnly"`
	OverflowExpanded bool                 `json:"overflowExpanded"`
	Map              *maps.Map            `json:"map"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// NewState creates the state of a fresh session with its map initialized.
func NewState(center domain.Position, searchAreaLabel string) *State {
	return &State{
		Map: maps.Initialize(center, maps.InitialZoom, searchAreaLabel),
	}
}

// Replace swaps in a new search result. A selection whose shop is no longer
// listed is dropped and the overflow list collapses.
func (s *State) Replace(result domain.SearchResult) {
	s.Result = &result
	s.OverflowExpanded = false
	if s.SelectedID != "" {
		if _, ok := result.Find(s.SelectedID); !ok {
			s.SelectedID = ""
		}
	}
}

// Selected resolves the selection against the current result.
func (s *State) Selected() (domain.Shop, bool) {
	if s.Result == nil || s.SelectedID == "" {
		return domain.Shop{}, false
	}
	return s.Result.Find(s.SelectedID)
}

// Sections splits the displayed shops into the ranked top section and the
// remaining entries. The rating filter applies to both before the split.
func (s *State) Sections() (top, rest []domain.Shop) {
	if s.Result == nil {
		return nil, nil
	}

	listed := s.Result.CoffeeShops
	ranked := s.Result.TopShops
	if s.TopRatedOnly {
		listed = domain.FilterByRating(listed, domain.HighRatingThreshold)
		ranked = domain.FilterByRating(ranked, domain.HighRatingThreshold)
	}
	if len(ranked) > TopShopCount {
		ranked = ranked[:TopShopCount]
	}

	inTop := make(map[domain.ShopID]struct{}, len(ranked))
	for _, shop := range ranked {
		inTop[shop.ID] = struct{}{}
	}
	rest = make([]domain.Shop, 0, len(listed))
	for _, shop := range listed {
		if _, ok := inTop[shop.ID]; ok {
			continue
		}
		rest = append(rest, shop)
	}

	return append([]domain.Shop(nil), ranked...), rest
}
