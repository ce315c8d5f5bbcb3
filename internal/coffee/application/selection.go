package application

import (
	"github.com/sngm3741/coffee-map/internal/coffee/domain"
	"github.com/sngm3741/coffee-map/internal/coffee/maps"
)

// Select makes id the single selected shop, centres the map on it and opens
// its callout when a marker exists. Selecting the current selection again
// yields the same state.
func Select(state *State, id domain.ShopID) (domain.Shop, error) {
	if state.Result == nil {
		return domain.Shop{}, domain.ErrShopNotListed
	}
	shop, ok := state.Result.Find(id)
	if !ok {
		return domain.Shop{}, domain.ErrShopNotListed
	}

	state.SelectedID = shop.ID
	if state.Map != nil {
		state.Map.Center(shop.Position(), maps.SelectedZoom)
		state.Map.OpenCallout = ""
		state.Map.OpenCalloutFor(shop.ID)
	}
	return shop, nil
}
