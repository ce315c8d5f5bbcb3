package application

import (
	"github.com/sngm3741/coffee-map/internal/coffee/domain"
	"github.com/sngm3741/coffee-map/internal/coffee/maps"
)

// View is the read model handed to the renderers.
type View struct {
	Searched bool
	ZipCode  string
	Radius   float64

	// Ranked is true when the result carries a top section. Without it the
	// sidebar falls back to a single list of Rest.
	Ranked           bool
	TopShops         []domain.Shop
	Rest             []domain.Shop
	TotalCount       int
	OverflowExpanded bool
	TopRatedOnly     bool
	SelectedID       domain.ShopID
	Empty            bool

	Map maps.Map
}

// OverflowCount is the number of entries hidden behind the "all shops" toggle.
func (v View) OverflowCount() int {
	if !v.Ranked {
		return 0
	}
	return v.TotalCount - len(v.TopShops)
}

// BuildView derives the read model from state without mutating it.
func BuildView(state *State) View {
	v := View{
		OverflowExpanded: state.OverflowExpanded,
		TopRatedOnly:     state.TopRatedOnly,
	}
	if state.Map != nil {
		v.Map = *state.Map
	}
	if state.Result == nil {
		return v
	}

	top, rest := state.Sections()
	v.Searched = true
	v.ZipCode = state.Result.ZipCode
	v.Radius = state.Result.Radius
	v.Ranked = len(top) > 0
	v.TopShops = top
	v.Rest = rest
	v.TotalCount = len(top) + len(rest)
	v.Empty = v.TotalCount == 0
	if shop, ok := state.Selected(); ok {
		v.SelectedID = shop.ID
	}
	return v
}
