package web

import (
	"html/template"

	"github.com/sngm3741/coffee-map/internal/coffee/application"
	"github.com/sngm3741/coffee-map/internal/coffee/domain"
	"github.com/sngm3741/coffee-map/internal/coffee/maps"
	"github.com/sngm3741/coffee-map/internal/interfaces/http/web/render"
)

// viewResponse is the body of every UI endpoint that changes or reads the
// session's view.
type viewResponse struct {
	render.Fragments
	Map          maps.Map      `json:"map"`
	SelectedID   domain.ShopID `json:"selectedId"`
	Empty        bool          `json:"empty"`
	Searched     bool          `json:"searched"`
	ZipCode      string        `json:"zipCode,omitempty"`
	Radius       float64       `json:"radius,omitempty"`
	TopRatedOnly bool          `json:"topRatedOnly"`
	Expanded     bool          `json:"overflowExpanded"`
	TotalCount   int           `json:"totalCount"`
}

type detailResponse struct {
	Title string        `json:"title"`
	Body  template.HTML `json:"body"`
}

func buildViewResponse(v application.View) (viewResponse, error) {
	fragments, err := render.RenderView(v)
	if err != nil {
		return viewResponse{}, err
	}
	m := v.Map
	if m.Markers == nil {
		m.Markers = []maps.Marker{}
	}
	return viewResponse{
		Fragments:    fragments,
		Map:          m,
		SelectedID:   v.SelectedID,
		Empty:        v.Empty,
		Searched:     v.Searched,
		ZipCode:      v.ZipCode,
		Radius:       v.Radius,
		TopRatedOnly: v.TopRatedOnly,
		Expanded:     v.OverflowExpanded,
		TotalCount:   v.TotalCount,
	}, nil
}
