// Package maps models the interactive map shown next to the shop list.
// The browser widget only replays this model: it drops every point marker it
// holds, places the ones listed here, then applies the viewport.
package maps

import (
	"github.com/sngm3741/coffee-map/internal/coffee/domain"
)

const (
	// InitialZoom is used when the map is first created.
	InitialZoom = 13
	// FallbackZoom is used when a result has no shops to frame.
	FallbackZoom = 10
	// SingleResultZoom frames a result with exactly one shop.
	SingleResultZoom = 14
	// SelectedZoom is applied when a shop is selected.
	SelectedZoom = 15
	// BoundsPadding extends fitted bounds on each side, as a fraction of their span.
	BoundsPadding = 0.1
)

// Viewport modes.
const (
	ModeCenter = "center"
	ModeBounds = "bounds"
)

// Bounds is a lat/lng rectangle.
type Bounds struct {
	SouthWest domain.Position `json:"southWest"`
	NorthEast domain.Position `json:"northEast"`
}

// Viewport is either a center+zoom or a rectangle to fit.
type Viewport struct {
	Mode   string          `json:"mode"`
	Center domain.Position `json:"center"`
	Zoom   int             `json:"zoom,omitempty"`
	Bounds *Bounds         `json:"bounds,omitempty"`
}

// SearchArea is the fixed marker placed when the map is created.
type SearchArea struct {
	Position domain.Position `json:"position"`
	Label    string          `json:"label"`
}

// Marker is one shop marker with its pre-rendered callout.
type Marker struct {
	ID       domain.ShopID   `json:"id"`
	Position domain.Position `json:"position"`
	Callout  string          `json:"callout"`
}

// Point is the input to SetMarkers. RenderCallout may be nil.
type Point struct {
	ID            domain.ShopID
	Position      domain.Position
	RenderCallout func() string
}

// Map is the map model of one session.
type Map struct {
	SearchArea  SearchArea    `json:"searchArea"`
	Markers     []Marker      `json:"markers"`
	Viewport    Viewport      `json:"viewport"`
	OpenCallout domain.ShopID `json:"openCallout,omitempty"`
}

// Initialize creates the map centred on center with the search-area marker.
func Initialize(center domain.Position, zoom int, label string) *Map {
	return &Map{
		SearchArea: SearchArea{Position: center, Label: label},
		Markers:    []Marker{},
		Viewport:   Viewport{Mode: ModeCenter, Center: center, Zoom: zoom},
	}
}

// SetMarkers replaces every point marker with one marker per point.
// The open callout is closed since its marker is gone.
func (m *Map) SetMarkers(points []Point) {
	markers := make([]Marker, 0, len(points))
	for _, p := range points {
		marker := Marker{ID: p.ID, Position: p.Position}
		if p.RenderCallout != nil {
			marker.Callout = p.RenderCallout()
		}
		markers = append(markers, marker)
	}
	m.Markers = markers
	m.OpenCallout = ""
}

// FocusOn frames positions: fallback at FallbackZoom when empty, the single
// position at SingleResultZoom, otherwise the padded bounds of all positions.
func (m *Map) FocusOn(positions []domain.Position, fallback domain.Position) {
	switch {
	case len(positions) == 0:
		m.Viewport = Viewport{Mode: ModeCenter, Center: fallback, Zoom: FallbackZoom}
	case len(positions) == 1 || allSame(positions):
		m.Viewport = Viewport{Mode: ModeCenter, Center: positions[0], Zoom: SingleResultZoom}
	default:
		b := paddedBounds(positions, BoundsPadding)
		m.Viewport = Viewport{
			Mode: ModeBounds,
			Center: domain.Position{
				Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
				Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
			},
			Bounds: &b,
		}
	}
}

// Center moves the viewport to position at zoom.
func (m *Map) Center(position domain.Position, zoom int) {
	m.Viewport = Viewport{Mode: ModeCenter, Center: position, Zoom: zoom}
}

// OpenCalloutFor opens the callout of the marker for id. It reports false and
// leaves the map unchanged when no such marker exists.
func (m *Map) OpenCalloutFor(id domain.ShopID) bool {
	if _, ok := m.Marker(id); !ok {
		return false
	}
	m.OpenCallout = id
	return true
}

// Marker looks up the marker for id.
func (m *Map) Marker(id domain.ShopID) (Marker, bool) {
	for _, marker := range m.Markers {
		if marker.ID == id {
			return marker, true
		}
	}
	return Marker{}, false
}

func allSame(positions []domain.Position) bool {
	for _, p := range positions[1:] {
		if p != positions[0] {
			return false
		}
	}
	return true
}

func paddedBounds(positions []domain.Position, ratio float64) Bounds {
	b := Bounds{SouthWest: positions[0], NorthEast: positions[0]}
	for _, p := range positions[1:] {
		if p.Lat < b.SouthWest.Lat {
			b.SouthWest.Lat = p.Lat
		}
		if p.Lng < b.SouthWest.Lng {
			b.SouthWest.Lng = p.Lng
		}
		if p.Lat > b.NorthEast.Lat {
			b.NorthEast.Lat = p.Lat
		}
		if p.Lng > b.NorthEast.Lng {
			b.NorthEast.Lng = p.Lng
		}
	}

	latPad := (b.NorthEast.Lat - b.SouthWest.Lat) * ratio
	lngPad := (b.NorthEast.Lng - b.SouthWest.Lng) * ratio
	b.SouthWest.Lat -= latPad
	b.SouthWest.Lng -= lngPad
	b.NorthEast.Lat += latPad
	b.NorthEast.Lng += lngPad
	return b
}
