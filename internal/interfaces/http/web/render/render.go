// Package render turns shop data into HTML fragments. Fragments carry
// data-action attributes for the page script and never inline handlers.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"strconv"

	"github.com/sngm3741/coffee-map/internal/coffee/application"
	"github.com/sngm3741/coffee-map/internal/coffee/domain"
)

// Empty-state messages.
const (
	NoShopsMessage       = "No coffee shops found for this search."
	NoHighlyRatedMessage = "No highly rated coffee shops found."
	NoReviewsMessage     = "No reviews yet."
	SearchPromptMessage  = "Search a zip code to find coffee shops nearby."
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("render").Funcs(template.FuncMap{
	"stars":       domain.StarGlyphs,
	"reviewStars": domain.ReviewGlyphs,
	"rating":      FormatRating,
}).ParseFS(templateFS, "templates/*.tmpl"))

type card struct {
	Shop     domain.Shop
	Rank     int
	Selected bool
}

type overflowToggle struct {
	Expanded bool
	Hidden   int
}

// Fragments are the sidebar pieces of one view.
type Fragments struct {
	Sidebar  template.HTML `json:"sidebar"`
	TopShops template.HTML `json:"topShops"`
	Overflow template.HTML `json:"overflow"`
}

// FormatRating prints a rating the way the upstream sends it (4.5, 4).
func FormatRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64)
}

// RenderList renders one card per shop. Only the card of selectedID carries
// the selected class.
func RenderList(shops []domain.Shop, selectedID domain.ShopID) (template.HTML, error) {
	cards := make([]card, len(shops))
	for i, shop := range shops {
		cards[i] = card{Shop: shop, Selected: selectedID != "" && shop.ID == selectedID}
	}
	return execute("list", cards)
}

// RenderTopN renders at most n shops with rank badges 1..n.
func RenderTopN(shops []domain.Shop, n int, selectedID domain.ShopID) (template.HTML, error) {
	if n < len(shops) {
		shops = shops[:n]
	}
	cards := make([]card, len(shops))
	for i, shop := range shops {
		cards[i] = card{Shop: shop, Rank: i + 1, Selected: selectedID != "" && shop.ID == selectedID}
	}
	return execute("list", cards)
}

// RenderOverflowToggle renders the "all shops" toggle, or nothing when every
// shop already fits in the top section.
func RenderOverflowToggle(totalCount, n int, expanded bool) (template.HTML, error) {
	if totalCount <= n {
		return "", nil
	}
	return execute("overflow-toggle", overflowToggle{Expanded: expanded, Hidden: totalCount - n})
}

// RenderDetail returns the modal title and body of a shop.
func RenderDetail(shop domain.Shop) (string, template.HTML, error) {
	body, err := execute("detail", shop)
	if err != nil {
		return "", "", err
	}
	return shop.Name, body, nil
}

// RenderCallout renders the map popup of a shop. It is used as the marker
// callout renderer, so failures degrade to the escaped shop name.
func RenderCallout(shop domain.Shop) string {
	out, err := execute("callout", shop)
	if err != nil {
		return template.HTMLEscapeString(shop.Name)
	}
	return string(out)
}

// RenderView composes the sidebar fragments of a view. Without a ranked
// section all shops go into the sidebar list; otherwise the top section is
// followed by the overflow toggle and, when expanded, the remaining shops.
func RenderView(v application.View) (Fragments, error) {
	var f Fragments
	var err error

	switch {
	case !v.Searched:
		f.Sidebar, err = execute("placeholder", SearchPromptMessage)
	case v.Empty:
		msg := NoShopsMessage
		if v.TopRatedOnly {
			msg = NoHighlyRatedMessage
		}
		f.Sidebar, err = execute("placeholder", msg)
	case !v.Ranked:
		f.Sidebar, err = RenderList(v.Rest, v.SelectedID)
	default:
		f, err = renderRanked(v)
	}
	if err != nil {
		return Fragments{}, err
	}
	return f, nil
}

func renderRanked(v application.View) (Fragments, error) {
	var f Fragments
	top, err := RenderTopN(v.TopShops, application.TopShopCount, v.SelectedID)
	if err != nil {
		return f, err
	}
	f.TopShops = top

	toggle, err := RenderOverflowToggle(v.TotalCount, len(v.TopShops), v.OverflowExpanded)
	if err != nil {
		return f, err
	}
	if toggle == "" || !v.OverflowExpanded {
		f.Overflow = toggle
		return f, nil
	}

	rest, err := RenderList(v.Rest, v.SelectedID)
	if err != nil {
		return f, err
	}
	f.Overflow = toggle + rest
	return f, nil
}

func execute(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
