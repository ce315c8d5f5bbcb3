package coffeeapi

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// SampleShop is one record served by the sample upstream.
type SampleShop struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	SignatureDrink string  `json:"signature_drink"`
	Rating         float64 `json:"rating"`
	Description    string  `json:"description"`
}

type sampleReview struct {
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type sampleDetail struct {
	SampleShop
	Hours   string         `json:"hours"`
	Phone   string         `json:"phone"`
	Website string         `json:"website"`
	Reviews []sampleReview `json:"reviews"`
}

// HonoluluShops is the sample data set around zip code 96814.
var HonoluluShops = []SampleShop{
	{ID: 1, Name: "Honolulu Coffee Company", Address: "1000 Bishop St, Honolulu, HI 96813", Lat: 21.3069, Lng: -157.8583, SignatureDrink: "Hawaiian Latte", Rating: 4.5, Description: "Premium coffee with Hawaiian flavors"},
	{ID: 2, Name: "Island Vintage Coffee", Address: "2301 Kalakaua Ave, Honolulu, HI 96815", Lat: 21.2753, Lng: -157.8271, SignatureDrink: "Island Mocha", Rating: 4.7, Description: "Organic coffee with island-inspired drinks"},
	{ID: 3, Name: "Morning Glass Coffee", Address: "2957 E Manoa Rd, Honolulu, HI 96822", Lat: 21.2989, Lng: -157.8167, SignatureDrink: "Manu Manu", Rating: 4.6, Description: "Artisanal coffee in a relaxed atmosphere"},
	{ID: 4, Name: "The Curb Kaimuki", Address: "1045 Koko Head Ave, Honolulu, HI 96816", Lat: 21.2847, Lng: -157.8025, SignatureDrink: "Kaimuki Cold Brew", Rating: 4.4, Description: "Local favorite with great breakfast options"},
	{ID: 5, Name: "Coffee Gallery", Address: "1132 Bishop St, Honolulu, HI 96813", Lat: 21.3075, Lng: -157.8589, SignatureDrink: "Gallery Blend", Rating: 4.3, Description: "Downtown coffee spot with art gallery"},
}

// sampleCenter is where the sample upstream resolves every zip code.
var sampleCenter = struct{ Lat, Lng float64 }{21.3069, -157.8583}

const (
	sampleDefaultZip    = "96814"
	sampleDefaultRadius = 10.0
	sampleTopCount      = 3
	earthRadiusMiles    = 3958.8
)

// NewSampleHandler serves the upstream search API over shops. It resolves every
// zip code to the Honolulu center, filters by radius in miles and ranks the
// three best rated shops.
func NewSampleHandler(shops []SampleShop) http.Handler {
	r := chi.NewRouter()
	r.Get(searchPath, func(w http.ResponseWriter, r *http.Request) {
		zip := strings.TrimSpace(r.URL.Query().Get("zip_code"))
		if zip == "" {
			zip = sampleDefaultZip
		}
		radius := sampleDefaultRadius
		if raw := strings.TrimSpace(r.URL.Query().Get("radius")); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || parsed <= 0 {
				writeSampleJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid radius"})
				return
			}
			radius = parsed
		}

		within := make([]SampleShop, 0, len(shops))
		for _, shop := range shops {
			if distanceMiles(sampleCenter.Lat, sampleCenter.Lng, shop.Lat, shop.Lng) <= radius {
				within = append(within, shop)
			}
		}
		top := append([]SampleShop(nil), within...)
		sort.SliceStable(top, func(i, j int) bool { return top[i].Rating > top[j].Rating })
		if len(top) > sampleTopCount {
			top = top[:sampleTopCount]
		}

		writeSampleJSON(w, http.StatusOK, map[string]interface{}{
			"zip_code":        zip,
			"radius":          radius,
			"coffee_shops":    within,
			"top_shops":       top,
			"all_shops_count": len(within),
			"lat":             sampleCenter.Lat,
			"lng":             sampleCenter.Lng,
		})
	})
	r.Get(detailPath+"{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err == nil {
			for _, shop := range shops {
				if shop.ID == id {
					writeSampleJSON(w, http.StatusOK, sampleDetail{
						SampleShop: shop,
						Hours:      "7:00 AM - 6:00 PM",
						Phone:      "(808) 555-0123",
						Website:    "https://example.com",
						Reviews: []sampleReview{
							{User: "CoffeeLover", Rating: 5, Comment: "Amazing signature drinks!"},
							{User: "LocalGuy", Rating: 4, Comment: "Great atmosphere and friendly staff."},
						},
					})
					return
				}
			}
		}
		writeSampleJSON(w, http.StatusNotFound, map[string]string{"error": "Coffee shop not found"})
	})
	return r
}

func distanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMiles * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func writeSampleJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
