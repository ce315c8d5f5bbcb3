package domain

import (
	"math"
	"strings"
)

const (
	// MaxStars is the length of every rating glyph sequence.
	MaxStars = 5
	// HighRatingThreshold is the "top rated only" filter cut-off.
	HighRatingThreshold = 4.5

	filledStar = "★"
	emptyStar  = "☆"
)

// StarCount returns floor(rating) clamped to [0, MaxStars].
func StarCount(rating float64) int {
	if math.IsNaN(rating) || rating <= 0 {
		return 0
	}
	n := int(math.Floor(rating))
	if n > MaxStars {
		return MaxStars
	}
	return n
}

// StarGlyphs renders floor(rating) filled stars followed by the remaining empty ones.
func StarGlyphs(rating float64) string {
	filled := StarCount(rating)
	return strings.Repeat(filledStar, filled) + strings.Repeat(emptyStar, MaxStars-filled)
}

// ReviewGlyphs renders one filled star per point of an integer review rating.
func ReviewGlyphs(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > MaxStars {
		rating = MaxStars
	}
	return strings.Repeat(filledStar, rating)
}
