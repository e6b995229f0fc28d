package domain

import (
	"math"
	"time"
)

// Rating bounds for a single review.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a single customer review embedded in a shop. Reviews are
// append-only: once stored they are never edited or removed.
type Review struct {
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// AggregateRating computes the shop rating from its full review list: the
// arithmetic mean of all review ratings rounded half away from zero to one
// decimal place. An empty list yields 0.
func AggregateRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	mean := float64(sum) / float64(len(reviews))
	return math.Round(mean*10) / 10
}
