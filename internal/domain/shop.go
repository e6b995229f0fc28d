package domain

import (
	"time"
)

// Shop is a storefront owned by a single business owner. ProductIDs is the
// ordered list of products created under the shop; Reviews are embedded in
// the shop record and Rating is derived from them, never set directly.
type Shop struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	OwnerID     string    `json:"owner"`
	ProductIDs  []string  `json:"products"`
	Reviews     []Review  `json:"reviews"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasProduct reports whether the given product id is in the shop's list.
func (s *Shop) HasProduct(productID string) bool {
	for _, id := range s.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// AddProduct appends a product id to the shop's list if not already present.
func (s *Shop) AddProduct(productID string) {
	if s.HasProduct(productID) {
		return
	}
	s.ProductIDs = append(s.ProductIDs, productID)
}

// RemoveProduct deletes a product id from the shop's list, preserving the
// order of the remaining entries. Removing an absent id is a no-op.
func (s *Shop) RemoveProduct(productID string) {
	out := s.ProductIDs[:0]
	for _, id := range s.ProductIDs {
		if id != productID {
			out = append(out, id)
		}
	}
	s.ProductIDs = out
}

// AddReview appends a review and recomputes the derived rating.
func (s *Shop) AddReview(r Review) {
	s.Reviews = append(s.Reviews, r)
	s.Rating = AggregateRating(s.Reviews)
}
