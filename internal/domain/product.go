package domain

import (
	"time"
)

// Product is a catalog item belonging to exactly one shop. ShopID is set at
// creation and immutable afterwards.
type Product struct {
	ID          string    `json:"id"`
	ShopID      string    `json:"shop"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
