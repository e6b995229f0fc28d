package repository

import (
	"context"

	"github.com/bizcenter/marketplace/internal/domain"
)

// ShopRepository defines the interface for shop persistence operations.
// GetForUpdate takes an exclusive lock on the shop row for the duration of
// the surrounding transaction, serializing every mutation of the shop's
// product list, reviews and rating.
type ShopRepository interface {
	// Create inserts a new shop into the store.
	Create(ctx context.Context, shop *domain.Shop) error

	// GetByID retrieves a shop by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Shop, error)

	// GetForUpdate retrieves a shop and locks its row until the enclosing
	// transaction ends. Only meaningful inside a TxRunner callback.
	GetForUpdate(ctx context.Context, id string) (*domain.Shop, error)

	// List returns all shops ordered by creation time.
	List(ctx context.Context) ([]domain.Shop, error)

	// Update persists changes to an existing shop, including its embedded
	// product list, reviews and derived rating.
	Update(ctx context.Context, shop *domain.Shop) error

	// Delete removes a shop from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns all products ordered by creation time.
	List(ctx context.Context) ([]domain.Product, error)

	// ListByShopID returns all products belonging to the given shop.
	ListByShopID(ctx context.Context, shopID string) ([]domain.Product, error)

	// Update modifies an existing product in the store.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// Store groups the repositories visible inside a transaction.
type Store interface {
	Shops() ShopRepository
	Products() ProductRepository
}

// TxRunner executes fn within a single database transaction. The Store passed
// to fn is bound to that transaction; any error returned by fn rolls the
// whole transaction back, so callers never observe partial writes.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
