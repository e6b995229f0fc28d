package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bizcenter/marketplace/internal/domain"
	"github.com/bizcenter/marketplace/internal/event"
	"github.com/bizcenter/marketplace/internal/repository"
	apperrors "github.com/bizcenter/marketplace/pkg/errors"
)

// ProductService implements the business logic for product operations.
// Creating and deleting a product mutates both the product row and the owning
// shop's product list, so those operations run in a single transaction under
// the shop's row lock.
type ProductService struct {
	products repository.ProductRepository
	shops    repository.ShopRepository
	tx       repository.TxRunner
	producer *event.Producer
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(products repository.ProductRepository, shops repository.ShopRepository, tx repository.TxRunner, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{
		products: products,
		shops:    shops,
		tx:       tx,
		producer: producer,
		logger:   logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	ShopID      string
	Name        string
	Description string
	Category    string
	ImageURL    string
	Price       float64
	Stock       int
}

// UpdateProductInput holds the parameters for a partial product update. Nil
// fields are left untouched. The product's id and shop reference are not
// settable through updates.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *string
	ImageURL    *string
	Price       *float64
	Stock       *int
}

func validateCreateProduct(input *CreateProductInput) error {
	if input.ShopID == "" {
		return apperrors.InvalidInput("shop is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.InvalidInput("product name is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return apperrors.InvalidInput("product description is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return apperrors.InvalidInput("product category is required")
	}
	if strings.TrimSpace(input.ImageURL) == "" {
		return apperrors.InvalidInput("product image url is required")
	}
	if input.Price < 0 {
		return apperrors.InvalidInput("price must not be negative")
	}
	if input.Stock < 0 {
		return apperrors.InvalidInput("stock must not be negative")
	}
	return nil
}

// CreateProduct creates a product under a shop and links it into the shop's
// product list. Both writes happen in one transaction: a failure of either
// leaves no trace of the product.
func (s *ProductService) CreateProduct(ctx context.Context, actorID string, input *CreateProductInput) (*domain.Product, error) {
	if err := validateCreateProduct(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		ShopID:      input.ShopID,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Price:       input.Price,
		Stock:       input.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		shop, err := st.Shops().GetForUpdate(ctx, input.ShopID)
		if err != nil {
			return fmt.Errorf("get shop for update: %w", err)
		}
		if shop.OwnerID != actorID {
			return apperrors.Forbidden("only the shop owner may add products")
		}

		if err := st.Products().Create(ctx, product); err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		shop.AddProduct(product.ID)
		if err := st.Shops().Update(ctx, shop); err != nil {
			return fmt.Errorf("link product to shop: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("shop_id", product.ShopID),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// ListProducts returns all products.
func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// ListShopProducts returns the products of a single shop. The shop must
// exist.
func (s *ProductService) ListShopProducts(ctx context.Context, shopID string) ([]domain.Product, error) {
	if _, err := s.shops.GetByID(ctx, shopID); err != nil {
		return nil, fmt.Errorf("get shop by id: %w", err)
	}

	products, err := s.products.ListByShopID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("list shop products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies a partial update to a product. Ownership is resolved
// through the product's shop: only that shop's owner may update it. A product
// whose shop no longer exists is an integrity fault, not a not-found.
func (s *ProductService) UpdateProduct(ctx context.Context, id, actorID string, input *UpdateProductInput) (*domain.Product, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, apperrors.InvalidInput("product name must not be empty")
	}
	if input.Description != nil && strings.TrimSpace(*input.Description) == "" {
		return nil, apperrors.InvalidInput("product description must not be empty")
	}
	if input.Category != nil && strings.TrimSpace(*input.Category) == "" {
		return nil, apperrors.InvalidInput("product category must not be empty")
	}
	if input.ImageURL != nil && strings.TrimSpace(*input.ImageURL) == "" {
		return nil, apperrors.InvalidInput("product image url must not be empty")
	}
	if input.Price != nil && *input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.Stock != nil && *input.Stock < 0 {
		return nil, apperrors.InvalidInput("stock must not be negative")
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	shop, err := s.shops.GetByID(ctx, product.ShopID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.IntegrityFault(
				fmt.Sprintf("product %s references missing shop %s", id, product.ShopID))
		}
		return nil, fmt.Errorf("get shop by id: %w", err)
	}
	if shop.OwnerID != actorID {
		return nil, apperrors.Forbidden("only the shop owner may update products")
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", product.ID))

	return product, nil
}

// DeleteProduct removes a product and unlinks it from its shop's product
// list in one transaction. A product whose shop no longer exists is an
// integrity fault.
func (s *ProductService) DeleteProduct(ctx context.Context, id, actorID string) error {
	var deleted *domain.Product
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		product, err := st.Products().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get product by id: %w", err)
		}

		shop, err := st.Shops().GetForUpdate(ctx, product.ShopID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.IntegrityFault(
					fmt.Sprintf("product %s references missing shop %s", id, product.ShopID))
			}
			return fmt.Errorf("get shop for update: %w", err)
		}
		if shop.OwnerID != actorID {
			return apperrors.Forbidden("only the shop owner may delete products")
		}

		shop.RemoveProduct(id)
		if err := st.Shops().Update(ctx, shop); err != nil {
			return fmt.Errorf("unlink product from shop: %w", err)
		}

		if err := st.Products().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}

		deleted = product
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.producer.PublishProductDeleted(ctx, deleted); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
		slog.String("shop_id", deleted.ShopID),
	)

	return nil
}
