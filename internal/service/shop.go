package service

import (
	"context"
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

// ShopService implements the business logic for shop operations. Every
// mutation of a shop runs inside a transaction holding the shop's row lock,
// so concurrent writers against the same shop are serialized.
type ShopService struct {
	shops    repository.ShopRepository
	tx       repository.TxRunner
	producer *event.Producer
	logger   *slog.Logger
}

// NewShopService creates a new shop service.
func NewShopService(shops repository.ShopRepository, tx repository.TxRunner, producer *event.Producer, logger *slog.Logger) *ShopService {
	return &ShopService{
		shops:    shops,
		tx:       tx,
		producer: producer,
		logger:   logger,
	}
}

// CreateShopInput holds the parameters for creating a shop.
type CreateShopInput struct {
	OwnerID     string
	Name        string
	Description string
	ImageURL    string
}

// UpdateShopInput holds the parameters for a partial shop update. Nil fields
// are left untouched. Owner, product list, reviews and rating are not
// settable through updates.
type UpdateShopInput struct {
	Name        *string
	Description *string
	ImageURL    *string
}

// CreateShop creates a new shop owned by the given user. The shop starts with
// no products, no reviews and a rating of 0.
func (s *ShopService) CreateShop(ctx context.Context, input *CreateShopInput) (*domain.Shop, error) {
	if input.OwnerID == "" {
		return nil, apperrors.InvalidInput("owner is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("shop name is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.InvalidInput("shop description is required")
	}
	if strings.TrimSpace(input.ImageURL) == "" {
		return nil, apperrors.InvalidInput("shop image url is required")
	}

	now := time.Now().UTC()
	shop := &domain.Shop{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		OwnerID:     input.OwnerID,
		ProductIDs:  []string{},
		Reviews:     []domain.Review{},
		Rating:      0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.shops.Create(ctx, shop); err != nil {
		return nil, fmt.Errorf("create shop: %w", err)
	}

	if err := s.producer.PublishShopCreated(ctx, shop); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish shop.created event",
			slog.String("shop_id", shop.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "shop created",
		slog.String("shop_id", shop.ID),
		slog.String("owner_id", shop.OwnerID),
	)

	return shop, nil
}

// GetShop retrieves a shop by its ID, including its embedded reviews and
// derived rating.
func (s *ShopService) GetShop(ctx context.Context, id string) (*domain.Shop, error) {
	shop, err := s.shops.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get shop by id: %w", err)
	}
	return shop, nil
}

// ListShops returns all shops.
func (s *ShopService) ListShops(ctx context.Context) ([]domain.Shop, error) {
	shops, err := s.shops.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	return shops, nil
}

// UpdateShop applies a partial update to a shop. Only the shop's owner may
// update it.
func (s *ShopService) UpdateShop(ctx context.Context, id, actorID string, input *UpdateShopInput) (*domain.Shop, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, apperrors.InvalidInput("shop name must not be empty")
	}
	if input.Description != nil && strings.TrimSpace(*input.Description) == "" {
		return nil, apperrors.InvalidInput("shop description must not be empty")
	}
	if input.ImageURL != nil && strings.TrimSpace(*input.ImageURL) == "" {
		return nil, apperrors.InvalidInput("shop image url must not be empty")
	}

	var updated *domain.Shop
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		shop, err := st.Shops().GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("get shop for update: %w", err)
		}
		if shop.OwnerID != actorID {
			return apperrors.Forbidden("only the shop owner may update the shop")
		}

		if input.Name != nil {
			shop.Name = *input.Name
		}
		if input.Description != nil {
			shop.Description = *input.Description
		}
		if input.ImageURL != nil {
			shop.ImageURL = *input.ImageURL
		}

		if err := st.Shops().Update(ctx, shop); err != nil {
			return fmt.Errorf("update shop: %w", err)
		}

		updated = shop
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishShopUpdated(ctx, updated); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish shop.updated event",
			slog.String("shop_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "shop updated", slog.String("shop_id", updated.ID))

	return updated, nil
}

// DeleteShop removes a shop. Only the shop's owner may delete it. Products
// created under the shop are NOT deleted: their shop references are left
// dangling and surface as integrity faults on later product operations.
func (s *ShopService) DeleteShop(ctx context.Context, id, actorID string) error {
	var deleted *domain.Shop
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		shop, err := st.Shops().GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("get shop for update: %w", err)
		}
		if shop.OwnerID != actorID {
			return apperrors.Forbidden("only the shop owner may delete the shop")
		}

		if err := st.Shops().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete shop: %w", err)
		}

		deleted = shop
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.producer.PublishShopDeleted(ctx, deleted); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish shop.deleted event",
			slog.String("shop_id", id),
			slog.String("error", err.Error()),
		)
	}

	if len(deleted.ProductIDs) > 0 {
		s.logger.WarnContext(ctx, "shop deleted with products still referencing it",
			slog.String("shop_id", id),
			slog.Int("product_count", len(deleted.ProductIDs)),
		)
	}

	s.logger.InfoContext(ctx, "shop deleted", slog.String("shop_id", id))

	return nil
}
