package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bizcenter/marketplace/internal/domain"
	"github.com/bizcenter/marketplace/internal/event"
	"github.com/bizcenter/marketplace/internal/repository"
	apperrors "github.com/bizcenter/marketplace/pkg/errors"
)

// ReviewService implements the business logic for shop reviews. Reviews are
// embedded in the shop record and append-only; appending one and recomputing
// the shop's rating happens under the shop's row lock, so concurrent reviews
// are serialized and the stored rating always matches the stored review list.
type ReviewService struct {
	shops    repository.ShopRepository
	tx       repository.TxRunner
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(shops repository.ShopRepository, tx repository.TxRunner, producer *event.Producer, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		shops:    shops,
		tx:       tx,
		producer: producer,
		logger:   logger,
	}
}

// AddReviewInput holds the parameters for adding a review to a shop.
type AddReviewInput struct {
	ShopID  string
	UserID  string
	Rating  int
	Comment string
}

// AddReview appends a review to a shop and recomputes the shop's rating from
// the full review list. Returns the updated shop. A user may review any shop,
// including their own, and may review the same shop more than once.
func (s *ReviewService) AddReview(ctx context.Context, input *AddReviewInput) (*domain.Shop, error) {
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user is required")
	}
	if input.Rating < domain.MinRating || input.Rating > domain.MaxRating {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}
	if strings.TrimSpace(input.Comment) == "" {
		return nil, apperrors.InvalidInput("comment is required")
	}

	review := domain.Review{
		UserID:    input.UserID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	}

	var updated *domain.Shop
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		shop, err := st.Shops().GetForUpdate(ctx, input.ShopID)
		if err != nil {
			return fmt.Errorf("get shop for update: %w", err)
		}

		shop.AddReview(review)
		if err := st.Shops().Update(ctx, shop); err != nil {
			return fmt.Errorf("update shop reviews: %w", err)
		}

		updated = shop
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishReviewAdded(ctx, updated, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish shop.review_added event",
			slog.String("shop_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review added",
		slog.String("shop_id", updated.ID),
		slog.String("user_id", review.UserID),
		slog.Int("rating", review.Rating),
		slog.Float64("shop_rating", updated.Rating),
	)

	return updated, nil
}

// ListReviews returns a shop's reviews in insertion order.
func (s *ReviewService) ListReviews(ctx context.Context, shopID string) ([]domain.Review, error) {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("get shop by id: %w", err)
	}
	return shop.Reviews, nil
}
