package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bizcenter/marketplace/internal/domain"
	pkgkafka "github.com/bizcenter/marketplace/pkg/kafka"
)

// Kafka topics for marketplace domain events.
var (
	TopicShopCreated     = pkgkafka.Topic("shop", "created")
	TopicShopUpdated     = pkgkafka.Topic("shop", "updated")
	TopicShopDeleted     = pkgkafka.Topic("shop", "deleted")
	TopicShopReviewAdded = pkgkafka.Topic("shop", "review_added")
	TopicProductCreated  = pkgkafka.Topic("product", "created")
	TopicProductUpdated  = pkgkafka.Topic("product", "updated")
	TopicProductDeleted  = pkgkafka.Topic("product", "deleted")
)

// Aggregate type constants.
const (
	AggregateTypeShop    = "shop"
	AggregateTypeProduct = "product"
)

// Source identifier for events originating from this service.
const SourceMarketplace = "marketplace"

// ShopData is the payload for shop.created and shop.updated events.
type ShopData struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	OwnerID     string  `json:"owner"`
	Rating      float64 `json:"rating"`
}

// ShopDeletedData is the payload for a shop.deleted event.
type ShopDeletedData struct {
	ID         string   `json:"id"`
	ProductIDs []string `json:"products"`
}

// ReviewAddedData is the payload for a shop.review_added event.
type ReviewAddedData struct {
	ShopID string  `json:"shopId"`
	UserID string  `json:"userId"`
	Rating int     `json:"rating"`
	NewAvg float64 `json:"shopRating"`
}

// ProductData is the payload for product.created and product.updated events.
type ProductData struct {
	ID       string  `json:"id"`
	ShopID   string  `json:"shop"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
}

// ProductDeletedData is the payload for a product.deleted event.
type ProductDeletedData struct {
	ID     string `json:"id"`
	ShopID string `json:"shop"`
}

// Producer publishes marketplace domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

// PublishShopCreated publishes a shop.created event.
func (p *Producer) PublishShopCreated(ctx context.Context, shop *domain.Shop) error {
	return p.publish(ctx, TopicShopCreated, shop.ID, AggregateTypeShop, shopData(shop))
}

// PublishShopUpdated publishes a shop.updated event.
func (p *Producer) PublishShopUpdated(ctx context.Context, shop *domain.Shop) error {
	return p.publish(ctx, TopicShopUpdated, shop.ID, AggregateTypeShop, shopData(shop))
}

// PublishShopDeleted publishes a shop.deleted event. The product id list is
// included so downstream consumers can react to references the delete leaves
// behind.
func (p *Producer) PublishShopDeleted(ctx context.Context, shop *domain.Shop) error {
	data := ShopDeletedData{ID: shop.ID, ProductIDs: shop.ProductIDs}
	return p.publish(ctx, TopicShopDeleted, shop.ID, AggregateTypeShop, data)
}

// PublishReviewAdded publishes a shop.review_added event.
func (p *Producer) PublishReviewAdded(ctx context.Context, shop *domain.Shop, review domain.Review) error {
	data := ReviewAddedData{
		ShopID: shop.ID,
		UserID: review.UserID,
		Rating: review.Rating,
		NewAvg: shop.Rating,
	}
	return p.publish(ctx, TopicShopReviewAdded, shop.ID, AggregateTypeShop, data)
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, product *domain.Product) error {
	data := ProductDeletedData{ID: product.ID, ShopID: product.ShopID}
	return p.publish(ctx, TopicProductDeleted, product.ID, AggregateTypeProduct, data)
}

func shopData(shop *domain.Shop) ShopData {
	return ShopData{
		ID:          shop.ID,
		Name:        shop.Name,
		Description: shop.Description,
		ImageURL:    shop.ImageURL,
		OwnerID:     shop.OwnerID,
		Rating:      shop.Rating,
	}
}

func productData(product *domain.Product) ProductData {
	return ProductData{
		ID:       product.ID,
		ShopID:   product.ShopID,
		Name:     product.Name,
		Category: product.Category,
		Price:    product.Price,
		Stock:    product.Stock,
	}
}
