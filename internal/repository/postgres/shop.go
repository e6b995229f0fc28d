package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bizcenter/marketplace/internal/domain"
	"github.com/bizcenter/marketplace/pkg/database"
	apperrors "github.com/bizcenter/marketplace/pkg/errors"
)

// ShopRepository implements shop persistence using PostgreSQL. The product id
// list and the embedded reviews are stored as JSONB columns on the shop row,
// so a single row lock covers everything the shop's mutations touch.
type ShopRepository struct {
	pool database.DBTX
}

// NewShopRepository creates a new PostgreSQL-backed shop repository.
func NewShopRepository(pool database.DBTX) *ShopRepository {
	return &ShopRepository{pool: pool}
}

const shopColumns = `id, name, description, image_url, owner_id, product_ids, reviews, rating, created_at, updated_at`

// Create inserts a new shop into the database.
func (r *ShopRepository) Create(ctx context.Context, shop *domain.Shop) error {
	productIDsJSON, reviewsJSON, err := marshalShopEmbedded(shop)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO shops (` + shopColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.pool.Exec(ctx, query,
		shop.ID,
		shop.Name,
		shop.Description,
		shop.ImageURL,
		shop.OwnerID,
		productIDsJSON,
		reviewsJSON,
		shop.Rating,
		shop.CreatedAt,
		shop.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert shop: %w", err)
	}

	return nil
}

// GetByID retrieves a shop by id.
func (r *ShopRepository) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate retrieves a shop and takes an exclusive row lock that is held
// until the surrounding transaction ends.
func (r *ShopRepository) GetForUpdate(ctx context.Context, id string) (*domain.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *ShopRepository) getOne(ctx context.Context, query, id string) (*domain.Shop, error) {
	row := r.pool.QueryRow(ctx, query, id)

	shop, err := scanShop(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan shop: %w", err)
	}

	return shop, nil
}

// List returns all shops ordered by creation time.
func (r *ShopRepository) List(ctx context.Context) ([]domain.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()

	shops := []domain.Shop{}
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		shops = append(shops, *shop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shops: %w", err)
	}

	return shops, nil
}

// Update persists the shop's mutable fields along with its embedded product
// list, reviews and derived rating.
func (r *ShopRepository) Update(ctx context.Context, shop *domain.Shop) error {
	productIDsJSON, reviewsJSON, err := marshalShopEmbedded(shop)
	if err != nil {
		return err
	}

	shop.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE shops
		SET name = $2, description = $3, image_url = $4, product_ids = $5,
		    reviews = $6, rating = $7, updated_at = $8
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		shop.ID,
		shop.Name,
		shop.Description,
		shop.ImageURL,
		productIDsJSON,
		reviewsJSON,
		shop.Rating,
		shop.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update shop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a shop by id.
func (r *ShopRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shops WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func marshalShopEmbedded(shop *domain.Shop) ([]byte, []byte, error) {
	productIDs := shop.ProductIDs
	if productIDs == nil {
		productIDs = []string{}
	}
	productIDsJSON, err := json.Marshal(productIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal product ids: %w", err)
	}

	reviews := shop.Reviews
	if reviews == nil {
		reviews = []domain.Review{}
	}
	reviewsJSON, err := json.Marshal(reviews)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal reviews: %w", err)
	}

	return productIDsJSON, reviewsJSON, nil
}

func scanShop(row pgx.Row) (*domain.Shop, error) {
	var (
		shop           domain.Shop
		productIDsJSON []byte
		reviewsJSON    []byte
	)

	if err := row.Scan(
		&shop.ID,
		&shop.Name,
		&shop.Description,
		&shop.ImageURL,
		&shop.OwnerID,
		&productIDsJSON,
		&reviewsJSON,
		&shop.Rating,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	); err != nil {
		return nil, err
	}

	shop.ProductIDs = []string{}
	if len(productIDsJSON) > 0 {
		if err := json.Unmarshal(productIDsJSON, &shop.ProductIDs); err != nil {
			return nil, fmt.Errorf("unmarshal product ids: %w", err)
		}
	}

	shop.Reviews = []domain.Review{}
	if len(reviewsJSON) > 0 {
		if err := json.Unmarshal(reviewsJSON, &shop.Reviews); err != nil {
			return nil, fmt.Errorf("unmarshal reviews: %w", err)
		}
	}

	return &shop, nil
}
