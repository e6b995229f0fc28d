package postgres

import (
	"context"
	"fmt"

	"github.com/bizcenter/marketplace/internal/repository"
	"github.com/bizcenter/marketplace/pkg/database"
)

// Store bundles the PostgreSQL repositories over a shared query surface and
// implements repository.TxRunner. The same type serves both the pool-backed
// store and the transaction-scoped stores handed to WithinTx callbacks.
type Store struct {
	db       database.DBTX
	shops    *ShopRepository
	products *ProductRepository
}

// NewStore creates a store over the given pool, transaction or mock.
func NewStore(db database.DBTX) *Store {
	return &Store{
		db:       db,
		shops:    NewShopRepository(db),
		products: NewProductRepository(db),
	}
}

// Shops returns the shop repository bound to this store.
func (s *Store) Shops() repository.ShopRepository { return s.shops }

// Products returns the product repository bound to this store.
func (s *Store) Products() repository.ProductRepository { return s.products }

// WithinTx runs fn inside a single transaction. The store passed to fn issues
// every query through that transaction, so a GetForUpdate at the start of fn
// holds its row lock until commit or rollback.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, st repository.Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewStore(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
