package inventory

import (
	"context"

	"github.com/fekuna/blueice-inventory-service/internal/inventory/dto"
	"github.com/fekuna/blueice-inventory-service/internal/model"
)

// MutateFunc receives the locked product, updates its counters in place and
// returns the movement log entry to persist with it. Returning an error aborts
// the transaction.
type MutateFunc func(p *model.Product) (*model.StockMovement, error)

type Repository interface {
	// ApplyMovement locks the product row, runs mutate against it and persists
	// the product together with the movement in one transaction.
	ApplyMovement(ctx context.Context, productID string, mutate MutateFunc) (*model.Product, error)

	// Snapshot returns every product and, per product id, the sum of positive
	// wallet balances, read in one consistent transaction.
	Snapshot(ctx context.Context) ([]model.Product, map[string]int, error)
	ListBottleHolders(ctx context.Context, productID string) ([]model.BottleHolder, error)

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
