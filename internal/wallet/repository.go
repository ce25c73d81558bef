package wallet

import (
	"context"

	"github.com/fekuna/blueice-inventory-service/internal/model"
)

type Repository interface {
	// ApplyDeltas records the deltas of one order and folds each into its
	// (customer, product) wallet, all in one transaction. A delta already
	// recorded for the same order and product, or for a product that is not
	// returnable, is skipped. Only the wallets that changed are returned.
	ApplyDeltas(ctx context.Context, deltas []model.BottleDelta) ([]model.BottleWallet, error)
	ListByCustomer(ctx context.Context, customerID string) ([]model.BottleWallet, error)
}
