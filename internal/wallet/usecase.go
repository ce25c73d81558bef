package wallet

import (
	"context"

	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/fekuna/blueice-inventory-service/internal/wallet/dto"
)

type UseCase interface {
	ApplyOrderBottles(ctx context.Context, input *dto.OrderBottlesInput) (*dto.OrderBottlesResult, error)
	ListCustomerWallets(ctx context.Context, customerID string) ([]model.BottleWallet, error)
}
