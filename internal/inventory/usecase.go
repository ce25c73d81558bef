package inventory

import (
	"context"

	"github.com/fekuna/blueice-inventory-service/internal/inventory/dto"
	"github.com/fekuna/blueice-inventory-service/internal/model"
)

type UseCase interface {
	Restock(ctx context.Context, input *dto.RestockInput) (*model.Product, error)
	Refill(ctx context.Context, input *dto.RefillInput) (*model.Product, error)
	RecordDamageOrLoss(ctx context.Context, input *dto.DamageInput) (*model.Product, error)
	AdjustStock(ctx context.Context, input *dto.AdjustmentInput) (*model.Product, error)

	GetInventoryStats(ctx context.Context) (*model.InventoryStats, error)
	GetBottlesWithCustomers(ctx context.Context, productID string) ([]model.BottleHolder, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
