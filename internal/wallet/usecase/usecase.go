package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/inventory"
	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/fekuna/blueice-inventory-service/internal/wallet"
	"github.com/fekuna/blueice-inventory-service/internal/wallet/dto"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/fekuna/blueice-inventory-service/pkg/metrics"
	"go.uber.org/zap"
)

type walletUseCase struct {
	repo    wallet.Repository
	cache   inventory.Cache
	metrics *metrics.Registry
	logger  logger.ZapLogger
	now     func() time.Time
}

func NewWalletUseCase(repo wallet.Repository, cache inventory.Cache, m *metrics.Registry, log logger.ZapLogger) wallet.UseCase {
	return &walletUseCase{
		repo:    repo,
		cache:   cache,
		metrics: m,
		logger:  log,
		now:     time.Now,
	}
}

func (uc *walletUseCase) ApplyOrderBottles(ctx context.Context, input *dto.OrderBottlesInput) (*dto.OrderBottlesResult, error) {
	if strings.TrimSpace(input.OrderID) == "" {
		return nil, apperror.Validation("order id is required")
	}
	if strings.TrimSpace(input.CustomerID) == "" {
		return nil, apperror.Validation("customer id is required")
	}

	now := uc.now()
	seen := make(map[string]bool, len(input.Items))
	deltas := make([]model.BottleDelta, 0, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == "" {
			return nil, apperror.Validation("order %s: product id is required", input.OrderID)
		}
		if item.FilledGiven < 0 || item.EmptyTaken < 0 || item.DamagedReturned < 0 {
			return nil, apperror.Validation("order %s: bottle counts for product %s cannot be negative", input.OrderID, item.ProductID)
		}
		if item.FilledGiven > inventory.MaxQuantity || item.EmptyTaken > inventory.MaxQuantity || item.DamagedReturned > inventory.MaxQuantity {
			return nil, apperror.Validation("order %s: bottle counts for product %s cannot exceed %d", input.OrderID, item.ProductID, inventory.MaxQuantity)
		}
		if seen[item.ProductID] {
			return nil, apperror.Validation("order %s: product %s listed twice", input.OrderID, item.ProductID)
		}
		seen[item.ProductID] = true

		if item.FilledGiven == 0 && item.EmptyTaken == 0 && item.DamagedReturned == 0 {
			continue
		}
		deltas = append(deltas, model.BottleDelta{
			OrderID:         input.OrderID,
			CustomerID:      input.CustomerID,
			ProductID:       item.ProductID,
			FilledGiven:     item.FilledGiven,
			EmptyTaken:      item.EmptyTaken,
			DamagedReturned: item.DamagedReturned,
			CreatedAt:       now,
		})
	}

	result := &dto.OrderBottlesResult{Wallets: []model.BottleWallet{}}
	if len(deltas) == 0 {
		return result, nil
	}

	wallets, err := uc.repo.ApplyDeltas(ctx, deltas)
	if err != nil {
		uc.metrics.WalletDeltas.WithLabelValues("failed").Add(float64(len(deltas)))
		return nil, err
	}
	result.Wallets = wallets
	result.Skipped = len(deltas) - len(wallets)

	uc.metrics.WalletDeltas.WithLabelValues("applied").Add(float64(len(wallets)))
	uc.metrics.WalletDeltas.WithLabelValues("skipped").Add(float64(result.Skipped))

	for _, w := range wallets {
		if w.BottleBalance < 0 {
			// Customer returned more than the ledger says they hold; kept for reconciliation.
			uc.logger.Warn("bottle wallet went negative",
				zap.String("customer_id", w.CustomerID),
				zap.String("product_id", w.ProductID),
				zap.Int("balance", w.BottleBalance),
				zap.String("order_id", input.OrderID),
			)
		}
	}

	if len(wallets) > 0 && uc.cache != nil {
		if err := inventory.InvalidateStats(context.WithoutCancel(ctx), uc.cache); err != nil {
			uc.logger.Warn("failed to invalidate inventory stats", zap.Error(err))
		}
	}

	uc.logger.Info("order bottles applied",
		zap.String("order_id", input.OrderID),
		zap.String("customer_id", input.CustomerID),
		zap.Int("applied", len(wallets)),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (uc *walletUseCase) ListCustomerWallets(ctx context.Context, customerID string) ([]model.BottleWallet, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, apperror.Validation("customer id is required")
	}
	return uc.repo.ListByCustomer(ctx, customerID)
}
