package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/auth"
	"github.com/fekuna/blueice-inventory-service/internal/inventory"
	"github.com/fekuna/blueice-inventory-service/internal/inventory/dto"
	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/fekuna/blueice-inventory-service/pkg/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	StatsTTL     time.Duration // zero disables the stats cache
}

type inventoryUseCase struct {
	repo      inventory.Repository
	cache     inventory.Cache
	publisher inventory.EventPublisher
	authz     auth.Authorizer
	metrics   *metrics.Registry
	logger    logger.ZapLogger
	opts      Options
	now       func() time.Time
}

// NewInventoryUseCase wires the stock movement operations. cache and publisher may be nil.
func NewInventoryUseCase(
	repo inventory.Repository,
	cache inventory.Cache,
	publisher inventory.EventPublisher,
	authz auth.Authorizer,
	m *metrics.Registry,
	log logger.ZapLogger,
	opts Options,
) inventory.UseCase {
	return &inventoryUseCase{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		authz:     authz,
		metrics:   m,
		logger:    log,
		opts:      opts,
		now:       time.Now,
	}
}

func (uc *inventoryUseCase) Restock(ctx context.Context, input *dto.RestockInput) (*model.Product, error) {
	op := inventory.Restock{Filled: input.Filled, Empty: input.Empty}
	return uc.apply(ctx, input.ProductID, op, nil, input.Notes)
}

func (uc *inventoryUseCase) Refill(ctx context.Context, input *dto.RefillInput) (*model.Product, error) {
	op := inventory.Refill{Quantity: input.Quantity}
	return uc.apply(ctx, input.ProductID, op, nil, input.Notes)
}

func (uc *inventoryUseCase) RecordDamageOrLoss(ctx context.Context, input *dto.DamageInput) (*model.Product, error) {
	op, err := inventory.NewDamageOrLoss(input.Type, input.Quantity, input.Reason)
	if err != nil {
		uc.reject(input.Type, err)
		return nil, err
	}
	return uc.apply(ctx, input.ProductID, op, &input.Reason, input.Notes)
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustmentInput) (*model.Product, error) {
	op := inventory.Adjust{
		Target: model.StockLevels{
			Filled:  input.StockFilled,
			Empty:   input.StockEmpty,
			Damaged: input.StockDamaged,
		},
		Reason: input.Reason,
	}
	return uc.apply(ctx, input.ProductID, op, &input.Reason, input.Notes)
}

// apply runs op as one locked read-modify-write. Serialization conflicts are
// retried up to MaxRetries times; every other error is returned as is and
// leaves the product untouched.
func (uc *inventoryUseCase) apply(ctx context.Context, productID string, op inventory.Operation, reason, notes *string) (*model.Product, error) {
	if strings.TrimSpace(productID) == "" {
		err := apperror.Validation("productId is required")
		uc.reject(op.Kind(), err)
		return nil, err
	}
	if err := op.Validate(); err != nil {
		uc.reject(op.Kind(), err)
		return nil, err
	}
	if op.Privileged() {
		if err := uc.authz.Authorize(ctx, "stock adjustment"); err != nil {
			uc.logger.Warn("privileged stock movement refused",
				zap.String("product_id", productID),
				zap.String("user_id", auth.GetUserID(ctx)),
			)
			uc.reject(op.Kind(), err)
			return nil, err
		}
	}

	var createdBy *string
	if userID := auth.GetUserID(ctx); userID != "" {
		createdBy = &userID
	}

	var movement *model.StockMovement
	mutate := func(p *model.Product) (*model.StockMovement, error) {
		before := p.Stock()
		after, err := op.Apply(before)
		if err != nil {
			return nil, err
		}

		now := uc.now()
		p.SetStock(after)
		p.UpdatedAt = now

		change := after.Sub(before)
		movement = &model.StockMovement{
			ID:            uuid.New().String(),
			ProductID:     p.ID,
			Kind:          op.Kind(),
			FilledChange:  change.Filled,
			EmptyChange:   change.Empty,
			DamagedChange: change.Damaged,
			FilledAfter:   after.Filled,
			EmptyAfter:    after.Empty,
			DamagedAfter:  after.Damaged,
			Reason:        nonEmpty(reason),
			Notes:         nonEmpty(notes),
			CreatedBy:     createdBy,
			CreatedAt:     now,
		}
		return movement, nil
	}

	var (
		product *model.Product
		err     error
	)
	for attempt := 1; ; attempt++ {
		product, err = uc.repo.ApplyMovement(ctx, productID, mutate)
		if err == nil || !errors.Is(err, apperror.ErrConflict) || attempt > uc.opts.MaxRetries {
			break
		}
		uc.metrics.MovementRetries.Inc()
		uc.logger.Warn("stock movement conflicted, retrying",
			zap.String("product_id", productID),
			zap.String("kind", string(op.Kind())),
			zap.Int("attempt", attempt),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * uc.opts.RetryBackoff):
		}
	}
	if err != nil {
		uc.reject(op.Kind(), err)
		return nil, err
	}

	uc.metrics.StockMovements.WithLabelValues(string(op.Kind())).Inc()
	uc.logger.Info("stock movement recorded",
		zap.String("movement_id", movement.ID),
		zap.String("product_id", productID),
		zap.String("kind", string(op.Kind())),
		zap.Int("filled", product.StockFilled),
		zap.Int("empty", product.StockEmpty),
		zap.Int("damaged", product.StockDamaged),
	)

	uc.invalidateStats(ctx)
	uc.publishMovement(ctx, movement)

	return product, nil
}

func (uc *inventoryUseCase) reject(kind model.MovementKind, err error) {
	reason := "error"
	switch {
	case errors.Is(err, apperror.ErrValidation):
		reason = "validation"
	case errors.Is(err, apperror.ErrInsufficientStock):
		reason = "insufficient_stock"
	case errors.Is(err, apperror.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, apperror.ErrForbidden):
		reason = "forbidden"
	case errors.Is(err, apperror.ErrConflict):
		reason = "conflict"
	}
	uc.metrics.MovementRejections.WithLabelValues(string(kind), reason).Inc()
}

type StockMovementEvent struct {
	EventID   string               `json:"event_id"`
	EventType string               `json:"event_type"`
	Payload   *model.StockMovement `json:"payload"`
	Timestamp time.Time            `json:"timestamp"`
}

// publishMovement is best effort: the movement is already committed.
func (uc *inventoryUseCase) publishMovement(ctx context.Context, m *model.StockMovement) {
	if uc.publisher == nil {
		return
	}
	data, err := json.Marshal(StockMovementEvent{
		EventID:   uuid.New().String(),
		EventType: "StockMovementRecorded",
		Payload:   m,
		Timestamp: m.CreatedAt,
	})
	if err != nil {
		uc.logger.Error("failed to marshal movement event", zap.Error(err))
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := uc.publisher.Publish(pubCtx, m.ProductID, data); err != nil {
		uc.logger.Error("failed to publish movement event",
			zap.String("movement_id", m.ID),
			zap.Error(err),
		)
	}
}

func (uc *inventoryUseCase) GetInventoryStats(ctx context.Context) (*model.InventoryStats, error) {
	version, cacheable := uc.statsVersion(ctx)
	if cacheable {
		if stats, ok := uc.cachedStats(ctx, version); ok {
			return stats, nil
		}
	}

	products, withCustomers, err := uc.repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	stats := inventory.BuildStats(products, withCustomers)

	// A write that committed during Snapshot bumped the version, so this entry
	// is never served.
	if cacheable {
		if data, err := json.Marshal(stats); err == nil {
			if err := uc.cache.Set(ctx, inventory.StatsKey(version), data, uc.opts.StatsTTL); err != nil {
				uc.logger.Warn("failed to cache inventory stats", zap.Error(err))
			}
		}
	}

	return stats, nil
}

func (uc *inventoryUseCase) statsVersion(ctx context.Context) (int64, bool) {
	if uc.cache == nil || uc.opts.StatsTTL <= 0 {
		return 0, false
	}
	v, err := inventory.StatsVersion(ctx, uc.cache)
	if err != nil {
		uc.logger.Warn("failed to read inventory stats version", zap.Error(err))
		return 0, false
	}
	return v, true
}

func (uc *inventoryUseCase) cachedStats(ctx context.Context, version int64) (*model.InventoryStats, bool) {
	data, err := uc.cache.Get(ctx, inventory.StatsKey(version))
	if err != nil {
		return nil, false
	}
	var stats model.InventoryStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, false
	}
	uc.metrics.StatsCacheHits.Inc()
	return &stats, true
}

func (uc *inventoryUseCase) invalidateStats(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := inventory.InvalidateStats(context.WithoutCancel(ctx), uc.cache); err != nil {
		uc.logger.Warn("failed to invalidate inventory stats", zap.Error(err))
	}
}

func (uc *inventoryUseCase) GetBottlesWithCustomers(ctx context.Context, productID string) ([]model.BottleHolder, error) {
	return uc.repo.ListBottleHolders(ctx, strings.TrimSpace(productID))
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	if filters.Kind != "" && !filters.Kind.Valid() {
		return nil, 0, apperror.Validation("unknown movement kind %q", filters.Kind)
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = defaultPageSize
	}
	if filters.PageSize > maxPageSize {
		filters.PageSize = maxPageSize
	}
	return uc.repo.ListMovements(ctx, filters)
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
