package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/inventory"
	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/fekuna/blueice-inventory-service/internal/product"
	"github.com/fekuna/blueice-inventory-service/internal/product/dto"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type productUseCase struct {
	repo   product.Repository
	cache  inventory.Cache
	logger logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, cache inventory.Cache, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

// CreateProduct registers a product with an empty stock record. Stock only
// arrives through restocks afterwards.
func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	sku := strings.TrimSpace(input.SKU)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}
	if sku == "" {
		return nil, apperror.Validation("sku is required")
	}

	unique, err := uc.repo.IsSKUUnique(ctx, sku, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperror.Validation("sku %q already exists", sku)
	}

	now := time.Now()
	p := &model.Product{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:         name,
		SKU:          sku,
		IsReturnable: input.IsReturnable,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	// New product row changes the dashboard
	if uc.cache != nil {
		if err := inventory.InvalidateStats(context.WithoutCancel(ctx), uc.cache); err != nil {
			uc.logger.Warn("failed to invalidate inventory stats", zap.Error(err))
		}
	}

	uc.logger.Info("product created", zap.String("product_id", p.ID), zap.String("sku", p.SKU))
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("product", id)
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	return uc.repo.FindAll(ctx, filters)
}
