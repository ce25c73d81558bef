package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/fekuna/blueice-inventory-service/internal/product"
	"github.com/fekuna/blueice-inventory-service/internal/product/dto"
)

type ProductRepository struct {
	s *Store
}

var _ product.Repository = (*ProductRepository)(nil)

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.products {
		if existing.SKU == p.SKU {
			return apperror.Validation("sku %q already exists", p.SKU)
		}
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(f.SearchQuery)
	matched := []model.Product{}
	for _, p := range r.s.products {
		if f.IsReturnable != nil && p.IsReturnable != *f.IsReturnable {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		matched = append(matched, p)
	}

	key := func(p model.Product) string {
		switch f.SortBy {
		case "sku":
			return p.SKU
		case "created_at":
			return p.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000")
		}
		return p.Name
	}
	desc := f.SortBy != "" && strings.ToLower(f.SortOrder) == "desc"
	sort.Slice(matched, func(i, j int) bool {
		a, b := key(matched[i]), key(matched[j])
		if a != b {
			return (a < b) != desc
		}
		return matched[i].ID < matched[j].ID
	})

	return page(matched, f.Page, f.PageSize), len(matched), nil
}

func (r *ProductRepository) IsSKUUnique(ctx context.Context, sku, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.SKU == sku && p.ID != excludeID {
			return false, nil
		}
	}
	return true, nil
}
