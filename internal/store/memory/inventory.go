package memory

import (
	"context"
	"sort"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/inventory"
	"github.com/fekuna/blueice-inventory-service/internal/inventory/dto"
	"github.com/fekuna/blueice-inventory-service/internal/model"
)

type InventoryRepository struct {
	s *Store
}

var _ inventory.Repository = (*InventoryRepository)(nil)

func (r *InventoryRepository) ApplyMovement(ctx context.Context, productID string, mutate inventory.MutateFunc) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cur, ok := r.s.products[productID]
	if !ok {
		return nil, apperror.NotFound("product", productID)
	}

	next := cur
	movement, err := mutate(&next)
	if err != nil {
		return nil, err
	}

	r.s.products[productID] = next
	if movement != nil {
		r.s.movements = append(r.s.movements, *movement)
	}
	return &next, nil
}

func (r *InventoryRepository) Snapshot(ctx context.Context) ([]model.Product, map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	withCustomers := make(map[string]int)
	for k, w := range r.s.wallets {
		if w.BottleBalance > 0 {
			withCustomers[k.productID] += w.BottleBalance
		}
	}
	return r.s.sortedProducts(), withCustomers, nil
}

func (r *InventoryRepository) ListBottleHolders(ctx context.Context, productID string) ([]model.BottleHolder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	holders := []model.BottleHolder{}
	for k, w := range r.s.wallets {
		if w.BottleBalance <= 0 || (productID != "" && k.productID != productID) {
			continue
		}
		c, ok := r.s.customers[k.customerID]
		if !ok {
			continue
		}
		p, ok := r.s.products[k.productID]
		if !ok {
			continue
		}
		holders = append(holders, model.BottleHolder{
			CustomerID:      c.ID,
			CustomerName:    c.Name,
			CustomerPhone:   c.Phone,
			CustomerAddress: c.Address,
			ProductID:       p.ID,
			ProductName:     p.Name,
			ProductSKU:      p.SKU,
			BottleBalance:   w.BottleBalance,
		})
	}

	sort.Slice(holders, func(i, j int) bool {
		a, b := holders[i], holders[j]
		if a.BottleBalance != b.BottleBalance {
			return a.BottleBalance > b.BottleBalance
		}
		if a.CustomerID != b.CustomerID {
			return a.CustomerID < b.CustomerID
		}
		return a.ProductID < b.ProductID
	})
	return holders, nil
}

// ListMovements returns newest first; movements with the same timestamp come
// back in reverse insertion order.
func (r *InventoryRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []model.StockMovement{}
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		if f.StartDate != nil && m.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && !m.CreatedAt.Before(*f.EndDate) {
			continue
		}
		matched = append(matched, m)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return page(matched, f.Page, f.PageSize), len(matched), nil
}

func page[T any](items []T, pageNum, size int) []T {
	if size <= 0 {
		return items
	}
	if pageNum < 1 {
		pageNum = 1
	}
	start := (pageNum - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
