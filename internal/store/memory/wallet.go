package memory

import (
	"context"
	"math"
	"sort"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/inventory"
	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/fekuna/blueice-inventory-service/internal/wallet"
)

type WalletRepository struct {
	s *Store
}

var _ wallet.Repository = (*WalletRepository)(nil)

func (r *WalletRepository) ApplyDeltas(ctx context.Context, deltas []model.BottleDelta) ([]model.BottleWallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Staged changes, published only once every delta went through.
	staged := make(map[walletKey]model.BottleWallet)
	recorded := make(map[deltaKey]model.BottleDelta)
	changed := []walletKey{}

	for _, d := range deltas {
		p, ok := r.s.products[d.ProductID]
		if !ok {
			return nil, apperror.NotFound("product", d.ProductID)
		}
		if !p.IsReturnable {
			continue
		}
		if _, ok := r.s.customers[d.CustomerID]; !ok {
			return nil, apperror.NotFound("customer", d.CustomerID)
		}

		dk := deltaKey{d.OrderID, d.ProductID}
		if _, dup := r.s.deltas[dk]; dup {
			continue
		}
		if _, dup := recorded[dk]; dup {
			continue
		}
		recorded[dk] = d

		wk := walletKey{d.CustomerID, d.ProductID}
		w, ok := staged[wk]
		if !ok {
			w, ok = r.s.wallets[wk]
			if !ok {
				w = model.BottleWallet{CustomerID: d.CustomerID, ProductID: d.ProductID}
			}
			changed = append(changed, wk)
		}
		next := w.BottleBalance + d.Net()
		if next > inventory.MaxQuantity || next < math.MinInt32 {
			return nil, apperror.Validation("wallet %s/%s balance out of range", d.CustomerID, d.ProductID)
		}
		w.BottleBalance = next
		w.UpdatedAt = d.CreatedAt
		staged[wk] = w
	}

	for k, d := range recorded {
		r.s.deltas[k] = d
	}
	out := make([]model.BottleWallet, 0, len(changed))
	for _, k := range changed {
		r.s.wallets[k] = staged[k]
		out = append(out, staged[k])
	}
	return out, nil
}

func (r *WalletRepository) ListByCustomer(ctx context.Context, customerID string) ([]model.BottleWallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []model.BottleWallet{}
	for k, w := range r.s.wallets {
		if k.customerID == customerID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}
