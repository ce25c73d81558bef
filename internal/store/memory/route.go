package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/fekuna/blueice-inventory-service/internal/route"
)

type RouteRepository struct {
	s *Store
}

var _ route.Repository = (*RouteRepository)(nil)

func (r *RouteRepository) FindByID(ctx context.Context, id string) (*model.Route, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rt, ok := r.s.routes[id]
	if !ok {
		return nil, nil
	}
	return &rt, nil
}

func (r *RouteRepository) ListCustomers(ctx context.Context, routeID string) ([]model.RouteCustomer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []model.RouteCustomer{}
	for _, c := range r.s.customers {
		if c.RouteID == routeID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].SequenceOrder, out[j].SequenceOrder
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *RouteRepository) UpdateSequence(ctx context.Context, routeID string, assignments []model.SequenceAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	for _, a := range assignments {
		c, ok := r.s.customers[a.CustomerID]
		if !ok || c.RouteID != routeID {
			return fmt.Errorf("customer %s left route %s: %w", a.CustomerID, routeID, apperror.ErrConflict)
		}
	}
	for _, a := range assignments {
		c := r.s.customers[a.CustomerID]
		c.SequenceOrder = nil
		if a.SequenceOrder != nil {
			n := *a.SequenceOrder
			c.SequenceOrder = &n
		}
		r.s.customers[a.CustomerID] = c
	}
	return nil
}
