package route

import (
	"context"
	"time"

	"github.com/fekuna/blueice-inventory-service/internal/model"
)

type Repository interface {
	// FindByID returns nil, nil when the route does not exist.
	FindByID(ctx context.Context, id string) (*model.Route, error)
	// ListCustomers returns the route's customers by current sequence, unsequenced last, then by id.
	ListCustomers(ctx context.Context, routeID string) ([]model.RouteCustomer, error)
	// UpdateSequence applies every assignment in one transaction or none of them.
	UpdateSequence(ctx context.Context, routeID string, assignments []model.SequenceAssignment) error
}

// Locker serializes optimizer runs on the same route across replicas.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}
