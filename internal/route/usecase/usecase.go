package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/fekuna/blueice-inventory-service/internal/route"
	"github.com/fekuna/blueice-inventory-service/internal/route/dto"
	"github.com/fekuna/blueice-inventory-service/internal/route/sequence"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/fekuna/blueice-inventory-service/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockTTL      = 10 * time.Second
	lockAttempts = 3
)

type Options struct {
	DefaultOrigin   sequence.Point
	UnlocatedPolicy route.UnlocatedPolicy
}

type routeUseCase struct {
	repo    route.Repository
	locker  route.Locker
	metrics *metrics.Registry
	logger  logger.ZapLogger
	opts    Options
}

// NewRouteUseCase builds the optimizer. locker may be nil on single-instance deployments.
func NewRouteUseCase(repo route.Repository, locker route.Locker, m *metrics.Registry, log logger.ZapLogger, opts Options) route.UseCase {
	if opts.UnlocatedPolicy == "" {
		opts.UnlocatedPolicy = route.UnlocatedKeep
	}
	return &routeUseCase{
		repo:    repo,
		locker:  locker,
		metrics: m,
		logger:  log,
		opts:    opts,
	}
}

func (uc *routeUseCase) OptimizeRouteSequence(ctx context.Context, input *dto.OptimizeInput) (*dto.OptimizeResult, error) {
	start := time.Now()
	defer func() { uc.metrics.RouteOptimizeSec.Observe(time.Since(start).Seconds()) }()

	if strings.TrimSpace(input.RouteID) == "" {
		return nil, apperror.Validation("route id is required")
	}

	r, err := uc.repo.FindByID(ctx, input.RouteID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		uc.metrics.RouteOptimizations.WithLabelValues("not_found").Inc()
		return nil, apperror.NotFound("route", input.RouteID)
	}

	release, err := uc.lock(ctx, r.ID)
	if err != nil {
		uc.metrics.RouteOptimizations.WithLabelValues("conflict").Inc()
		return nil, err
	}
	defer release()

	customers, err := uc.repo.ListCustomers(ctx, r.ID)
	if err != nil {
		return nil, err
	}

	var (
		stops     []sequence.Stop
		unlocated []model.RouteCustomer
	)
	for _, c := range customers {
		if c.HasGeo() {
			stops = append(stops, sequence.Stop{ID: c.ID, Point: sequence.Point{Lat: *c.GeoLat, Lng: *c.GeoLng}})
		} else {
			unlocated = append(unlocated, c)
		}
	}

	if len(stops) == 0 {
		uc.metrics.RouteOptimizations.WithLabelValues("no_op").Inc()
		uc.logger.Info("route has no customers with coordinates", zap.String("route_id", r.ID))
		return &dto.OptimizeResult{
			Success: false,
			Message: "No customers with geo-coordinates found in this route",
		}, nil
	}

	ordered := sequence.NearestNeighbor(uc.origin(input), stops)

	assignments := make([]model.SequenceAssignment, 0, len(customers))
	for i, s := range ordered {
		n := i + 1
		assignments = append(assignments, model.SequenceAssignment{CustomerID: s.ID, SequenceOrder: &n})
	}
	switch uc.opts.UnlocatedPolicy {
	case route.UnlocatedAppend:
		for i, c := range unlocated {
			n := len(ordered) + i + 1
			assignments = append(assignments, model.SequenceAssignment{CustomerID: c.ID, SequenceOrder: &n})
		}
	case route.UnlocatedExclude:
		for _, c := range unlocated {
			assignments = append(assignments, model.SequenceAssignment{CustomerID: c.ID})
		}
	}

	if err := uc.repo.UpdateSequence(ctx, r.ID, assignments); err != nil {
		uc.metrics.RouteOptimizations.WithLabelValues("failed").Inc()
		return nil, err
	}

	uc.metrics.RouteOptimizations.WithLabelValues("optimized").Inc()
	uc.logger.Info("route sequence optimized",
		zap.String("route_id", r.ID),
		zap.Int("optimized", len(ordered)),
		zap.Int("unlocated", len(unlocated)),
		zap.String("unlocated_policy", string(uc.opts.UnlocatedPolicy)),
	)

	return &dto.OptimizeResult{
		Success:        true,
		Message:        fmt.Sprintf("Successfully optimized sequence for %d customers", len(ordered)),
		OptimizedCount: len(ordered),
		Assignments:    assignments,
	}, nil
}

// origin fills each missing start coordinate from the default origin.
func (uc *routeUseCase) origin(input *dto.OptimizeInput) sequence.Point {
	p := uc.opts.DefaultOrigin
	if input.StartLat != nil {
		p.Lat = *input.StartLat
	}
	if input.StartLng != nil {
		p.Lng = *input.StartLng
	}
	return p
}

func (uc *routeUseCase) lock(ctx context.Context, routeID string) (func(), error) {
	if uc.locker == nil {
		return func() {}, nil
	}

	key := "lock:route-optimize:" + routeID
	value := uuid.New().String()

	acquired := false
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.locker.AcquireLock(ctx, key, value, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire route lock", zap.String("route_id", routeID), zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	if !acquired {
		return nil, fmt.Errorf("route %s is being optimized by another request: %w", routeID, apperror.ErrConflict)
	}

	return func() {
		if err := uc.locker.ReleaseLock(context.WithoutCancel(ctx), key, value); err != nil {
			uc.logger.Warn("failed to release route lock", zap.String("route_id", routeID), zap.Error(err))
		}
	}, nil
}

func (uc *routeUseCase) GetRouteSequence(ctx context.Context, routeID string) (*dto.RouteSequence, error) {
	r, err := uc.repo.FindByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperror.NotFound("route", routeID)
	}
	customers, err := uc.repo.ListCustomers(ctx, routeID)
	if err != nil {
		return nil, err
	}
	return &dto.RouteSequence{Route: r, Customers: customers}, nil
}
