package route

import (
	"context"

	"github.com/fekuna/blueice-inventory-service/internal/route/dto"
)

type UseCase interface {
	OptimizeRouteSequence(ctx context.Context, input *dto.OptimizeInput) (*dto.OptimizeResult, error)
	GetRouteSequence(ctx context.Context, routeID string) (*dto.RouteSequence, error)
}
