package dto

import (
	"time"

	"github.com/fekuna/blueice-inventory-service/internal/model"
)

type MovementFilters struct {
	ProductID string
	Kind      model.MovementKind
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}
