package dto

import "github.com/fekuna/blueice-inventory-service/internal/model"

type OptimizeInput struct {
	RouteID  string   `json:"routeId"`
	StartLat *float64 `json:"startLat,omitempty"`
	StartLng *float64 `json:"startLng,omitempty"`
}

// OptimizeResult reports Success=false with a message, not an error, when the
// route has no customer with coordinates.
type OptimizeResult struct {
	Success        bool                       `json:"success"`
	Message        string                     `json:"message"`
	OptimizedCount int                        `json:"optimizedCount"`
	Assignments    []model.SequenceAssignment `json:"assignments,omitempty"`
}

type RouteSequence struct {
	Route     *model.Route          `json:"route"`
	Customers []model.RouteCustomer `json:"customers"`
}
