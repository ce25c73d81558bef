package model

type Route struct {
	ID              string  `db:"id" json:"id"`
	Name            string  `db:"name" json:"name"`
	DefaultDriverID *string `db:"default_driver_id" json:"defaultDriverId"`
}

// RouteCustomer is the slice of a customer profile the route optimizer works on.
type RouteCustomer struct {
	ID            string   `db:"id" json:"id"`
	RouteID       string   `db:"route_id" json:"routeId"`
	Name          string   `db:"name" json:"name"`
	Phone         *string  `db:"phone" json:"phone"`
	Address       *string  `db:"address" json:"address"`
	GeoLat        *float64 `db:"geo_lat" json:"geoLat"`
	GeoLng        *float64 `db:"geo_lng" json:"geoLng"`
	SequenceOrder *int     `db:"sequence_order" json:"sequenceOrder"`
}

func (c *RouteCustomer) HasGeo() bool {
	return c.GeoLat != nil && c.GeoLng != nil
}

// SequenceAssignment sets (or clears, when SequenceOrder is nil) a customer's visit order.
type SequenceAssignment struct {
	CustomerID    string `json:"customerId"`
	SequenceOrder *int   `json:"sequenceOrder"`
}
