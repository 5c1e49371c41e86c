package api

// CoordinateJSON is a lon/lat pair in JSON.
type CoordinateJSON struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// RGBJSON is a render color.
type RGBJSON struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// VehicleJSON is one vehicle in GET /api/v1/vehicles.
type VehicleJSON struct {
	ID       int            `json:"id"`
	Position CoordinateJSON `json:"position"`
	State    string         `json:"state"`
	Color    *RGBJSON       `json:"color,omitempty"`
}

// PassengerJSON is one waiting passenger in GET /api/v1/passengers.
type PassengerJSON struct {
	ID          int            `json:"id"`
	Start       CoordinateJSON `json:"start"`
	Destination CoordinateJSON `json:"destination"`
	Color       RGBJSON        `json:"color"`
}

// BoundsJSON is the map extent.
type BoundsJSON struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	RunID          string     `json:"run_id"`
	UptimeSeconds  float64    `json:"uptime_seconds"`
	NumNodes       int        `json:"num_nodes"`
	NumVehicles    int        `json:"num_vehicles"`
	NumPassengers  int        `json:"num_passengers"`
	OpenVehicles   int        `json:"open_vehicles"`
	OpenPassengers int        `json:"open_passengers"`
	PendingArrival int        `json:"pending_arrival"`
	Bounds         BoundsJSON `json:"bounds"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
