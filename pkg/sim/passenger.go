package sim

import "github.com/venomous-maker/RideshareSimulation/pkg/routemodel"

// RGB is a render-only color assigned to each passenger.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Passenger is a ride request with a life of its own: generated by the
// PassengerQueue, owned by it until handoff, then owned by the carrying
// vehicle until drop-off destroys it.
type Passenger struct {
	ID          int
	Start       routemodel.Coordinate
	Destination routemodel.Coordinate
	Position    routemodel.Coordinate
	Color       RGB
	Requested   bool
}
