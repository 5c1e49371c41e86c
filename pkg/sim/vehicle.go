package sim

import "github.com/venomous-maker/RideshareSimulation/pkg/routemodel"

// VehicleState is a vehicle's position in the ride lifecycle.
type VehicleState int

const (
	// NoPassengerRequested: roaming, no request sent yet.
	NoPassengerRequested VehicleState = iota
	// NoPassengerQueued: waiting in the matcher's open-vehicle queue.
	NoPassengerQueued
	// PassengerQueued: matched, driving to the pickup point.
	PassengerQueued
	// DrivingPassenger: carrying a passenger to their destination.
	DrivingPassenger
	// Waiting: at the pickup point, waiting for the passenger handoff.
	Waiting
)

func (s VehicleState) String() string {
	switch s {
	case NoPassengerRequested:
		return "no_passenger_requested"
	case NoPassengerQueued:
		return "no_passenger_queued"
	case PassengerQueued:
		return "passenger_queued"
	case DrivingPassenger:
		return "driving_passenger"
	case Waiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// Vehicle is owned and mutated exclusively by the VehicleManager under its
// lock. A carried passenger is uniquely owned by the vehicle; it holds no
// pointer back — the vehicle mirrors position changes into it by value.
type Vehicle struct {
	ID          int
	Position    routemodel.Coordinate
	Destination routemodel.Coordinate
	Path        []routemodel.Coordinate
	PathIndex   int
	Passenger   *Passenger
	State       VehicleState
	Failures    int // consecutive match failures, cleared on drop-off

	cooldown int // ticks to sit out after repeated match failures
}

// SetPosition moves the vehicle and the carried passenger with it.
func (v *Vehicle) SetPosition(pos routemodel.Coordinate) {
	v.Position = pos
	if v.Passenger != nil {
		v.Passenger.Position = pos
	}
}

// SetDestination points the vehicle somewhere new. The path is cleared so
// the next drive tick re-routes.
func (v *Vehicle) SetDestination(dest routemodel.Coordinate) {
	v.Destination = dest
	v.ResetPath()
}

// SetPassenger takes ownership of the passenger. The passenger's
// destination becomes the vehicle's destination.
func (v *Vehicle) SetPassenger(p *Passenger) {
	v.Passenger = p
	p.Position = v.Position
	v.SetDestination(p.Destination)
}

// ReleasePassenger detaches and returns the carried passenger, clearing the
// failure count after a completed ride.
func (v *Vehicle) ReleasePassenger() *Passenger {
	p := v.Passenger
	v.Passenger = nil
	v.Failures = 0
	return p
}

// DetachPassenger detaches and returns the carried passenger without
// treating the ride as completed. Used when a route cannot be found.
func (v *Vehicle) DetachPassenger() *Passenger {
	p := v.Passenger
	v.Passenger = nil
	return p
}

// ResetPath clears the path and index so the vehicle re-routes.
func (v *Vehicle) ResetPath() {
	v.Path = nil
	v.PathIndex = 0
}

// Arrived reports whether the vehicle has consumed its whole path.
func (v *Vehicle) Arrived() bool {
	return v.PathIndex >= len(v.Path)
}
