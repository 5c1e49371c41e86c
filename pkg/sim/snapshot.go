package sim

import (
	"github.com/samber/lo"

	"github.com/venomous-maker/RideshareSimulation/pkg/routemodel"
)

// VehicleSnapshot is an immutable copy of a vehicle's render-relevant
// state. Color is the carried passenger's color, nil when roaming empty.
type VehicleSnapshot struct {
	ID       int
	Position routemodel.Coordinate
	State    VehicleState
	Color    *RGB
}

// PassengerSnapshot is an immutable copy of a waiting passenger.
type PassengerSnapshot struct {
	ID          int
	Start       routemodel.Coordinate
	Destination routemodel.Coordinate
	Color       RGB
}

// SnapshotVehicles returns copies of every vehicle for rendering.
func (vm *VehicleManager) SnapshotVehicles() []VehicleSnapshot {
	vm.mtx.Lock()
	defer vm.mtx.Unlock()

	return lo.Map(vm.vehicles, func(v *Vehicle, _ int) VehicleSnapshot {
		s := VehicleSnapshot{
			ID:       v.ID,
			Position: v.Position,
			State:    v.State,
		}
		if v.Passenger != nil {
			c := v.Passenger.Color
			s.Color = &c
		}
		return s
	})
}

// SnapshotNewPassengers returns copies of the passengers still waiting for
// a pickup.
func (q *PassengerQueue) SnapshotNewPassengers() []PassengerSnapshot {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return lo.Map(q.newPassengers, func(p *Passenger, _ int) PassengerSnapshot {
		return PassengerSnapshot{
			ID:          p.ID,
			Start:       p.Start,
			Destination: p.Destination,
			Color:       p.Color,
		}
	})
}
