package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/venomous-maker/RideshareSimulation/pkg/geo"
	"github.com/venomous-maker/RideshareSimulation/pkg/randengine"
	"github.com/venomous-maker/RideshareSimulation/pkg/routemodel"
	"github.com/venomous-maker/RideshareSimulation/pkg/routing"
)

var driveLog = logrus.WithField("module", "vehicle_manager")

// PassengerMatcher is the slice of the RideMatcher the manager drives.
type PassengerMatcher interface {
	VehicleRequestsPassenger(vehicleID int)
	VehicleHasArrived(vehicleID int)
	VehicleCannotReach(vehicleID int)
	ReturnPassenger(vehicleID int, p *Passenger)
}

// RideCompleter is notified when a carried passenger is dropped off.
// Implemented by the PassengerQueue.
type RideCompleter interface {
	CompleteRide(passengerID int)
}

// VehicleManager owns every vehicle for its whole lifetime. The drive tick
// and the three matcher callbacks all mutate vehicles under one mutex, so
// each operation is atomic with respect to the others. Calls out to the
// matcher or the queue are deferred until the mutex is released.
type VehicleManager struct {
	model   *routemodel.Model
	planner *routing.Planner
	eng     *randengine.Engine

	distancePerCycle float64
	failureLimit     int

	mtx       sync.Mutex
	matcher   PassengerMatcher
	completer RideCompleter
	vehicles  []*Vehicle
}

// NewVehicleManager creates the fixed vehicle pool. Each vehicle starts on
// a random road node with a random snapped destination. A non-positive
// distancePerCycle falls back to the map-derived default, one thousandth of
// the latitude span per tick.
func NewVehicleManager(model *routemodel.Model, planner *routing.Planner, eng *randengine.Engine, count, failureLimit int, distancePerCycle float64) *VehicleManager {
	if distancePerCycle <= 0 {
		b := model.Bounds()
		distancePerCycle = math.Abs(b.MaxLat-b.MinLat) / 1000.0
	}

	vm := &VehicleManager{
		model:            model,
		planner:          planner,
		eng:              eng,
		distancePerCycle: distancePerCycle,
		failureLimit:     failureLimit,
	}

	for i := 0; i < count; i++ {
		start := model.ClosestNode(model.RandomPosition()).Position
		dest := model.ClosestNode(model.RandomPosition()).Position
		v := &Vehicle{
			ID:          i,
			Position:    start,
			Destination: dest,
			State:       NoPassengerRequested,
		}
		vm.vehicles = append(vm.vehicles, v)
		driveLog.Infof("vehicle %d now driving from (%.5f, %.5f)", v.ID, start.Y, start.X)
	}

	return vm
}

// SetMatcher wires the ride matcher. Must be called before Run or Tick.
func (vm *VehicleManager) SetMatcher(m PassengerMatcher) {
	vm.mtx.Lock()
	defer vm.mtx.Unlock()
	vm.matcher = m
}

// SetCompleter wires the drop-off notification target.
func (vm *VehicleManager) SetCompleter(c RideCompleter) {
	vm.mtx.Lock()
	defer vm.mtx.Unlock()
	vm.completer = c
}

// DistancePerCycle returns the per-tick step distance in degrees.
func (vm *VehicleManager) DistancePerCycle() float64 {
	return vm.distancePerCycle
}

// Run drives all vehicles until the context is cancelled.
func (vm *VehicleManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			vm.Tick()
		}
	}
}

// Tick advances every vehicle one step. Cross-actor notifications are
// collected under the lock and dispatched after it is released, preserving
// per-vehicle event order without nesting locks.
func (vm *VehicleManager) Tick() {
	var events []func()

	vm.mtx.Lock()
	for _, v := range vm.vehicles {
		// Cooled down vehicles sit the tick out.
		if v.cooldown > 0 {
			v.cooldown--
			if v.cooldown == 0 && v.State == NoPassengerQueued {
				v.State = NoPassengerRequested
			}
			continue
		}

		// Route if no path yet.
		if len(v.Path) == 0 {
			path := vm.planner.Search(v.Position, v.Destination)
			if len(path) == 0 {
				events = append(events, vm.handleUnroutable(v)...)
				continue
			}
			v.Path = path
			v.PathIndex = 0
		}

		// Ask for a passenger if none requested yet.
		if v.State == NoPassengerRequested {
			v.State = NoPassengerQueued
			id := v.ID
			events = append(events, func() {
				driveLog.Infof("vehicle %d requested a passenger", id)
				vm.matcher.VehicleRequestsPassenger(id)
			})
		}

		// A waiting vehicle holds position for the handoff.
		if v.State == Waiting {
			continue
		}

		if !v.Arrived() {
			vm.incrementalMove(v)
		}

		if v.Position == v.Destination {
			events = append(events, vm.handleArrival(v)...)
		}
	}
	vm.mtx.Unlock()

	for _, e := range events {
		e()
	}
}

// handleUnroutable recovers a vehicle whose destination A* cannot reach.
// Called with the manager lock held; returns deferred notifications.
func (vm *VehicleManager) handleUnroutable(v *Vehicle) []func() {
	id := v.ID
	switch v.State {
	case DrivingPassenger:
		// Stranded mid-ride: give the passenger back and roam again.
		p := v.DetachPassenger()
		v.State = NoPassengerRequested
		vm.randomizeDestination(v)
		return []func(){func() { vm.matcher.ReturnPassenger(id, p) }}
	case PassengerQueued:
		// Pickup unreachable: report, roam until the matcher responds.
		v.State = NoPassengerQueued
		vm.randomizeDestination(v)
		return []func(){func() { vm.matcher.VehicleCannotReach(id) }}
	default:
		vm.randomizeDestination(v)
		return nil
	}
}

// handleArrival dispatches on state once position equals destination.
// Called with the manager lock held; returns deferred notifications.
func (vm *VehicleManager) handleArrival(v *Vehicle) []func() {
	id := v.ID
	switch v.State {
	case NoPassengerQueued:
		vm.randomizeDestination(v)
	case PassengerQueued:
		v.State = Waiting
		return []func(){func() {
			driveLog.Infof("vehicle %d arrived at pickup", id)
			vm.matcher.VehicleHasArrived(id)
		}}
	case DrivingPassenger:
		p := v.ReleasePassenger()
		v.State = NoPassengerRequested
		vm.randomizeDestination(v)
		pid := p.ID
		return []func(){func() {
			driveLog.Infof("vehicle %d dropped off passenger %d", id, pid)
			vm.completer.CompleteRide(pid)
		}}
	}
	return nil
}

// incrementalMove advances the vehicle toward the next path point, snapping
// exactly onto it when within one step.
func (vm *VehicleManager) incrementalMove(v *Vehicle) {
	next := v.Path[v.PathIndex]
	d := v.Position.DistanceTo(next)

	if d <= vm.distancePerCycle {
		v.SetPosition(next)
		v.PathIndex++
		return
	}

	theta := geo.Heading(v.Position.X, v.Position.Y, next.X, next.Y)
	v.SetPosition(routemodel.Coordinate{
		X: v.Position.X + vm.distancePerCycle*math.Cos(theta),
		Y: v.Position.Y + vm.distancePerCycle*math.Sin(theta),
	})
}

// randomizeDestination points the vehicle at a new random snapped node and
// clears its path. Called with the manager lock held.
func (vm *VehicleManager) randomizeDestination(v *Vehicle) {
	v.SetDestination(vm.model.ClosestNode(vm.model.RandomPosition()).Position)
}

// AssignPassenger sends the vehicle to a pickup point. Invoked by the
// matcher after pairing.
func (vm *VehicleManager) AssignPassenger(vehicleID int, pickup routemodel.Coordinate) {
	vm.mtx.Lock()
	defer vm.mtx.Unlock()

	v := vm.vehicle(vehicleID)
	if v == nil {
		driveLog.Errorf("assign passenger: unknown vehicle %d", vehicleID)
		return
	}
	v.SetDestination(vm.model.ClosestNode(pickup).Position)
	v.State = PassengerQueued
}

// PassengerIntoVehicle transfers a passenger into a waiting vehicle. The
// passenger's destination becomes the vehicle's, snapped onto the road.
func (vm *VehicleManager) PassengerIntoVehicle(vehicleID int, p *Passenger) {
	vm.mtx.Lock()
	defer vm.mtx.Unlock()

	v := vm.vehicle(vehicleID)
	if v == nil {
		driveLog.Errorf("passenger into vehicle: unknown vehicle %d", vehicleID)
		return
	}
	v.SetPassenger(p)
	v.SetDestination(vm.model.ClosestNode(v.Destination).Position)
	v.State = DrivingPassenger
}

// MatchFailed records a failed match. Under the failure limit the vehicle
// simply asks again; at the limit it gets a fresh random destination and
// sits out one tick before asking again.
func (vm *VehicleManager) MatchFailed(vehicleID int) {
	vm.mtx.Lock()
	defer vm.mtx.Unlock()

	v := vm.vehicle(vehicleID)
	if v == nil {
		driveLog.Errorf("match failed: unknown vehicle %d", vehicleID)
		return
	}
	v.Failures++
	if v.Failures < vm.failureLimit {
		v.State = NoPassengerRequested
		return
	}
	v.State = NoPassengerQueued
	v.cooldown = 1
	vm.randomizeDestination(v)
	driveLog.Warnf("vehicle %d hit %d match failures, cooling down", vehicleID, v.Failures)
}

// vehicle returns the vehicle with the given id. Ids are pool indices.
// Called with the manager lock held.
func (vm *VehicleManager) vehicle(id int) *Vehicle {
	if id < 0 || id >= len(vm.vehicles) {
		return nil
	}
	return vm.vehicles[id]
}
