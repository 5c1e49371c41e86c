package sim

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/venomous-maker/RideshareSimulation/pkg/routemodel"
)

var matchLog = logrus.WithField("module", "ride_matcher")

// VehicleController is the slice of the VehicleManager the matcher drives.
type VehicleController interface {
	AssignPassenger(vehicleID int, pickup routemodel.Coordinate)
	PassengerIntoVehicle(vehicleID int, p *Passenger)
	MatchFailed(vehicleID int)
}

// PassengerSource is the slice of the PassengerQueue the matcher drives.
type PassengerSource interface {
	HandOff(id int) (*Passenger, error)
	Reinsert(p *Passenger)
}

// RideMatcher is the central dispatcher. It holds only ids — vehicles stay
// owned by the manager and passengers by the queue or their vehicle. One
// mutex guards all matcher state; it is always released before calling
// into the queue or the manager (fixed lock order: matcher, queue,
// manager).
type RideMatcher struct {
	vehicles   VehicleController
	passengers PassengerSource

	mtx            sync.Mutex
	openVehicles   []int
	openPassengers []int
	pendingArrival map[int]int                   // vehicle id → matched passenger id
	pickups        map[int]routemodel.Coordinate // passenger id → pickup point
}

// NewRideMatcher creates a matcher over the given manager and queue views.
func NewRideMatcher(vehicles VehicleController, passengers PassengerSource) *RideMatcher {
	return &RideMatcher{
		vehicles:       vehicles,
		passengers:     passengers,
		pendingArrival: make(map[int]int),
		pickups:        make(map[int]routemodel.Coordinate),
	}
}

// Run re-attempts matching on an interval until the context is cancelled.
// Requests trigger matching on arrival as well; the loop exists so cooled
// down vehicles and re-enqueued passengers cannot strand the queues.
func (m *RideMatcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.TryMatch()
		}
	}
}

// VehicleRequestsPassenger enqueues a vehicle looking for a ride. Repeat
// requests for a queued vehicle are ignored.
func (m *RideMatcher) VehicleRequestsPassenger(vehicleID int) {
	m.mtx.Lock()
	if lo.Contains(m.openVehicles, vehicleID) {
		m.mtx.Unlock()
		return
	}
	m.openVehicles = append(m.openVehicles, vehicleID)
	m.mtx.Unlock()

	matchLog.Infof("vehicle %d requested a passenger", vehicleID)
	m.TryMatch()
}

// PassengerRequestsRide enqueues a passenger wanting a ride. Repeat
// requests for a queued passenger are ignored.
func (m *RideMatcher) PassengerRequestsRide(passengerID int, pickup routemodel.Coordinate) {
	m.mtx.Lock()
	if lo.Contains(m.openPassengers, passengerID) {
		m.mtx.Unlock()
		return
	}
	m.openPassengers = append(m.openPassengers, passengerID)
	m.pickups[passengerID] = pickup
	m.mtx.Unlock()

	matchLog.Infof("passenger %d requested a ride", passengerID)
	m.TryMatch()
}

// TryMatch pairs queue heads FIFO while both sides are non-empty.
func (m *RideMatcher) TryMatch() {
	type match struct {
		vehicleID   int
		passengerID int
		pickup      routemodel.Coordinate
	}
	var matches []match

	m.mtx.Lock()
	for len(m.openVehicles) > 0 && len(m.openPassengers) > 0 {
		vid := m.openVehicles[0]
		pid := m.openPassengers[0]
		m.openVehicles = m.openVehicles[1:]
		m.openPassengers = m.openPassengers[1:]
		m.pendingArrival[vid] = pid
		matches = append(matches, match{vehicleID: vid, passengerID: pid, pickup: m.pickups[pid]})
	}
	m.mtx.Unlock()

	for _, mt := range matches {
		matchLog.Infof("matched vehicle %d with passenger %d", mt.vehicleID, mt.passengerID)
		m.vehicles.AssignPassenger(mt.vehicleID, mt.pickup)
	}
}

// VehicleHasArrived is called by the manager when a matched vehicle reaches
// the pickup point. The passenger is pulled from the queue and transferred
// into the vehicle.
func (m *RideMatcher) VehicleHasArrived(vehicleID int) {
	m.mtx.Lock()
	pid, ok := m.pendingArrival[vehicleID]
	if ok {
		delete(m.pendingArrival, vehicleID)
		delete(m.pickups, pid)
	}
	m.mtx.Unlock()

	if !ok {
		// Stale arrival: the match was torn down in the meantime.
		matchLog.Debugf("vehicle %d arrived with no pending match", vehicleID)
		return
	}

	p, err := m.passengers.HandOff(pid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			matchLog.Errorf("handoff of passenger %d to vehicle %d: %v", pid, vehicleID, err)
			return
		}
		matchLog.Errorf("handoff of passenger %d: %v", pid, err)
		return
	}

	matchLog.Infof("passenger %d picked up by vehicle %d", pid, vehicleID)
	m.vehicles.PassengerIntoVehicle(vehicleID, p)
}

// VehicleCannotReach is called by the manager when no route exists to the
// assigned pickup. The passenger goes back to the head of the queue and
// the vehicle is told the match failed.
func (m *RideMatcher) VehicleCannotReach(vehicleID int) {
	m.mtx.Lock()
	pid, ok := m.pendingArrival[vehicleID]
	if ok {
		delete(m.pendingArrival, vehicleID)
		m.openPassengers = append([]int{pid}, m.openPassengers...)
	}
	m.mtx.Unlock()

	if !ok {
		matchLog.Debugf("vehicle %d reported unreachable pickup with no pending match", vehicleID)
		return
	}

	matchLog.Warnf("vehicle %d cannot reach passenger %d, re-queueing passenger", vehicleID, pid)
	m.vehicles.MatchFailed(vehicleID)
	m.TryMatch()
}

// ReturnPassenger is called by the manager when a carrying vehicle cannot
// route to the drop-off. The passenger goes back to the queue and asks for
// a ride again on the next generate tick.
func (m *RideMatcher) ReturnPassenger(vehicleID int, p *Passenger) {
	matchLog.Warnf("vehicle %d stranded with passenger %d, returning to queue", vehicleID, p.ID)
	m.passengers.Reinsert(p)
}

// OpenCounts reports queue lengths for the stats endpoint.
func (m *RideMatcher) OpenCounts() (vehicles, passengers, pending int) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return len(m.openVehicles), len(m.openPassengers), len(m.pendingArrival)
}
