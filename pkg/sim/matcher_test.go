package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venomous-maker/RideshareSimulation/pkg/routemodel"
)

// fakeController records the matcher's calls into the vehicle manager.
type fakeController struct {
	assigned    []int
	pickups     map[int]routemodel.Coordinate
	transferred []int
	failed      []int
}

func newFakeController() *fakeController {
	return &fakeController{pickups: make(map[int]routemodel.Coordinate)}
}

func (f *fakeController) AssignPassenger(vehicleID int, pickup routemodel.Coordinate) {
	f.assigned = append(f.assigned, vehicleID)
	f.pickups[vehicleID] = pickup
}

func (f *fakeController) PassengerIntoVehicle(vehicleID int, _ *Passenger) {
	f.transferred = append(f.transferred, vehicleID)
}

func (f *fakeController) MatchFailed(vehicleID int) {
	f.failed = append(f.failed, vehicleID)
}

// fakeSource hands off passengers from a fixed set.
type fakeSource struct {
	passengers map[int]*Passenger
	reinserted []int
}

func newFakeSource(ids ...int) *fakeSource {
	s := &fakeSource{passengers: make(map[int]*Passenger)}
	for _, id := range ids {
		s.passengers[id] = &Passenger{ID: id}
	}
	return s
}

func (s *fakeSource) HandOff(id int) (*Passenger, error) {
	p, ok := s.passengers[id]
	if !ok {
		return nil, fmt.Errorf("hand off passenger %d: %w", id, ErrNotFound)
	}
	delete(s.passengers, id)
	return p, nil
}

func (s *fakeSource) Reinsert(p *Passenger) {
	s.reinserted = append(s.reinserted, p.ID)
	s.passengers[p.ID] = p
}

func TestVehicleRequestIdempotent(t *testing.T) {
	m := NewRideMatcher(newFakeController(), newFakeSource())

	m.VehicleRequestsPassenger(4)
	m.VehicleRequestsPassenger(4)

	vehicles, _, _ := m.OpenCounts()
	assert.Equal(t, 1, vehicles)
}

func TestPassengerRequestIdempotent(t *testing.T) {
	m := NewRideMatcher(newFakeController(), newFakeSource())

	m.PassengerRequestsRide(9, routemodel.Coordinate{X: 1})
	m.PassengerRequestsRide(9, routemodel.Coordinate{X: 1})

	_, passengers, _ := m.OpenCounts()
	assert.Equal(t, 1, passengers)
}

func TestFIFOMatching(t *testing.T) {
	fc := newFakeController()
	m := NewRideMatcher(fc, newFakeSource(100, 101))

	m.VehicleRequestsPassenger(0)
	m.VehicleRequestsPassenger(1)
	m.PassengerRequestsRide(100, routemodel.Coordinate{X: 100})
	m.PassengerRequestsRide(101, routemodel.Coordinate{X: 101})

	// First requester pairs with first passenger.
	require.Equal(t, []int{0, 1}, fc.assigned)
	assert.Equal(t, routemodel.Coordinate{X: 100}, fc.pickups[0])
	assert.Equal(t, routemodel.Coordinate{X: 101}, fc.pickups[1])

	vehicles, passengers, pending := m.OpenCounts()
	assert.Zero(t, vehicles)
	assert.Zero(t, passengers)
	assert.Equal(t, 2, pending)
}

func TestDuellingVehicles(t *testing.T) {
	fc := newFakeController()
	m := NewRideMatcher(fc, newFakeSource(100))

	m.PassengerRequestsRide(100, routemodel.Coordinate{})
	m.VehicleRequestsPassenger(0)
	m.VehicleRequestsPassenger(1)

	// One passenger: only the first vehicle gets matched.
	assert.Equal(t, []int{0}, fc.assigned)
	vehicles, _, _ := m.OpenCounts()
	assert.Equal(t, 1, vehicles)
}

func TestVehicleHasArrivedTransfersPassenger(t *testing.T) {
	fc := newFakeController()
	m := NewRideMatcher(fc, newFakeSource(100))

	m.PassengerRequestsRide(100, routemodel.Coordinate{})
	m.VehicleRequestsPassenger(0)
	m.VehicleHasArrived(0)

	assert.Equal(t, []int{0}, fc.transferred)
	_, _, pending := m.OpenCounts()
	assert.Zero(t, pending)
}

func TestVehicleHasArrivedStale(t *testing.T) {
	fc := newFakeController()
	m := NewRideMatcher(fc, newFakeSource())

	// No pending match: the arrival is discarded silently.
	m.VehicleHasArrived(3)
	assert.Empty(t, fc.transferred)
}

func TestVehicleHasArrivedHandoffGone(t *testing.T) {
	fc := newFakeController()
	src := newFakeSource(100)
	m := NewRideMatcher(fc, src)

	m.PassengerRequestsRide(100, routemodel.Coordinate{})
	m.VehicleRequestsPassenger(0)

	// The passenger vanishes before the vehicle arrives.
	_, err := src.HandOff(100)
	require.NoError(t, err)

	m.VehicleHasArrived(0)
	assert.Empty(t, fc.transferred)
}

func TestVehicleCannotReachRequeuesPassengerAtHead(t *testing.T) {
	fc := newFakeController()
	m := NewRideMatcher(fc, newFakeSource(100, 101))

	m.PassengerRequestsRide(100, routemodel.Coordinate{X: 100})
	m.PassengerRequestsRide(101, routemodel.Coordinate{X: 101})
	m.VehicleRequestsPassenger(0)

	require.Equal(t, []int{0}, fc.assigned)

	m.VehicleCannotReach(0)
	assert.Equal(t, []int{0}, fc.failed)

	// Passenger 100 is back at the head: the next vehicle gets it first.
	m.VehicleRequestsPassenger(1)
	assert.Equal(t, routemodel.Coordinate{X: 100}, fc.pickups[1])
}

func TestVehicleCannotReachStale(t *testing.T) {
	fc := newFakeController()
	m := NewRideMatcher(fc, newFakeSource())

	m.VehicleCannotReach(8)
	assert.Empty(t, fc.failed)
}

func TestReturnPassenger(t *testing.T) {
	src := newFakeSource()
	m := NewRideMatcher(newFakeController(), src)

	m.ReturnPassenger(2, &Passenger{ID: 55})
	assert.Equal(t, []int{55}, src.reinserted)
}

func TestNoVehicleInBothOpenAndPending(t *testing.T) {
	fc := newFakeController()
	m := NewRideMatcher(fc, newFakeSource(100, 101, 102))

	m.PassengerRequestsRide(100, routemodel.Coordinate{})
	m.VehicleRequestsPassenger(0)
	m.VehicleRequestsPassenger(1)
	m.PassengerRequestsRide(101, routemodel.Coordinate{})

	m.mtx.Lock()
	defer m.mtx.Unlock()
	for _, vid := range m.openVehicles {
		_, pending := m.pendingArrival[vid]
		assert.False(t, pending, "vehicle %d is both open and pending", vid)
	}
}
