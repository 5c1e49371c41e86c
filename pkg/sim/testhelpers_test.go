package sim

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/require"

	"github.com/venomous-maker/RideshareSimulation/pkg/graph"
	osmparser "github.com/venomous-maker/RideshareSimulation/pkg/osm"
	"github.com/venomous-maker/RideshareSimulation/pkg/randengine"
	"github.com/venomous-maker/RideshareSimulation/pkg/routemodel"
	"github.com/venomous-maker/RideshareSimulation/pkg/routing"
)

// newTestModel builds a 2x3 grid plus a disconnected two-node island:
//
//	0 (1.300,103.800) — 1 (1.300,103.801) — 2 (1.300,103.802)
//	|                   |                   |
//	3 (1.301,103.800) — 4 (1.301,103.801) — 5 (1.301,103.802)
//
//	6 (1.400,103.900) — 7 (1.400,103.901)   (island)
func newTestModel(t *testing.T) *routemodel.Model {
	t.Helper()
	g := graph.Build(&osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Weight: 100},
			{FromNodeID: 20, ToNodeID: 30, Weight: 100},
			{FromNodeID: 10, ToNodeID: 40, Weight: 100},
			{FromNodeID: 20, ToNodeID: 50, Weight: 100},
			{FromNodeID: 30, ToNodeID: 60, Weight: 100},
			{FromNodeID: 40, ToNodeID: 50, Weight: 100},
			{FromNodeID: 50, ToNodeID: 60, Weight: 100},
			{FromNodeID: 70, ToNodeID: 80, Weight: 100},
		},
		NodeLat: map[osm.NodeID]float64{
			10: 1.300, 20: 1.300, 30: 1.300,
			40: 1.301, 50: 1.301, 60: 1.301,
			70: 1.400, 80: 1.400,
		},
		NodeLon: map[osm.NodeID]float64{
			10: 103.800, 20: 103.801, 30: 103.802,
			40: 103.800, 50: 103.801, 60: 103.802,
			70: 103.900, 80: 103.901,
		},
	})
	m, err := routemodel.New(g, randengine.New(42))
	require.NoError(t, err)
	return m
}

// testWiring is a fully wired manager/queue/matcher trio with empty pools,
// ready for tests to inject vehicles and passengers by hand.
type testWiring struct {
	model   *routemodel.Model
	manager *VehicleManager
	queue   *PassengerQueue
	matcher *RideMatcher
}

// newTestWiring wires real actors over the grid model. Pools start empty;
// step distance covers one grid edge (0.001 degrees) per tick.
func newTestWiring(t *testing.T) *testWiring {
	t.Helper()
	model := newTestModel(t)
	eng := randengine.New(42)
	planner := routing.NewPlanner(model)

	manager := NewVehicleManager(model, planner, eng, 0, 3, 0.0015)
	queue := NewPassengerQueue(model, eng, 0)
	matcher := NewRideMatcher(manager, queue)

	manager.SetMatcher(matcher)
	manager.SetCompleter(queue)
	queue.SetMatcher(matcher)

	return &testWiring{model: model, manager: manager, queue: queue, matcher: matcher}
}

// addVehicle places a vehicle on the given node, heading for another node.
func (w *testWiring) addVehicle(at, toward int32) *Vehicle {
	v := &Vehicle{
		ID:          len(w.manager.vehicles),
		Position:    w.model.Node(at).Position,
		Destination: w.model.Node(toward).Position,
		State:       NoPassengerRequested,
	}
	w.manager.vehicles = append(w.manager.vehicles, v)
	return v
}

// addPassenger places an unrequested passenger wanting a ride between the
// given nodes.
func (w *testWiring) addPassenger(from, to int32) *Passenger {
	p := &Passenger{
		ID:          w.queue.nextID,
		Start:       w.model.Node(from).Position,
		Destination: w.model.Node(to).Position,
		Position:    w.model.Node(from).Position,
	}
	w.queue.nextID++
	w.queue.newPassengers = append(w.queue.newPassengers, p)
	return p
}

// checkOwnershipInvariant asserts that a vehicle carries a passenger
// exactly when it is in the DrivingPassenger state.
func checkOwnershipInvariant(t *testing.T, vm *VehicleManager) {
	t.Helper()
	vm.mtx.Lock()
	defer vm.mtx.Unlock()
	for _, v := range vm.vehicles {
		if (v.Passenger != nil) != (v.State == DrivingPassenger) {
			t.Errorf("vehicle %d: passenger=%v but state=%s", v.ID, v.Passenger != nil, v.State)
		}
	}
}
