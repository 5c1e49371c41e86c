// Package sim holds the concurrent simulation core: the vehicle fleet, the
// passenger queue and the ride matcher, each a long-running actor ticking
// at its own rate.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/venomous-maker/RideshareSimulation/pkg/randengine"
	"github.com/venomous-maker/RideshareSimulation/pkg/routemodel"
	"github.com/venomous-maker/RideshareSimulation/pkg/routing"
)

// Options sizes and paces the simulation.
type Options struct {
	MaxVehicles      int
	MaxPassengers    int
	FailureLimit     int
	DistancePerCycle float64 // degrees per tick; <= 0 derives from map bounds
	TickInterval     time.Duration
	GenerateInterval time.Duration
	MatchInterval    time.Duration
}

// DefaultOptions returns the stock simulation sizing.
func DefaultOptions() Options {
	return Options{
		MaxVehicles:      10,
		MaxPassengers:    10,
		FailureLimit:     10,
		TickInterval:     10 * time.Millisecond,
		GenerateInterval: 50 * time.Millisecond,
		MatchInterval:    50 * time.Millisecond,
	}
}

// Simulation wires the actors together and owns their goroutines.
type Simulation struct {
	opts Options

	model   *routemodel.Model
	manager *VehicleManager
	queue   *PassengerQueue
	matcher *RideMatcher

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a stopped simulation over the given model.
func New(model *routemodel.Model, eng *randengine.Engine, opts Options) *Simulation {
	planner := routing.NewPlanner(model)

	manager := NewVehicleManager(model, planner, eng, opts.MaxVehicles, opts.FailureLimit, opts.DistancePerCycle)
	queue := NewPassengerQueue(model, eng, opts.MaxPassengers)
	matcher := NewRideMatcher(manager, queue)

	manager.SetMatcher(matcher)
	manager.SetCompleter(queue)
	queue.SetMatcher(matcher)

	return &Simulation{
		opts:    opts,
		model:   model,
		manager: manager,
		queue:   queue,
		matcher: matcher,
	}
}

// Model returns the road model the simulation runs on.
func (s *Simulation) Model() *routemodel.Model { return s.model }

// Manager returns the vehicle manager, for snapshots.
func (s *Simulation) Manager() *VehicleManager { return s.manager }

// Queue returns the passenger queue, for snapshots.
func (s *Simulation) Queue() *PassengerQueue { return s.queue }

// Matcher returns the ride matcher, for stats.
func (s *Simulation) Matcher() *RideMatcher { return s.matcher }

// Start launches the drive, generate and match loops. They stop when ctx
// is cancelled or Stop is called.
func (s *Simulation) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		s.manager.Run(ctx, s.opts.TickInterval)
	}()
	go func() {
		defer s.wg.Done()
		s.queue.Run(ctx, s.opts.GenerateInterval)
	}()
	go func() {
		defer s.wg.Done()
		s.matcher.Run(ctx, s.opts.MatchInterval)
	}()
}

// Stop cancels the actor loops and waits for them to exit.
func (s *Simulation) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
