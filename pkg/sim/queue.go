package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/venomous-maker/RideshareSimulation/pkg/randengine"
	"github.com/venomous-maker/RideshareSimulation/pkg/routemodel"
)

var queueLog = logrus.WithField("module", "passenger_queue")

// ErrNotFound is returned by HandOff when the passenger id is not waiting.
// Receiving it signals a protocol bug between matcher and queue.
var ErrNotFound = errors.New("passenger not found")

// RideRegistrar receives ride requests from the queue. Implemented by the
// RideMatcher.
type RideRegistrar interface {
	PassengerRequestsRide(passengerID int, pickup routemodel.Coordinate)
}

// PassengerQueue generates passengers and owns them until handoff. One
// mutex guards all queue state; the mutex is never held across calls into
// another actor.
type PassengerQueue struct {
	model    *routemodel.Model
	eng      *randengine.Engine
	poolSize int

	mtx           sync.Mutex
	matcher       RideRegistrar
	nextID        int
	newPassengers []*Passenger
	inTransit     map[int]struct{}
}

// NewPassengerQueue creates the queue and generates the initial pool.
func NewPassengerQueue(model *routemodel.Model, eng *randengine.Engine, poolSize int) *PassengerQueue {
	q := &PassengerQueue{
		model:     model,
		eng:       eng,
		poolSize:  poolSize,
		inTransit: make(map[int]struct{}),
	}
	for i := 0; i < poolSize; i++ {
		q.newPassengers = append(q.newPassengers, q.generate())
	}
	return q
}

// SetMatcher wires the ride matcher. Must be called before Run or Tick.
func (q *PassengerQueue) SetMatcher(m RideRegistrar) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	q.matcher = m
}

// Run generates and registers passengers until the context is cancelled.
func (q *PassengerQueue) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.Tick()
		}
	}
}

// Tick tops the pool back up after drop-offs and registers every passenger
// that has not yet asked for a ride.
func (q *PassengerQueue) Tick() {
	type request struct {
		id     int
		pickup routemodel.Coordinate
	}
	var requests []request

	q.mtx.Lock()
	for len(q.newPassengers)+len(q.inTransit) < q.poolSize {
		p := q.generate()
		q.newPassengers = append(q.newPassengers, p)
		queueLog.Infof("passenger %d looking for a ride from (%.5f, %.5f)", p.ID, p.Start.Y, p.Start.X)
	}
	matcher := q.matcher
	for _, p := range q.newPassengers {
		if !p.Requested {
			p.Requested = true
			requests = append(requests, request{id: p.ID, pickup: p.Start})
		}
	}
	q.mtx.Unlock()

	// Register outside the lock: the matcher takes its own lock first.
	if matcher == nil {
		return
	}
	for _, r := range requests {
		matcher.PassengerRequestsRide(r.id, r.pickup)
	}
}

// NewPassengers returns a snapshot of the passengers still waiting for
// pickup, for rendering.
func (q *PassengerQueue) NewPassengers() []Passenger {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	return lo.Map(q.newPassengers, func(p *Passenger, _ int) Passenger {
		return *p
	})
}

// HandOff transfers ownership of the passenger to the caller. The id moves
// to the in-transit set so the pool does not regenerate it mid-ride.
func (q *PassengerQueue) HandOff(id int) (*Passenger, error) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	for i, p := range q.newPassengers {
		if p.ID == id {
			q.newPassengers = append(q.newPassengers[:i], q.newPassengers[i+1:]...)
			q.inTransit[id] = struct{}{}
			return p, nil
		}
	}
	return nil, fmt.Errorf("hand off passenger %d: %w", id, ErrNotFound)
}

// Reinsert returns a passenger the vehicle could not carry to its
// destination. The ride request is reopened on the next tick.
func (q *PassengerQueue) Reinsert(p *Passenger) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	delete(q.inTransit, p.ID)
	p.Requested = false
	p.Position = p.Start
	q.newPassengers = append(q.newPassengers, p)
}

// CompleteRide clears the in-transit record after a drop-off, letting the
// generate tick spawn a replacement.
func (q *PassengerQueue) CompleteRide(id int) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	delete(q.inTransit, id)
}

// generate creates a passenger at a random snapped position with a random
// snapped destination. Caller-side locking is not needed: ids are only
// allocated here, and New runs before any concurrency starts while Tick
// holds the queue mutex.
func (q *PassengerQueue) generate() *Passenger {
	start := q.model.ClosestNode(q.model.RandomPosition()).Position
	dest := q.model.ClosestNode(q.model.RandomPosition()).Position

	p := &Passenger{
		ID:          q.nextID,
		Start:       start,
		Destination: dest,
		Position:    start,
		Color: RGB{
			R: uint8(q.eng.IntnSafe(256)),
			G: uint8(q.eng.IntnSafe(256)),
			B: uint8(q.eng.IntnSafe(256)),
		},
	}
	q.nextID++
	return p
}
