package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/venomous-maker/RideshareSimulation/pkg/routemodel"
	"github.com/venomous-maker/RideshareSimulation/pkg/sim"
)

// Handlers serves pull-based snapshots of the running simulation. The
// renderer is treated as a pure consumer: every response is built from
// copies, never from live actor state.
type Handlers struct {
	sim     *sim.Simulation
	runID   string
	started time.Time

	// Intersections never change after map load; convert once.
	intersections []CoordinateJSON
}

// NewHandlers creates handlers over a wired simulation.
func NewHandlers(s *sim.Simulation, runID string) *Handlers {
	return &Handlers{
		sim:     s,
		runID:   runID,
		started: time.Now(),
		intersections: lo.Map(s.Model().Intersections(), func(c routemodel.Coordinate, _ int) CoordinateJSON {
			return CoordinateJSON{Lon: c.X, Lat: c.Y}
		}),
	}
}

// HandleIntersections handles GET /api/v1/intersections.
func (h *Handlers) HandleIntersections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.intersections)
}

// HandleVehicles handles GET /api/v1/vehicles.
func (h *Handlers) HandleVehicles(w http.ResponseWriter, r *http.Request) {
	snap := h.sim.Manager().SnapshotVehicles()
	writeJSON(w, lo.Map(snap, func(v sim.VehicleSnapshot, _ int) VehicleJSON {
		out := VehicleJSON{
			ID:       v.ID,
			Position: CoordinateJSON{Lon: v.Position.X, Lat: v.Position.Y},
			State:    v.State.String(),
		}
		if v.Color != nil {
			out.Color = &RGBJSON{R: v.Color.R, G: v.Color.G, B: v.Color.B}
		}
		return out
	}))
}

// HandlePassengers handles GET /api/v1/passengers.
func (h *Handlers) HandlePassengers(w http.ResponseWriter, r *http.Request) {
	snap := h.sim.Queue().SnapshotNewPassengers()
	writeJSON(w, lo.Map(snap, func(p sim.PassengerSnapshot, _ int) PassengerJSON {
		return PassengerJSON{
			ID:          p.ID,
			Start:       CoordinateJSON{Lon: p.Start.X, Lat: p.Start.Y},
			Destination: CoordinateJSON{Lon: p.Destination.X, Lat: p.Destination.Y},
			Color:       RGBJSON{R: p.Color.R, G: p.Color.G, B: p.Color.B},
		}
	}))
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	b := h.sim.Model().Bounds()
	openV, openP, pending := h.sim.Matcher().OpenCounts()

	writeJSON(w, StatsResponse{
		RunID:          h.runID,
		UptimeSeconds:  time.Since(h.started).Seconds(),
		NumNodes:       h.sim.Model().NumNodes(),
		NumVehicles:    len(h.sim.Manager().SnapshotVehicles()),
		NumPassengers:  len(h.sim.Queue().SnapshotNewPassengers()),
		OpenVehicles:   openV,
		OpenPassengers: openP,
		PendingArrival: pending,
		Bounds: BoundsJSON{
			MinLat: b.MinLat, MaxLat: b.MaxLat,
			MinLon: b.MinLon, MaxLon: b.MaxLon,
		},
	})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
