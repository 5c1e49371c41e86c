// Package routemodel exposes the immutable road network the simulation
// drives on: node lookup, neighbour iteration, bounds and random positions.
package routemodel

import (
	"errors"

	"github.com/tidwall/rtree"

	"github.com/venomous-maker/RideshareSimulation/pkg/geo"
	"github.com/venomous-maker/RideshareSimulation/pkg/graph"
	"github.com/venomous-maker/RideshareSimulation/pkg/randengine"
)

// ErrEmptyGraph is returned when the road graph has no nodes.
var ErrEmptyGraph = errors.New("road graph has no nodes")

// Coordinate is a point on the degree plane: X is longitude, Y is latitude.
// Equality is exact float equality — the simulation snaps positions onto
// node coordinates, so bitwise matches are meaningful.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean degree-plane distance to o.
func (c Coordinate) DistanceTo(o Coordinate) float64 {
	return geo.PlaneDist(c.X, c.Y, o.X, o.Y)
}

// Node is a road graph vertex.
type Node struct {
	Index    int32
	Position Coordinate
}

// Bounds is the rectangular extent of the loaded map.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Model is the immutable route model. All methods are safe for concurrent
// use; nothing mutates after New returns.
type Model struct {
	g      *graph.Graph
	eng    *randengine.Engine
	bounds Bounds
	tree   rtree.RTreeG[int32]
}

// New builds a route model over the given road graph. The engine supplies
// random positions; the R-tree over node points serves nearest-node lookup.
func New(g *graph.Graph, eng *randengine.Engine) (*Model, error) {
	if g == nil || g.NumNodes == 0 {
		return nil, ErrEmptyGraph
	}

	m := &Model{g: g, eng: eng}

	m.bounds = Bounds{
		MinLat: g.NodeLat[0], MaxLat: g.NodeLat[0],
		MinLon: g.NodeLon[0], MaxLon: g.NodeLon[0],
	}
	for i := uint32(0); i < g.NumNodes; i++ {
		lat, lon := g.NodeLat[i], g.NodeLon[i]
		if lat < m.bounds.MinLat {
			m.bounds.MinLat = lat
		}
		if lat > m.bounds.MaxLat {
			m.bounds.MaxLat = lat
		}
		if lon < m.bounds.MinLon {
			m.bounds.MinLon = lon
		}
		if lon > m.bounds.MaxLon {
			m.bounds.MaxLon = lon
		}
		p := [2]float64{lon, lat}
		m.tree.Insert(p, p, int32(i))
	}

	return m, nil
}

// Bounds returns the map extent.
func (m *Model) Bounds() Bounds {
	return m.bounds
}

// NumNodes returns the number of road nodes.
func (m *Model) NumNodes() int {
	return int(m.g.NumNodes)
}

// Node returns the node with the given index.
func (m *Model) Node(i int32) Node {
	return Node{
		Index:    i,
		Position: Coordinate{X: m.g.NodeLon[i], Y: m.g.NodeLat[i]},
	}
}

// RandomPosition returns a position uniformly distributed over the map
// bounds. It is not snapped to a road node.
func (m *Model) RandomPosition() Coordinate {
	return Coordinate{
		X: m.eng.InRangeSafe(m.bounds.MinLon, m.bounds.MaxLon),
		Y: m.eng.InRangeSafe(m.bounds.MinLat, m.bounds.MaxLat),
	}
}

// ClosestNode returns the road node nearest to c by Euclidean degree-plane
// distance. Equidistant candidates resolve to the lowest node index.
func (m *Model) ClosestNode(c Coordinate) Node {
	p := [2]float64{c.X, c.Y}

	best := int32(-1)
	bestDist := 0.0
	m.tree.Nearby(
		rtree.BoxDist[float64, int32](p, p, nil),
		func(min, max [2]float64, idx int32, dist float64) bool {
			if best < 0 {
				best, bestDist = idx, dist
				return true
			}
			if dist > bestDist {
				return false // candidates arrive in distance order
			}
			if idx < best {
				best = idx
			}
			return true
		},
	)

	return m.Node(best)
}

// Neighbours returns the nodes adjacent to n, in load order.
func (m *Model) Neighbours(n Node) []Node {
	start, end := m.g.EdgesFrom(uint32(n.Index))
	out := make([]Node, 0, end-start)
	for e := start; e < end; e++ {
		out = append(out, m.Node(int32(m.g.Head[e])))
	}
	return out
}

// Distance returns the Euclidean degree-plane distance between two nodes.
func (m *Model) Distance(a, b Node) float64 {
	return a.Position.DistanceTo(b.Position)
}

// Intersections returns the positions of every road node, for rendering.
// The returned slice is freshly allocated on each call.
func (m *Model) Intersections() []Coordinate {
	out := make([]Coordinate, m.g.NumNodes)
	for i := uint32(0); i < m.g.NumNodes; i++ {
		out[i] = Coordinate{X: m.g.NodeLon[i], Y: m.g.NodeLat[i]}
	}
	return out
}
