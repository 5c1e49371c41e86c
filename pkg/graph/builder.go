package graph

import (
	"sort"

	"github.com/paulmach/osm"

	osmparser "github.com/venomous-maker/RideshareSimulation/pkg/osm"
)

// Build creates a CSR Graph from parsed undirected OSM edges. Each RawEdge
// becomes two directed arcs. Node indices are assigned in first-seen order
// over the edge list, which keeps neighbour iteration order stable across
// runs on the same input.
func Build(result *osmparser.ParseResult) *Graph {
	edges := result.Edges
	if len(edges) == 0 {
		return &Graph{FirstOut: []uint32{0}}
	}

	// Step 1: Collect all unique node IDs and build a compact mapping.
	nodeSet := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID

	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeSet[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}

	for i := range edges {
		addNode(edges[i].FromNodeID)
		addNode(edges[i].ToNodeID)
	}

	numNodes := uint32(len(nodeIDs))

	// Step 2: Realize both directions of every undirected segment.
	type arc struct {
		from, to, weight uint32
	}

	arcs := make([]arc, 0, 2*len(edges))
	for _, e := range edges {
		u := nodeSet[e.FromNodeID]
		v := nodeSet[e.ToNodeID]
		arcs = append(arcs, arc{from: u, to: v, weight: e.Weight})
		arcs = append(arcs, arc{from: v, to: u, weight: e.Weight})
	}

	// Step 3: Sort arcs by source node, then target, for deterministic
	// neighbour order.
	sort.Slice(arcs, func(i, j int) bool {
		if arcs[i].from != arcs[j].from {
			return arcs[i].from < arcs[j].from
		}
		return arcs[i].to < arcs[j].to
	})

	// Step 4: Build CSR arrays.
	numEdges := uint32(len(arcs))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	weight := make([]uint32, numEdges)

	for i, a := range arcs {
		head[i] = a.to
		weight[i] = a.weight
	}

	// Build FirstOut via counting.
	for _, a := range arcs {
		firstOut[a.from+1]++
	}
	// Prefix sum.
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	// Step 5: Populate node coordinates.
	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)
	for id, idx := range nodeSet {
		nodeLat[idx] = result.NodeLat[id]
		nodeLon[idx] = result.NodeLon[id]
	}

	return &Graph{
		NumNodes: numNodes,
		NumEdges: numEdges,
		FirstOut: firstOut,
		Head:     head,
		Weight:   weight,
		NodeLat:  nodeLat,
		NodeLon:  nodeLon,
	}
}
