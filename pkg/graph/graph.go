package graph

// Graph represents an undirected road graph in CSR (Compressed Sparse Row)
// format. Every road segment is stored as two directed arcs, so neighbour
// iteration from either endpoint sees the segment.
type Graph struct {
	NumNodes uint32
	NumEdges uint32    // number of directed arcs (2x the undirected segments)
	FirstOut []uint32  // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are arcs from node i
	Head     []uint32  // len: NumEdges; target node for each arc
	Weight   []uint32  // len: NumEdges; distance in millimeters
	NodeLat  []float64 // len: NumNodes
	NodeLon  []float64 // len: NumNodes
}

// EdgesFrom returns the range of arc indices for arcs originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}
