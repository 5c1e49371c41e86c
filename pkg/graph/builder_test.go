package graph

import (
	"testing"

	"github.com/paulmach/osm"

	osmparser "github.com/venomous-maker/RideshareSimulation/pkg/osm"
)

// testParseResult builds a small road network:
//
//	10 --- 20 --- 30
//	 |             |
//	40 --- 50 --- 60
func testParseResult() *osmparser.ParseResult {
	return &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Weight: 100},
			{FromNodeID: 20, ToNodeID: 30, Weight: 200},
			{FromNodeID: 10, ToNodeID: 40, Weight: 300},
			{FromNodeID: 30, ToNodeID: 60, Weight: 400},
			{FromNodeID: 40, ToNodeID: 50, Weight: 500},
			{FromNodeID: 50, ToNodeID: 60, Weight: 600},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.300, 20: 1.300, 30: 1.300, 40: 1.301, 50: 1.301, 60: 1.301},
		NodeLon: map[osm.NodeID]float64{10: 103.800, 20: 103.801, 30: 103.802, 40: 103.800, 50: 103.801, 60: 103.802},
	}
}

func TestBuild(t *testing.T) {
	g := Build(testParseResult())

	if g.NumNodes != 6 {
		t.Fatalf("NumNodes = %d, want 6", g.NumNodes)
	}
	// 6 undirected segments → 12 directed arcs.
	if g.NumEdges != 12 {
		t.Fatalf("NumEdges = %d, want 12", g.NumEdges)
	}
	if len(g.FirstOut) != 7 {
		t.Fatalf("len(FirstOut) = %d, want 7", len(g.FirstOut))
	}
	if g.FirstOut[6] != 12 {
		t.Errorf("FirstOut[6] = %d, want 12", g.FirstOut[6])
	}

	// Node 0 (OSM id 10) has neighbours 1 (id 20) and degree-2 total.
	start, end := g.EdgesFrom(0)
	if end-start != 2 {
		t.Errorf("node 0 degree = %d, want 2", end-start)
	}

	// Undirected: every arc u→v has a reverse arc v→u with the same weight.
	for u := uint32(0); u < g.NumNodes; u++ {
		s, e := g.EdgesFrom(u)
		for a := s; a < e; a++ {
			v := g.Head[a]
			found := false
			rs, re := g.EdgesFrom(v)
			for b := rs; b < re; b++ {
				if g.Head[b] == u && g.Weight[b] == g.Weight[a] {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("arc %d→%d has no reverse", u, v)
			}
		}
	}
}

func TestBuildDeterministicNeighbourOrder(t *testing.T) {
	g1 := Build(testParseResult())
	g2 := Build(testParseResult())

	for u := uint32(0); u < g1.NumNodes; u++ {
		s1, e1 := g1.EdgesFrom(u)
		s2, e2 := g2.EdgesFrom(u)
		if e1-s1 != e2-s2 {
			t.Fatalf("node %d degree differs between builds", u)
		}
		for i := uint32(0); i < e1-s1; i++ {
			if g1.Head[s1+i] != g2.Head[s2+i] {
				t.Errorf("node %d neighbour %d differs between builds", u, i)
			}
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	g := Build(&osmparser.ParseResult{})
	if g.NumNodes != 0 || g.NumEdges != 0 {
		t.Errorf("empty parse result should build empty graph, got %d nodes %d edges", g.NumNodes, g.NumEdges)
	}
}
