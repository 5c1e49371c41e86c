// Package routing plans paths over the route model with A* search.
package routing

import (
	"github.com/venomous-maker/RideshareSimulation/pkg/routemodel"
)

// Planner runs A* searches over a route model. Safe for concurrent use:
// all per-search state is local.
type Planner struct {
	model *routemodel.Model
}

// NewPlanner creates a planner over the given model.
func NewPlanner(model *routemodel.Model) *Planner {
	return &Planner{model: model}
}

// Search returns the node positions along an A* path from start to goal,
// after snapping both to their closest road nodes. A node's parent and g are
// fixed when it is first discovered and never relaxed afterwards, so the
// path is not guaranteed to be the shortest one. The path excludes
// the start node and includes the goal node, so a vehicle standing on the
// start node heads straight for the first entry. Returns nil when the goal
// is unreachable; callers treat nil as "unroutable" and recover locally.
func (p *Planner) Search(start, goal routemodel.Coordinate) []routemodel.Coordinate {
	m := p.model
	startNode := m.ClosestNode(start)
	goalNode := m.ClosestNode(goal)

	if startNode.Index == goalNode.Index {
		return []routemodel.Coordinate{goalNode.Position}
	}

	n := m.NumNodes()
	visited := make([]bool, n)
	parent := make([]int32, n)
	gScore := make([]float64, n)
	for i := range parent {
		parent[i] = -1
	}

	var open minHeap
	visited[startNode.Index] = true
	open.Push(pqItem{
		Node: startNode.Index,
		F:    m.Distance(startNode, goalNode),
		H:    m.Distance(startNode, goalNode),
	})

	for open.Len() > 0 {
		cur := open.Pop()

		if cur.Node == goalNode.Index {
			return p.reconstruct(parent, startNode.Index, goalNode.Index)
		}

		curNode := m.Node(cur.Node)
		g := gScore[cur.Node]
		for _, nb := range m.Neighbours(curNode) {
			if visited[nb.Index] {
				continue
			}
			visited[nb.Index] = true
			parent[nb.Index] = cur.Node

			tentative := g + m.Distance(curNode, nb)
			gScore[nb.Index] = tentative
			h := m.Distance(nb, goalNode)
			open.Push(pqItem{Node: nb.Index, F: tentative + h, H: h})
		}
	}

	// Open set exhausted without expanding the goal.
	return nil
}

// reconstruct walks parent pointers from goal back to start and reverses,
// dropping the start node.
func (p *Planner) reconstruct(parent []int32, start, goal int32) []routemodel.Coordinate {
	var rev []routemodel.Coordinate
	for at := goal; at != start; at = parent[at] {
		rev = append(rev, p.model.Node(at).Position)
	}

	path := make([]routemodel.Coordinate, len(rev))
	for i, c := range rev {
		path[len(rev)-1-i] = c
	}
	return path
}
