package compiler

import "github.com/roach88/kazt/internal/ir"

// adjacency maps block id -> ordered connection targets.
type adjacency map[string][]string

// buildAdjacency builds the directed graph of a block list and returns the
// node visit order (first appearance of each id).
//
// Blocks sharing an id contribute one node whose edges are the
// concatenation of every definition's connections, in block order.
func buildAdjacency(blocks []ir.RuleBlock) (adjacency, []string) {
	graph := make(adjacency, len(blocks))
	order := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if _, seen := graph[b.ID]; !seen {
			graph[b.ID] = []string{}
			order = append(order, b.ID)
		}
		graph[b.ID] = append(graph[b.ID], b.Connections...)
	}
	return graph, order
}

// frame is one level of the explicit DFS stack: a node and the index of the
// next outgoing edge to explore.
type frame struct {
	node string
	next int
}

// findCycle runs depth-first search from every unvisited node in order,
// tracking a visited set and the active path. It returns the first cycle
// found as a path that starts and ends at the same node, or nil for a DAG.
//
// The traversal uses an explicit stack of frames instead of recursion so
// stack depth does not grow with graph depth. Targets missing from graph
// are treated as leaves.
func findCycle(graph adjacency, order []string) []string {
	visited := make(map[string]bool, len(graph))
	onPath := make(map[string]bool)

	for _, root := range order {
		if visited[root] {
			continue
		}

		visited[root] = true
		onPath[root] = true
		stack := []frame{{node: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := graph[top.node]

			if top.next == len(edges) {
				onPath[top.node] = false
				stack = stack[:len(stack)-1]
				continue
			}

			neighbor := edges[top.next]
			top.next++

			if onPath[neighbor] {
				return cyclePath(stack, neighbor)
			}
			if !visited[neighbor] {
				visited[neighbor] = true
				onPath[neighbor] = true
				stack = append(stack, frame{node: neighbor})
			}
		}
	}

	return nil
}

// cyclePath extracts the cycle closing at target from the active stack.
func cyclePath(stack []frame, target string) []string {
	start := 0
	for i, f := range stack {
		if f.node == target {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.node)
	}
	return append(path, target)
}

// FindCycle reports the first cycle in a block graph, or nil if there is none.
func FindCycle(blocks []ir.RuleBlock) []string {
	graph, order := buildAdjacency(blocks)
	return findCycle(graph, order)
}
