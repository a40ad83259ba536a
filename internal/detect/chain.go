package detect

import (
	"fmt"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
)

// ChainConfig controls Detection C.
type ChainConfig struct {
	MaxChainLength int
	MaxGraphNodes  int
	// CycleDetection is parsed for config-schema compatibility but has no
	// behavioral effect: the DFS's per-path visited set already makes cycle
	// safety structural, not optional (see SPEC_FULL.md Open Question #2).
	CycleDetection bool
}

type chainFrame struct {
	node NodeIDPath
}

// NodeIDPath is a path of node IDs from the DFS starting node to the
// current frontier.
type NodeIDPath = []authgraph.NodeID

// AuthChain walks the graph with an iterative DFS starting from
// startingNode, reporting every simple path whose hop count exceeds
// maxChainLength. The DFS tracks a per-path visited set (not global), so a
// node already on the current path is never extended — cycles cannot
// produce infinite walks.
func AuthChain(g *authgraph.DirectedGraph, cfg ChainConfig, startingNode authgraph.NodeID) []*Result {
	var results []*Result

	if g.NodeCount() > cfg.MaxGraphNodes {
		return results // safety bail-out: graph too large to walk
	}
	if !g.HasNode(startingNode) {
		return results
	}

	cutoff := cfg.MaxChainLength + 1

	for _, path := range allSimplePathsFrom(g, startingNode, cutoff) {
		hopCount := len(path) - 1
		if hopCount <= cfg.MaxChainLength {
			continue
		}

		edgeIDs := collectEdgeIDs(g, path)
		hostID := "unknown"
		if attrs := g.Node(startingNode); attrs != nil && attrs.HostID != "" {
			hostID = attrs.HostID
		}

		results = append(results, &Result{
			DetectionType: authgraph.DetectionAuthChain,
			Severity:      authgraph.SeverityHigh,
			EdgeIDs:       edgeIDs,
			NodeIDs:       append([]authgraph.NodeID(nil), path...),
			HostID:        hostID,
			Description: fmt.Sprintf(
				"Excessive auth chain from %s: %d hops (threshold: %d)",
				startingNode, hopCount, cfg.MaxChainLength,
			),
			Metadata: map[string]any{
				"path":          path,
				"hop_count":     hopCount,
				"starting_node": startingNode,
			},
		})
	}

	return results
}

// allSimplePathsFrom enumerates every simple path from source up to cutoff
// edges, via an explicit stack (LIFO neighbor expansion — paths are
// reported in DFS discovery order). A path is recorded whenever it has at
// least one edge; extension stops once a path already has cutoff edges.
func allSimplePathsFrom(g *authgraph.DirectedGraph, source authgraph.NodeID, cutoff int) []NodeIDPath {
	var paths []NodeIDPath

	type stackItem struct {
		path NodeIDPath
	}
	stack := []stackItem{{path: NodeIDPath{source}}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(top.path) > 1 {
			paths = append(paths, top.path)
		}
		if len(top.path)-1 >= cutoff {
			continue
		}

		visited := make(map[authgraph.NodeID]bool, len(top.path))
		for _, n := range top.path {
			visited[n] = true
		}

		node := top.path[len(top.path)-1]
		for _, neighbor := range g.Neighbors(node) {
			if visited[neighbor] {
				continue
			}
			extended := make(NodeIDPath, len(top.path)+1)
			copy(extended, top.path)
			extended[len(top.path)] = neighbor
			stack = append(stack, stackItem{path: extended})
		}
	}

	return paths
}

// collectEdgeIDs picks, for each consecutive node pair in path, the first
// event_id recorded in that pair's edge_list.
func collectEdgeIDs(g *authgraph.DirectedGraph, path NodeIDPath) []authgraph.EventID {
	ids := make([]authgraph.EventID, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		edge := g.Edge(path[i], path[i+1])
		if edge == nil || len(edge.EdgeList) == 0 {
			continue
		}
		ids = append(ids, edge.EdgeList[0].EventID)
	}
	return ids
}
