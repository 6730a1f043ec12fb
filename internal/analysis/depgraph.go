package analysis

import (
	"encoding/json"
	"sort"

	"github.com/standardbeagle/orc/internal/resolver"
	"github.com/standardbeagle/orc/internal/store"
)

// GraphNode is one module in the dependency-graph data, with its
// connection count (distinct importing files).
type GraphNode struct {
	Module      string `json:"module"`
	Connections int    `json:"connections"`
}

// GraphEdge is one (importer-file, imported-module) pair.
type GraphEdge struct {
	Importer string `json:"importer"`
	Module   string `json:"module"`
}

// DependencyGraph is the top-k most-connected modules and their edges,
// capped per node to bound graph size on large repos, per spec.md §4.10.
type DependencyGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// DependencyGraphArgs bounds the graph: MinConnections filters modules
// below the threshold, TopK caps node count, MaxEdgesPerNode caps edges
// surfaced for any one module.
type DependencyGraphArgs struct {
	MinConnections  int `json:"min_connections"`
	TopK            int `json:"top_k"`
	MaxEdgesPerNode int `json:"max_edges_per_node"`
}

func (a *Analyzer) DependencyGraph(args DependencyGraphArgs) (*DependencyGraph, error) {
	args.MinConnections = clampLimit(args.MinConnections, 1)
	args.TopK = clampLimit(args.TopK, 25)
	args.MaxEdgesPerNode = clampLimit(args.MaxEdgesPerNode, 20)

	return withCache(a, "dependency_graph", args, func() (*DependencyGraph, error) {
		fanIn, err := a.db.IterImportFanIn()
		if err != nil {
			return nil, queryErr("dependency_graph", err)
		}
		allEdges, err := a.db.IterImportEdges()
		if err != nil {
			return nil, queryErr("dependency_graph", err)
		}

		nodes := make([]GraphNode, 0, len(fanIn))
		for module, count := range fanIn {
			if count < args.MinConnections {
				continue
			}
			nodes = append(nodes, GraphNode{Module: module, Connections: count})
		}
		sort.Slice(nodes, func(i, j int) bool {
			if nodes[i].Connections != nodes[j].Connections {
				return nodes[i].Connections > nodes[j].Connections
			}
			return nodes[i].Module < nodes[j].Module
		})
		if len(nodes) > args.TopK {
			nodes = nodes[:args.TopK]
		}

		included := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			included[n.Module] = true
		}

		edgesPerModule := make(map[string]int, len(nodes))
		var edges []GraphEdge
		for _, e := range allEdges {
			if !included[e.Module] {
				continue
			}
			if edgesPerModule[e.Module] >= args.MaxEdgesPerNode {
				continue
			}
			edgesPerModule[e.Module]++
			edges = append(edges, GraphEdge{Importer: e.File, Module: e.Module})
		}
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].Module != edges[j].Module {
				return edges[i].Module < edges[j].Module
			}
			return edges[i].Importer < edges[j].Importer
		})

		return &DependencyGraph{Nodes: nodes, Edges: edges}, nil
	})
}

// ResolvedDependencies reads back internal/resolver's Result from the
// graphs table — the file-dependency edges, resolved function calls, and
// detected cycles the indexing pipeline persisted after running the
// resolver over the merged ParseResult, per spec.md §4.7/§4.8. ok is false
// if the pipeline has not yet run (or ran before this table existed).
func (a *Analyzer) ResolvedDependencies() (result *resolver.Result, ok bool, err error) {
	blob, ok, err := a.db.LoadGraph(store.GraphTypeResolvedEdges)
	if err != nil {
		return nil, false, queryErr("resolved_dependencies", err)
	}
	if !ok {
		return nil, false, nil
	}
	var r resolver.Result
	if err := json.Unmarshal(blob, &r); err != nil {
		return nil, false, queryErr("resolved_dependencies", err)
	}
	return &r, true, nil
}
