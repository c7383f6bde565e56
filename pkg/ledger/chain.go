// pkg/ledger/chain.go

package ledger

import (
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/powledger/powledger/pkg/types"
)

// linkage is the directed graph of hash references: an edge runs from a
// block to every block naming it as predecessor. Vertices are hex hashes.
type linkage struct {
	graph   graph.Graph[string, string]
	indexes map[string]int // first position of every hash
	order   []string       // distinct hashes in block order
}

// buildLinkage adds one vertex per distinct hash and one edge per resolvable
// reference, reporting duplicates, dangling references and cycles.
func buildLinkage[T any](report *Report, blocks []types.Block[T]) *linkage {
	l := &linkage{
		graph:   graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles()),
		indexes: make(map[string]int, len(blocks)),
	}

	duplicate := make(map[int]bool)
	for i := range blocks {
		hash := blocks[i].Hash.Hex()
		if err := l.graph.AddVertex(hash); err != nil {
			if errors.Is(err, graph.ErrVertexAlreadyExists) {
				report.add(i, KindTopology, "hash %s already used by block %d", hash, l.indexes[hash])
				duplicate[i] = true
				continue
			}
			report.add(i, KindTopology, "failed to add block to linkage graph: %v", err)
			continue
		}
		l.indexes[hash] = i
		l.order = append(l.order, hash)
	}

	for i := 1; i < len(blocks); i++ {
		if duplicate[i] {
			continue
		}
		source := blocks[i].PreviousHash.Hex()
		target := blocks[i].Hash.Hex()

		if _, err := l.graph.Vertex(source); err != nil {
			report.add(i, KindTopology, "predecessor %s is not part of the chain", source)
			continue
		}

		err := l.graph.AddEdge(source, target)
		switch {
		case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
		case errors.Is(err, graph.ErrEdgeCreatesCycle):
			report.add(i, KindTopology, "reference to %s creates a cycle", source)
		default:
			report.add(i, KindTopology, "failed to link block: %v", err)
		}
	}

	return l
}

// forks reports every block referenced as predecessor by more than one block.
func (l *linkage) forks(report *Report) {
	adjacency, err := l.graph.AdjacencyMap()
	if err != nil {
		report.add(-1, KindTopology, "failed to get adjacency map: %v", err)
		return
	}

	for _, hash := range l.order {
		if successors := len(adjacency[hash]); successors > 1 {
			report.add(l.indexes[hash], KindTopology, "block is the predecessor of %d blocks", successors)
		}
	}
}
