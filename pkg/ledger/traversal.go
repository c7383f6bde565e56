// pkg/ledger/traversal.go

package ledger

import (
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/powledger/powledger/pkg/types"
)

func auditTopology[T any](report *Report, blocks []types.Block[T]) {
	l := buildLinkage(report, blocks)
	l.forks(report)

	if len(blocks) < 2 {
		return
	}

	path, err := l.path(blocks[0].Hash.Hex(), blocks[len(blocks)-1].Hash.Hex())
	if err != nil {
		if errors.Is(err, graph.ErrTargetNotReachable) {
			report.add(-1, KindTopology, "head is not reachable from genesis")
			return
		}
		report.add(-1, KindTopology, "failed to walk from genesis to head: %v", err)
		return
	}

	if offPath := len(l.indexes) - len(path); offPath > 0 {
		report.add(-1, KindTopology, "%d block(s) are not on the path from genesis to head", offPath)
	}
}

// path returns the hashes from genesis to head following references.
func (l *linkage) path(genesis, head string) ([]string, error) {
	if genesis == head {
		return []string{genesis}, nil
	}
	return graph.ShortestPath(l.graph, genesis, head)
}
