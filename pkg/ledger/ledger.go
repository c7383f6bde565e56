// pkg/ledger/ledger.go

// Package ledger audits exported or in-memory chains. Unlike chain.Verify,
// which stops at the first broken block, an audit visits every block and
// reports every violation it finds.
package ledger

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/powledger/powledger/pkg/chain"
	"github.com/powledger/powledger/pkg/types"
)

// Kind classifies a violation.
type Kind string

const (
	KindEmpty         Kind = "empty"
	KindGenesis       Kind = "genesis"
	KindIndex         Kind = "index"
	KindHash          Kind = "hash"
	KindLink          Kind = "link"
	KindProofOfWork   Kind = "proof-of-work"
	KindTopology      Kind = "topology"
	KindSerialization Kind = "serialization"
)

// Violation is a single finding. Index is the position of the offending block
// in the audited sequence, -1 for findings about the chain as a whole.
type Violation struct {
	Index  int
	Kind   Kind
	Detail string
}

func (v Violation) String() string {
	if v.Index < 0 {
		return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
	}
	return fmt.Sprintf("block %d: %s: %s", v.Index, v.Kind, v.Detail)
}

// Report is the outcome of an audit.
type Report struct {
	Blocks     int
	Difficulty uint32
	Head       types.Hash
	Violations []Violation
}

// Valid reports whether the audit found nothing.
func (r Report) Valid() bool {
	return len(r.Violations) == 0
}

// Err summarizes the violations as an error, nil for a valid report.
func (r Report) Err() error {
	if r.Valid() {
		return nil
	}
	parts := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		parts = append(parts, v.String())
	}
	return errors.Errorf("audit found %d violation(s): %s", len(r.Violations), strings.Join(parts, "; "))
}

// ByKind returns the violations of the given kind.
func (r Report) ByKind(kind Kind) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}

func (r *Report) add(index int, kind Kind, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{
		Index:  index,
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	})
}

// AuditChain audits the current blocks of c at the chain's own difficulty.
func AuditChain[T any](c *chain.Chain[T], genesis types.Hash) Report {
	return Audit(c.Blocks(), c.Difficulty(), genesis)
}
