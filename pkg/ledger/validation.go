// pkg/ledger/validation.go

package ledger

import (
	"github.com/powledger/powledger/pkg/types"
)

// Audit checks every block of blocks and collects all violations:
//
//   - the first block is a genesis block (index 0, ZeroHash predecessor) and,
//     unless genesis is ZeroHash, carries exactly the pinned genesis hash;
//   - indexes are consecutive;
//   - every stored hash matches the block contents;
//   - every block after genesis references its predecessor and meets the
//     proof-of-work difficulty;
//   - the hash references form a single path from genesis to head.
//
// The genesis block is not required to meet the difficulty since it is
// never mined.
func Audit[T any](blocks []types.Block[T], difficulty uint32, genesis types.Hash) Report {
	report := Report{
		Blocks:     len(blocks),
		Difficulty: difficulty,
	}

	if len(blocks) == 0 {
		report.add(-1, KindEmpty, "no blocks to audit")
		return report
	}
	report.Head = blocks[len(blocks)-1].Hash

	auditGenesis(&report, &blocks[0], genesis)

	for i := 1; i < len(blocks); i++ {
		current := &blocks[i]
		previous := &blocks[i-1]

		if current.Index != previous.Index+1 {
			report.add(i, KindIndex, "index %d does not follow %d", current.Index, previous.Index)
		}
		auditHash(&report, i, current)
		if !current.PreviousHash.Equal(previous.Hash) {
			report.add(i, KindLink, "previous hash %s does not match predecessor %s",
				current.PreviousHash.Hex(), previous.Hash.Hex())
		}
		if !current.MeetsDifficulty(difficulty) {
			report.add(i, KindProofOfWork, "hash %s has %d leading zeros, %d required",
				current.Hash.Hex(), current.Hash.LeadingZeros(), difficulty)
		}
	}

	auditTopology(&report, blocks)
	return report
}

func auditGenesis[T any](report *Report, block *types.Block[T], genesis types.Hash) {
	if block.Index != 0 {
		report.add(0, KindGenesis, "genesis index is %d", block.Index)
	}
	if !types.IsZeroHash(block.PreviousHash) {
		report.add(0, KindGenesis, "genesis previous hash %s is not the zero hash", block.PreviousHash.Hex())
	}
	auditHash(report, 0, block)
	if !types.IsZeroHash(genesis) && !block.Hash.Equal(genesis) {
		report.add(0, KindGenesis, "genesis hash %s, expected %s", block.Hash.Hex(), genesis.Hex())
	}
}

func auditHash[T any](report *Report, index int, block *types.Block[T]) {
	expected, err := block.ComputeHash()
	if err != nil {
		report.add(index, KindSerialization, "%v", err)
		return
	}
	if !expected.Equal(block.Hash) {
		report.add(index, KindHash, "stored hash %s, computed %s", block.Hash.Hex(), expected.Hex())
	}
}
