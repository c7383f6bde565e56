// pkg/ledger/ledger_test.go

package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powledger/powledger/pkg/chain"
	"github.com/powledger/powledger/pkg/types"
)

const difficulty = 1

// setupChain mines a chain of n blocks after genesis.
func setupChain(t *testing.T, n int) (*chain.Chain[string], types.Hash) {
	t.Helper()

	c, err := chain.New[string](difficulty)
	require.NoError(t, err, "Failed to create chain")

	for i := 0; i < n; i++ {
		_, err := c.Append(context.Background(), fmt.Sprintf("payload %d", i), fmt.Sprintf("ts-%d", i))
		require.NoError(t, err, "Failed to append block %d", i)
	}

	genesis, err := c.Genesis()
	require.NoError(t, err)
	return c, genesis.Hash
}

func reseal(t *testing.T, b *types.Block[string]) {
	t.Helper()
	require.NoError(t, b.Mine(context.Background(), difficulty))
}

func TestAuditValidChain(t *testing.T) {
	c, genesis := setupChain(t, 4)

	report := AuditChain(c, genesis)
	assert.True(t, report.Valid(), "unexpected violations: %v", report.Violations)
	assert.NoError(t, report.Err())
	assert.Equal(t, 5, report.Blocks)
	assert.Equal(t, uint32(difficulty), report.Difficulty)

	latest, err := c.Latest()
	require.NoError(t, err)
	assert.Equal(t, latest.Hash, report.Head)

	// Without a pinned genesis hash the audit still passes.
	assert.True(t, AuditChain(c, types.ZeroHash).Valid())
}

func TestAuditGenesisOnly(t *testing.T) {
	c, genesis := setupChain(t, 0)
	assert.True(t, AuditChain(c, genesis).Valid())
}

func TestAuditEmpty(t *testing.T) {
	report := Audit[string](nil, difficulty, types.ZeroHash)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, KindEmpty, report.Violations[0].Kind)
	assert.Equal(t, -1, report.Violations[0].Index)
}

func TestAuditCollectsEveryViolation(t *testing.T) {
	c, genesis := setupChain(t, 4)
	blocks := c.Blocks()

	// Two independent payload edits: Verify stops at the first one, the audit
	// must report both.
	blocks[1].Data = "forged"
	blocks[3].Data = "forged"

	report := Audit(blocks, difficulty, genesis)
	assert.False(t, report.Valid())
	assert.Error(t, report.Err())

	hashes := report.ByKind(KindHash)
	require.Len(t, hashes, 2)
	assert.Equal(t, 1, hashes[0].Index)
	assert.Equal(t, 3, hashes[1].Index)
	assert.Empty(t, report.ByKind(KindTopology), "stored hashes still link up")
}

func TestAuditResealedBlock(t *testing.T) {
	c, genesis := setupChain(t, 3)
	blocks := c.Blocks()

	blocks[2].Data = "forged"
	reseal(t, &blocks[2])

	report := Audit(blocks, difficulty, genesis)
	assert.Empty(t, report.ByKind(KindHash))

	links := report.ByKind(KindLink)
	require.Len(t, links, 1)
	assert.Equal(t, 3, links[0].Index)

	topology := report.ByKind(KindTopology)
	require.NotEmpty(t, topology)
	assert.Contains(t, topology[len(topology)-1].Detail, "not reachable")
}

func TestAuditProofOfWork(t *testing.T) {
	c, genesis := setupChain(t, 2)

	// No hash meets the maximum difficulty.
	report := Audit(c.Blocks(), types.MaxDifficulty, genesis)
	pow := report.ByKind(KindProofOfWork)
	require.Len(t, pow, 2)
	assert.Equal(t, 1, pow[0].Index)
	assert.Equal(t, 2, pow[1].Index)
}

func TestAuditGenesis(t *testing.T) {
	c, genesis := setupChain(t, 1)

	t.Run("pinned hash", func(t *testing.T) {
		other, err := chain.New(difficulty, chain.WithGenesis(types.GenesisTimestamp, "another genesis"))
		require.NoError(t, err)

		report := AuditChain(other, genesis)
		require.Len(t, report.ByKind(KindGenesis), 1)
	})

	t.Run("previous hash", func(t *testing.T) {
		blocks := c.Blocks()
		blocks[0].PreviousHash = types.SumHash([]byte("not zero"))

		report := Audit(blocks, difficulty, genesis)
		assert.NotEmpty(t, report.ByKind(KindGenesis))
		assert.NotEmpty(t, report.ByKind(KindHash))
	})

	t.Run("index", func(t *testing.T) {
		blocks := c.Blocks()
		blocks[0].Index = 7

		report := Audit(blocks, difficulty, types.ZeroHash)
		assert.NotEmpty(t, report.ByKind(KindGenesis))
		assert.NotEmpty(t, report.ByKind(KindIndex))
	})
}

func TestAuditIndexGap(t *testing.T) {
	c, genesis := setupChain(t, 2)
	blocks := c.Blocks()

	blocks[2].Index = 5
	reseal(t, &blocks[2])

	report := Audit(blocks, difficulty, genesis)
	index := report.ByKind(KindIndex)
	require.Len(t, index, 1)
	assert.Equal(t, 2, index[0].Index)
	assert.Empty(t, report.ByKind(KindHash))
}

func TestAuditFork(t *testing.T) {
	c, genesis := setupChain(t, 2)
	blocks := c.Blocks()

	// A sibling of block 2 mined on top of block 1 and appended to the end.
	sibling, err := types.NewBlock(3, "ts-fork", "fork", blocks[1].Hash)
	require.NoError(t, err)
	reseal(t, sibling)
	blocks = append(blocks, *sibling)

	report := Audit(blocks, difficulty, genesis)

	links := report.ByKind(KindLink)
	require.Len(t, links, 1)
	assert.Equal(t, 3, links[0].Index)

	var forked bool
	for _, v := range report.ByKind(KindTopology) {
		if v.Index == 1 {
			forked = true
			assert.Contains(t, v.Detail, "predecessor of 2 blocks")
		}
	}
	assert.True(t, forked, "fork at block 1 not reported: %v", report.Violations)
}

func TestAuditDuplicateBlock(t *testing.T) {
	c, genesis := setupChain(t, 2)
	blocks := c.Blocks()
	blocks = append(blocks, blocks[2])

	report := Audit(blocks, difficulty, genesis)
	assert.NotEmpty(t, report.ByKind(KindIndex))
	assert.NotEmpty(t, report.ByKind(KindLink))

	var duplicate bool
	for _, v := range report.ByKind(KindTopology) {
		if v.Index == 3 {
			duplicate = true
			assert.Contains(t, v.Detail, "already used by block 2")
		}
	}
	assert.True(t, duplicate)
}

func TestAuditSerialization(t *testing.T) {
	c, err := chain.New[any](difficulty)
	require.NoError(t, err)
	_, err = c.Append(context.Background(), "payload", "ts")
	require.NoError(t, err)

	blocks := c.Blocks()
	blocks[1].Data = make(chan int)

	report := Audit(blocks, difficulty, types.ZeroHash)
	serialization := report.ByKind(KindSerialization)
	require.Len(t, serialization, 1)
	assert.Equal(t, 1, serialization[0].Index)
}

func TestViolationString(t *testing.T) {
	assert.Equal(t, "block 2: hash: bad", Violation{Index: 2, Kind: KindHash, Detail: "bad"}.String())
	assert.Equal(t, "empty: none", Violation{Index: -1, Kind: KindEmpty, Detail: "none"}.String())
}
