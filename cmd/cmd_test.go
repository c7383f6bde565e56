package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powledger/powledger/pkg/chain"
	"github.com/powledger/powledger/pkg/config"
	"github.com/powledger/powledger/pkg/logger"
	"github.com/powledger/powledger/pkg/shutdown"
	"github.com/powledger/powledger/pkg/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testConfig(difficulty uint32) *config.Config {
	cfg := config.Default()
	cfg.Chain.Difficulty = difficulty
	return cfg
}

func TestLoadPayloads(t *testing.T) {
	jsonPath := writeFile(t, "payloads.json", `[
		{"timestamp": "03/02/2017", "data": {"amount": 4, "sender": "john", "receiver": "alphonse"}},
		{"data": "plain"}
	]`)
	yamlPath := writeFile(t, "payloads.yaml", `
- timestamp: "03/02/2017"
  data:
    amount: 4
    sender: john
    receiver: alphonse
- data: plain
`)

	for _, path := range []string{jsonPath, yamlPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			records, err := loadPayloads(path)
			require.NoError(t, err)
			require.Len(t, records, 2)

			assert.Equal(t, "03/02/2017", records[0].Timestamp)
			canonical, err := types.CanonicalBytes(records[0].Data)
			require.NoError(t, err)
			assert.Equal(t, `{"amount":4,"receiver":"alphonse","sender":"john"}`, string(canonical))

			assert.Empty(t, records[1].Timestamp)
			assert.Equal(t, "plain", records[1].Data)
		})
	}

	_, err := loadPayloads(writeFile(t, "broken.json", "{"))
	assert.Error(t, err)
	_, err = loadPayloads(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestNewChainDifficultyPrecedence(t *testing.T) {
	cfg := testConfig(2)
	genesisPath := writeFile(t, "genesis.yaml", "timestamp: \"2024-01-01\"\nmessage: hello\ndifficulty: 3\n")

	c, err := newChain(cfg, "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), c.Difficulty())

	c, err = newChain(cfg, genesisPath, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), c.Difficulty())
	genesis, err := c.Genesis()
	require.NoError(t, err)
	assert.Equal(t, "hello", genesis.Data)

	override := uint32(1)
	c, err = newChain(cfg, genesisPath, &override, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), c.Difficulty())

	zeroPath := writeFile(t, "genesis.yaml", "timestamp: \"2024-01-01\"\nmessage: hello\ndifficulty: 0\n")
	c, err = newChain(cfg, zeroPath, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), c.Difficulty())

	_, err = newChain(cfg, filepath.Join(t.TempDir(), "missing.yaml"), nil, nil)
	assert.Error(t, err)
}

func TestAppendRecordTimeout(t *testing.T) {
	c, err := newChain(testConfig(types.MaxDifficulty), "", nil, nil)
	require.NoError(t, err)

	_, err = appendRecord(context.Background(), c, payloadRecord{Data: "slow"}, config.Chain{MiningTimeout: 10 * time.Millisecond})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, c.Len())
}

func TestAppendRecordDefaultsTimestamp(t *testing.T) {
	c, err := newChain(testConfig(1), "", nil, nil)
	require.NoError(t, err)

	block, err := appendRecord(context.Background(), c, payloadRecord{Data: "x"}, config.Chain{})
	require.NoError(t, err)
	_, err = time.Parse(time.RFC3339Nano, block.Timestamp)
	assert.NoError(t, err)
}

func TestRunMiner(t *testing.T) {
	c, err := newChain(testConfig(1), "", nil, nil)
	require.NoError(t, err)

	input := strings.Join([]string{
		`{"timestamp": "t1", "data": {"amount": 1}}`,
		``,
		`{"timestamp": "t2", "data": "second"}`,
		`{"timestamp": "t3", "data": [1, 2.5]}`,
	}, "\n")

	out := filepath.Join(t.TempDir(), "chain.json.s2")
	sm := shutdown.NewManager(context.Background(), logger.NewNoOpLogger())
	sm.Start()

	require.NoError(t, runMiner(sm, c, strings.NewReader(input), config.Chain{}, out, time.Millisecond))
	sm.Wait()

	assert.Error(t, sm.Context().Err(), "exhausted input shuts the miner down")
	assert.Equal(t, 4, c.Len())
	assert.True(t, c.IsValid())

	require.NoError(t, c.ExportFile(out))
	restored, err := chain.ImportFile[any](out)
	require.NoError(t, err)
	assert.True(t, restored.IsValid())
	assert.Equal(t, c.Len(), restored.Len())

	third, err := restored.BlockByIndex(3)
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("1"), json.Number("2.5")}, third.Data)
}

func TestRunMinerMalformedInput(t *testing.T) {
	c, err := newChain(testConfig(1), "", nil, nil)
	require.NoError(t, err)

	sm := shutdown.NewManager(context.Background(), logger.NewNoOpLogger())
	sm.Start()

	err = runMiner(sm, c, strings.NewReader("{\"data\": 1}\nnot json\n"), config.Chain{}, filepath.Join(t.TempDir(), "chain.json"), 0)
	sm.Wait()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestRunMinerShutdown(t *testing.T) {
	c, err := newChain(testConfig(types.MaxDifficulty), "", nil, nil)
	require.NoError(t, err)

	sm := shutdown.NewManager(context.Background(), logger.NewNoOpLogger())
	sm.Start()

	done := make(chan error, 1)
	go func() {
		done <- runMiner(sm, c, strings.NewReader(`{"data": "never sealed"}`), config.Chain{}, "", 0)
	}()

	time.Sleep(20 * time.Millisecond)
	sm.Shutdown()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("miner did not stop on shutdown")
	}
	sm.Wait()
	assert.Equal(t, 1, c.Len())
}
