package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powledger/powledger/pkg/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
logger:
  enabled: true
  environment: production
  level: warn
chain:
  difficulty: 2
  genesis_path: ./genesis.yaml
  mining_timeout: 30s
export:
  path: ./out/chain.json.s2
observability:
  metrics:
    enable: false
  tracing:
    enable: false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Logger.Environment)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, uint32(2), cfg.Chain.Difficulty)
	assert.Equal(t, "./genesis.yaml", cfg.Chain.GenesisPath)
	assert.Equal(t, 30*time.Second, cfg.Chain.MiningTimeout)
	assert.Equal(t, "./out/chain.json.s2", cfg.Export.Path)
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "logger:\n  level: debug\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultDifficulty, cfg.Chain.Difficulty)
	assert.Equal(t, "development", cfg.Logger.Environment)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "Difficulty above digest length", body: "chain:\n  difficulty: 65\n"},
		{name: "Negative timeout", body: "chain:\n  mining_timeout: -1s\n"},
		{name: "Unknown environment", body: "logger:\n  enabled: true\n  environment: staging\n"},
		{name: "Malformed yaml", body: "chain: [difficulty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestChainValidateDifficultyBound(t *testing.T) {
	assert.NoError(t, Chain{Difficulty: types.MaxDifficulty}.Validate())
	assert.Error(t, Chain{Difficulty: types.MaxDifficulty + 1}.Validate())

	cfg, err := LoadConfig(writeConfig(t, "chain:\n  difficulty: 64\n"))
	require.NoError(t, err)
	assert.Equal(t, types.MaxDifficulty, cfg.Chain.Difficulty)
}

func TestInitializeGlobalConfig(t *testing.T) {
	t.Cleanup(func() { global = nil })

	cfg, err := InitializeGlobalConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Same(t, cfg, G())

	cfg, err = InitializeGlobalConfig(writeConfig(t, "chain:\n  difficulty: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), G().Chain.Difficulty)
}
