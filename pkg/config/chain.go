package config

import (
	"time"

	"github.com/pkg/errors"

	"github.com/powledger/powledger/pkg/types"
)

// DefaultDifficulty is the proof-of-work difficulty used when none is configured.
const DefaultDifficulty uint32 = 4

// Chain holds the settings of the ledger.
type Chain struct {
	// Difficulty is the number of leading zero hex characters a mined block
	// hash must have. Expected cost grows as 16^difficulty.
	Difficulty uint32 `yaml:"difficulty"`

	// GenesisPath optionally points at a YAML genesis definition. The built-in
	// genesis block is used when empty.
	GenesisPath string `yaml:"genesis_path"`

	// MiningTimeout bounds a single block search. Zero means no bound.
	MiningTimeout time.Duration `yaml:"mining_timeout"`
}

func (c Chain) Validate() error {
	if c.Difficulty > types.MaxDifficulty {
		return errors.Errorf("difficulty %d exceeds maximum of %d", c.Difficulty, types.MaxDifficulty)
	}
	if c.MiningTimeout < 0 {
		return errors.New("mining_timeout cannot be negative")
	}
	return nil
}

// Export controls chain export files.
type Export struct {
	// Path is the default export file. A ".s2" suffix enables compression.
	Path string `yaml:"path"`
}
