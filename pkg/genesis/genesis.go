// pkg/genesis/genesis.go

package genesis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/powledger/powledger/pkg/chain"
	"github.com/powledger/powledger/pkg/types"
)

// Genesis represents the genesis block definition.
type Genesis struct {
	Timestamp  string  `yaml:"timestamp"`
	Message    string  `yaml:"message"`
	Difficulty *uint32 `yaml:"difficulty,omitempty"` // Optional chain difficulty, nil keeps the configured one
}

// Default returns the built-in genesis every chain starts from unless
// configured otherwise.
func Default() *Genesis {
	return &Genesis{
		Timestamp: types.GenesisTimestamp,
		Message:   types.GenesisMessage,
	}
}

// LoadGenesis loads the genesis definition from a YAML file. Unknown fields
// are rejected.
func LoadGenesis(genesisPath string) (*Genesis, error) {
	data, err := os.ReadFile(genesisPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis file: %w", err)
	}

	var genesis Genesis
	err = yaml.UnmarshalStrict(data, &genesis)
	if err != nil {
		return nil, fmt.Errorf("failed to parse genesis file: %w", err)
	}

	// Validate the loaded genesis definition
	if err := genesis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis configuration: %w", err)
	}

	return &genesis, nil
}

// Validate ensures that the genesis definition is usable.
func (g *Genesis) Validate() error {
	if g.Timestamp == "" {
		return fmt.Errorf("timestamp must be set")
	}
	if g.Message == "" {
		return fmt.Errorf("message must be set")
	}
	if g.Difficulty != nil && *g.Difficulty > types.MaxDifficulty {
		return fmt.Errorf("difficulty %d exceeds maximum of %d", *g.Difficulty, types.MaxDifficulty)
	}
	return nil
}

// CreateGenesisBlock builds the unmined genesis block described by g.
func (g *Genesis) CreateGenesisBlock() (*types.Block[string], error) {
	genesisBlock, err := types.NewBlock(0, g.Timestamp, g.Message, types.ZeroHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create genesis block: %w", err)
	}
	return genesisBlock, nil
}

// Hash returns the hash of the genesis block, for pinning audits.
func (g *Genesis) Hash() (types.Hash, error) {
	block, err := g.CreateGenesisBlock()
	if err != nil {
		return types.Hash{}, err
	}
	return block.Hash, nil
}

// Option converts g into a chain option. T must be able to hold the string
// message, e.g. string or any.
func Option[T any](g *Genesis) (chain.Option[T], error) {
	data, ok := any(g.Message).(T)
	if !ok {
		return nil, fmt.Errorf("genesis message cannot be stored as %T payload", *new(T))
	}
	return chain.WithGenesis(g.Timestamp, data), nil
}
