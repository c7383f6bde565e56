// pkg/chain/chain.go
package chain

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/powledger/powledger/pkg/logger"
	"github.com/powledger/powledger/pkg/types"
)

// Chain is an ordered, append-only sequence of proof-of-work blocks. It is
// safe for concurrent use: appends are serialized and readers always observe
// the chain either before or after a complete append.
type Chain[T any] struct {
	writeMu sync.Mutex   // serializes appends, held while mining
	mu      sync.RWMutex // guards blocks
	blocks  []types.Block[T]
	lookups *lru.Cache // hex hash -> position, for BlockByHash

	difficulty uint32
	logger     logger.Logger
	observers  []Observer[T]

	genesisTimestamp string
	genesisData      T
}

// New creates a chain holding only the genesis block. Unless WithGenesis is
// given, the genesis block carries GenesisTimestamp and, when T can hold a
// string, GenesisMessage as payload (the zero value of T otherwise).
func New[T any](difficulty uint32, opts ...Option[T]) (*Chain[T], error) {
	c, err := newChain(difficulty, opts...)
	if err != nil {
		return nil, err
	}

	genesis, err := types.NewBlock(0, c.genesisTimestamp, c.genesisData, types.ZeroHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genesis block")
	}
	c.blocks = append(c.blocks, *genesis)

	c.logger.Debug("Chain created", "difficulty", difficulty, "genesisHash", genesis.Hash.Hex())
	return c, nil
}

// Restore rebuilds a chain from previously exported blocks. The blocks are
// taken as they are, without validation, so a tampered export can still be
// loaded and inspected with Verify.
func Restore[T any](difficulty uint32, blocks []types.Block[T], opts ...Option[T]) (*Chain[T], error) {
	if len(blocks) == 0 {
		return nil, ErrEmptyChain
	}

	c, err := newChain(difficulty, opts...)
	if err != nil {
		return nil, err
	}
	c.blocks = append(make([]types.Block[T], 0, len(blocks)), blocks...)
	return c, nil
}

func newChain[T any](difficulty uint32, opts ...Option[T]) (*Chain[T], error) {
	if difficulty > types.MaxDifficulty {
		return nil, errors.Wrapf(ErrDifficultyOutOfRange, "difficulty %d exceeds maximum of %d", difficulty, types.MaxDifficulty)
	}

	lookups, err := lru.New(lookupCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create lookup cache")
	}

	c := &Chain[T]{
		lookups:          lookups,
		difficulty:       difficulty,
		logger:           logger.G(),
		genesisTimestamp: types.GenesisTimestamp,
		genesisData:      defaultGenesisData[T](),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.NewNoOpLogger()
	}
	return c, nil
}

const lookupCacheSize = 1024

func defaultGenesisData[T any]() T {
	var data T
	if v, ok := any(types.GenesisMessage).(T); ok {
		data = v
	}
	return data
}

// Difficulty returns the proof-of-work difficulty blocks are mined at.
func (c *Chain[T]) Difficulty() uint32 {
	return c.difficulty
}

// Len returns the number of blocks, genesis included.
func (c *Chain[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blocks)
}

// Latest returns the last block of the chain.
func (c *Chain[T]) Latest() (types.Block[T], error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.blocks) == 0 {
		return types.Block[T]{}, ErrEmptyChain
	}
	return c.blocks[len(c.blocks)-1], nil
}

// Genesis returns the first block of the chain.
func (c *Chain[T]) Genesis() (types.Block[T], error) {
	return c.BlockByIndex(0)
}

// Blocks returns a copy of the block sequence.
func (c *Chain[T]) Blocks() []types.Block[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]types.Block[T](nil), c.blocks...)
}

// BlockByIndex retrieves a block by its position in the chain.
func (c *Chain[T]) BlockByIndex(index int) (types.Block[T], error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.blocks) == 0 {
		return types.Block[T]{}, ErrEmptyChain
	}
	if index < 0 || index >= len(c.blocks) {
		return types.Block[T]{}, errors.Wrapf(ErrBlockNotFound, "index %d out of range [0, %d)", index, len(c.blocks))
	}
	return c.blocks[index], nil
}

// BlockByHash retrieves a block by its stored hash.
func (c *Chain[T]) BlockByHash(hash types.Hash) (types.Block[T], error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := hash.Hex()
	if c.lookups != nil {
		if v, ok := c.lookups.Get(key); ok {
			if i := v.(int); i < len(c.blocks) && c.blocks[i].Hash.Equal(hash) {
				return c.blocks[i], nil
			}
		}
	}

	for i := range c.blocks {
		if c.blocks[i].Hash.Equal(hash) {
			if c.lookups != nil {
				c.lookups.Add(key, i)
			}
			return c.blocks[i], nil
		}
	}
	return types.Block[T]{}, errors.Wrapf(ErrBlockNotFound, "hash %s", hash.Hex())
}
