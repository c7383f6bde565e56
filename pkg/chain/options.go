package chain

import (
	"time"

	"github.com/powledger/powledger/pkg/logger"
	"github.com/powledger/powledger/pkg/types"
)

// SealEvent describes a block that was just mined and appended.
type SealEvent[T any] struct {
	Block    types.Block[T]
	Attempts uint64
	Duration time.Duration
}

// Observer is notified after every successful append. Observers run on the
// appending goroutine after the chain lock is released.
type Observer[T any] func(SealEvent[T])

// Option configures a Chain.
type Option[T any] func(*Chain[T])

// WithGenesis replaces the built-in genesis block content.
func WithGenesis[T any](timestamp string, data T) Option[T] {
	return func(c *Chain[T]) {
		c.genesisTimestamp = timestamp
		c.genesisData = data
	}
}

// WithLogger sets the logger used for mining events. logger.G() is used by default.
func WithLogger[T any](l logger.Logger) Option[T] {
	return func(c *Chain[T]) {
		c.logger = l
	}
}

// WithObserver registers a seal observer.
func WithObserver[T any](o Observer[T]) Option[T] {
	return func(c *Chain[T]) {
		c.observers = append(c.observers, o)
	}
}
