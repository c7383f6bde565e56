package chain

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/powledger/powledger/pkg/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/powledger/powledger/pkg/chain"

// Append builds a block from data and timestamp, links it to the current head,
// mines it and appends it. The sealed block is returned.
func (c *Chain[T]) Append(ctx context.Context, data T, timestamp string) (types.Block[T], error) {
	candidate := &types.Block[T]{
		Timestamp: timestamp,
		Data:      data,
	}
	if err := c.AppendBlock(ctx, candidate); err != nil {
		return types.Block[T]{}, err
	}
	return *candidate, nil
}

// AppendBlock links candidate to the current head, assigns its index, mines
// it at the chain difficulty and appends it. Index and previous hash are
// overwritten; the nonce search restarts from zero.
//
// The block becomes visible only once it is fully sealed. When mining fails or
// ctx is cancelled the chain is left unchanged.
func (c *Chain[T]) AppendBlock(ctx context.Context, candidate *types.Block[T]) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	latest, err := c.Latest()
	if err != nil {
		return err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "chain.Append")
	defer span.End()

	candidate.Index = latest.Index + 1
	candidate.PreviousHash = latest.Hash
	candidate.Nonce = 0

	span.SetAttributes(
		attribute.Int64("block.index", int64(candidate.Index)),
		attribute.Int64("chain.difficulty", int64(c.difficulty)),
	)

	started := time.Now()
	if err := candidate.Mine(ctx, c.difficulty); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mining failed")
		c.logger.Warn("Block mining aborted", "index", candidate.Index, "error", err)
		return errors.Wrapf(err, "failed to mine block %d", candidate.Index)
	}
	elapsed := time.Since(started)

	c.mu.Lock()
	c.blocks = append(c.blocks, *candidate)
	if c.lookups != nil {
		c.lookups.Add(candidate.Hash.Hex(), len(c.blocks)-1)
	}
	c.mu.Unlock()

	span.SetAttributes(attribute.String("block.hash", candidate.Hash.Hex()))
	c.logger.Info(
		"Block mined",
		"index", candidate.Index,
		"hash", candidate.Hash.Hex(),
		"nonce", candidate.Nonce,
		"elapsed", elapsed,
	)

	event := SealEvent[T]{
		Block:    *candidate,
		Attempts: candidate.Nonce + 1,
		Duration: elapsed,
	}
	for _, observe := range c.observers {
		observe(event)
	}

	return nil
}
