// pkg/types/block.go
package types

import (
	"context"
	"crypto/sha256"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Block is one ledger entry. Its Hash is derived from every other field, so a
// change to any of them without re-deriving the hash is detectable.
//
// The JSON field order is the export order of a block.
type Block[T any] struct {
	Index        uint64 `json:"index"`         // Position in the chain, genesis is 0
	Timestamp    string `json:"timestamp"`     // Opaque label supplied by the caller
	Data         T      `json:"data"`          // Payload, hashed in canonical form
	PreviousHash Hash   `json:"previous_hash"` // Hash of the preceding block, ZeroHash for genesis
	Nonce        uint64 `json:"nonce"`         // Proof-of-work counter
	Hash         Hash   `json:"hash"`          // Digest of all the fields above
}

// NewBlock creates an unsealed block with a zero nonce and its immediate
// digest. No mining is performed.
func NewBlock[T any](index uint64, timestamp string, data T, previousHash Hash) (*Block[T], error) {
	block := &Block[T]{
		Index:        index,
		Timestamp:    timestamp,
		Data:         data,
		PreviousHash: previousHash,
	}

	hash, err := block.ComputeHash()
	if err != nil {
		return nil, err
	}
	block.Hash = hash

	return block, nil
}

// ComputeHash derives the digest of the block's current field values. Mining,
// validation and import all go through this function.
func (b *Block[T]) ComputeHash() (Hash, error) {
	preimage, err := b.preimage()
	if err != nil {
		return Hash{}, err
	}
	return sumWithNonce(preimage, b.Nonce), nil
}

// Mine searches the nonce space, starting at the current nonce, until the
// block digest has at least difficulty leading zero hex characters. The
// context is checked on every attempt; when it is cancelled the block is
// left untouched and ctx.Err() is returned.
func (b *Block[T]) Mine(ctx context.Context, difficulty uint32) error {
	if difficulty > MaxDifficulty {
		return errors.Errorf("difficulty %d exceeds maximum of %d", difficulty, MaxDifficulty)
	}

	preimage, err := b.preimage()
	if err != nil {
		return err
	}

	nonce := b.Nonce
	hash := sumWithNonce(preimage, nonce)
	for !hash.HasLeadingZeros(difficulty) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if nonce == math.MaxUint64 {
			return ErrNonceExhausted
		}
		nonce++
		hash = sumWithNonce(preimage, nonce)
	}

	b.Nonce = nonce
	b.Hash = hash
	return nil
}

// MeetsDifficulty reports whether the stored hash satisfies the
// proof-of-work predicate for difficulty.
func (b *Block[T]) MeetsDifficulty(difficulty uint32) bool {
	return b.Hash.HasLeadingZeros(difficulty)
}

// preimage is every hashed field except the nonce, in hash order:
// index, previous hash (hex), timestamp, canonical payload.
func (b *Block[T]) preimage() ([]byte, error) {
	data, err := CanonicalBytes(b.Data)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 20+HashSize*2+len(b.Timestamp)+len(data)+20)
	buf = strconv.AppendUint(buf, b.Index, 10)
	buf = append(buf, b.PreviousHash.Hex()...)
	buf = append(buf, b.Timestamp...)
	buf = append(buf, data...)
	return buf, nil
}

// sumWithNonce hashes preimage followed by the decimal nonce. The digits are
// written into the spare capacity of preimage, which preimage() reserves, so
// the mining loop does not allocate per attempt.
func sumWithNonce(preimage []byte, nonce uint64) Hash {
	return sha256.Sum256(strconv.AppendUint(preimage, nonce, 10))
}
