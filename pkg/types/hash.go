package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

var (
	// ZeroHash is the predecessor sentinel carried by the genesis block.
	ZeroHash = Hash{}
)

// Hash represents a 32-byte SHA-256 block digest.
type Hash [HashSize]byte

// SumHash computes the SHA-256 hash of the input data.
func SumHash(data []byte) Hash {
	return sha256.Sum256(data)
}

// HashEqual compares two hashes for equality.
func HashEqual(a, b Hash) bool {
	return bytes.Equal(a[:], b[:])
}

func IsZeroHash(h Hash) bool {
	return h == ZeroHash
}

// HashFromBytes creates a Hash from a byte slice.
// Returns an error if the slice is not exactly HashSize bytes.
func HashFromBytes(data []byte) (Hash, error) {
	var h Hash
	if len(data) != HashSize {
		return h, fmt.Errorf("invalid hash length: expected %d bytes, got %d", HashSize, len(data))
	}
	copy(h[:], data)
	return h, nil
}

// HashFromHex parses the 64 character hexadecimal form of a Hash.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	if err := h.UnmarshalText([]byte(s)); err != nil {
		return Hash{}, err
	}
	return h, nil
}

// Bytes returns the byte slice representation of the Hash.
func (h Hash) Bytes() []byte {
	return h[:]
}

// String returns the hexadecimal string representation of the Hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Hex returns the hexadecimal string representation of the Hash.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Equal compares two Hashes for equality.
func (h Hash) Equal(other Hash) bool {
	return h == other
}

// LeadingZeros returns how many leading '0' characters the hexadecimal form
// of the hash has.
func (h Hash) LeadingZeros() uint32 {
	var n uint32
	for _, b := range h {
		if b>>4 != 0 {
			return n
		}
		n++
		if b&0x0f != 0 {
			return n
		}
		n++
	}
	return n
}

// HasLeadingZeros reports whether the hexadecimal form of the hash starts with
// at least difficulty '0' characters. This is the proof-of-work predicate.
func (h Hash) HasLeadingZeros(difficulty uint32) bool {
	if difficulty > MaxDifficulty {
		return false
	}
	return h.LeadingZeros() >= difficulty
}

// MarshalText implements the encoding.TextMarshaler interface.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (h *Hash) UnmarshalText(text []byte) error {
	bytes, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(bytes) != HashSize {
		return fmt.Errorf("invalid hash length: expected %d bytes, got %d", HashSize, len(bytes))
	}
	copy(h[:], bytes)
	return nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (h Hash) MarshalBinary() ([]byte, error) {
	return h[:], nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (h *Hash) UnmarshalBinary(data []byte) error {
	if len(data) != HashSize {
		return fmt.Errorf("invalid hash length: expected %d bytes, got %d", HashSize, len(data))
	}
	copy(h[:], data)
	return nil
}
